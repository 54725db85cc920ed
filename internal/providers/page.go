// Package providers contiene el catálogo de proveedores incluidos. Cada
// proveedor es un domain.Provider con sus hosts, su forma de petición y su
// función de verificación.
package providers

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/errors"
)

// browserHeaders son las cabeceras que esperan las páginas de descarga.
func browserHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.8")
	return h
}

// parsePage parsea el body HTML de la respuesta.
func parsePage(resp *domain.Response) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidResponse), "parse page %s", resp.URL)
	}
	return doc, nil
}

// absolute resuelve href relativo a la URL pedida.
func absolute(resp *domain.Response, href string) string {
	base, err := url.Parse(resp.URL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// hostOf retorna el host (en minúsculas) de la URL pedida.
func hostOf(resp *domain.Response) string {
	u, err := url.Parse(resp.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func isHTTPRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func isGone(code int) bool {
	return code == http.StatusNotFound || code == http.StatusGone
}

// unexpected marca un status que no permite decidir; el pipeline lo reintenta.
func unexpected(provider string, resp *domain.Response) error {
	return errors.Wrapf(errors.ErrInvalidResponse, "%s: unexpected HTTP %d for %s", provider, resp.StatusCode, resp.URL)
}

// containsAny busca cualquiera de los marcadores en el body.
func containsAny(body []byte, markers ...string) bool {
	for _, m := range markers {
		if bytes.Contains(body, []byte(m)) {
			return true
		}
	}
	return false
}
