// internal/providers/mediafire.go
package providers

import (
	"net/http"
	"regexp"
	"strings"

	"dlcheck/internal/core/domain"
)

// MediaFire verifica enlaces de MediaFire. La página de descarga es un
// intersticial: el botón de descarga apunta al servidor real (downloadN),
// que se verifica con un redirect de proveedor.
func MediaFire() *domain.Provider {
	return &domain.Provider{
		Name:  "mediafire",
		Hosts: []string{"www.mediafire.com", "mediafire.com"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^download\d*\.mediafire\.com$`),
		},
		Request: domain.DefaultRequest{Template: domain.RequestTemplate{
			Method: http.MethodGet,
			Header: browserHeaders(),
		}},
		Verify: verifyMediaFire,
	}
}

func verifyMediaFire(resp *domain.Response) (domain.Verdict, error) {
	if strings.HasPrefix(hostOf(resp), "download") {
		return verifyMediaFireServer(resp)
	}

	switch {
	case isHTTPRedirect(resp.StatusCode):
		loc := resp.Location()
		if loc == "" {
			return domain.Verdict{}, unexpected("mediafire", resp)
		}
		// Archivos borrados o bloqueados redirigen a error.php
		if strings.Contains(loc, "error.php") {
			return domain.Dead("file removed"), nil
		}
		return domain.RedirectTo(absolute(resp, loc)), nil

	case isGone(resp.StatusCode):
		return domain.Dead("file not found"), nil

	case resp.StatusCode != http.StatusOK:
		return domain.Verdict{}, unexpected("mediafire", resp)
	}

	doc, err := parsePage(resp)
	if err != nil {
		return domain.Verdict{}, err
	}

	if href, ok := doc.Find("a#downloadButton").Attr("href"); ok && strings.TrimSpace(href) != "" {
		return domain.RedirectTo(absolute(resp, href)), nil
	}
	if href, ok := doc.Find(`.download_link a[href*="download"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return domain.RedirectTo(absolute(resp, href)), nil
	}

	if doc.Find(".errorPage, #error_page").Length() > 0 ||
		containsAny(resp.Body, "Invalid or Deleted File", "has been removed") {
		return domain.Dead("file removed"), nil
	}

	return domain.Dead("download button not found"), nil
}

// verifyMediaFireServer interpreta la respuesta del servidor de descarga.
func verifyMediaFireServer(resp *domain.Response) (domain.Verdict, error) {
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent:
		return domain.Live("download server responded"), nil
	case isGone(resp.StatusCode) || resp.StatusCode == http.StatusForbidden:
		return domain.Dead("download server refused the file"), nil
	case isHTTPRedirect(resp.StatusCode) && resp.Location() != "":
		return domain.RedirectTo(absolute(resp, resp.Location())), nil
	}
	return domain.Verdict{}, unexpected("mediafire", resp)
}
