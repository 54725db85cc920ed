// internal/providers/box.go
package providers

import (
	"net/http"
	"regexp"
	"strings"

	"dlcheck/internal/core/domain"
)

// Box verifica enlaces compartidos de Box (app.box.com/s/... y subdominios
// de empresa). Box sirve la página del enlace con 200 aunque el enlace haya
// sido eliminado, así que el veredicto sale del contenido.
func Box() *domain.Provider {
	return &domain.Provider{
		Name:  "box",
		Hosts: []string{"app.box.com", "box.com", "www.box.com"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^[a-z0-9-]+\.app\.box\.com$`),
			regexp.MustCompile(`^[a-z0-9-]+\.box\.com$`),
		},
		Request: domain.CustomRequest{Build: boxRequest},
		Verify:  verifyBox,
	}
}

// boxRequest evita la SPA: pide HTML sin JavaScript y sin caché.
func boxRequest(_ string) (domain.RequestTemplate, error) {
	h := browserHeaders()
	h.Set("Cache-Control", "no-cache")
	return domain.RequestTemplate{Method: http.MethodGet, Header: h}, nil
}

func verifyBox(resp *domain.Response) (domain.Verdict, error) {
	switch {
	case isGone(resp.StatusCode):
		return domain.Dead("shared link not found"), nil

	case isHTTPRedirect(resp.StatusCode):
		loc := resp.Location()
		if loc == "" {
			return domain.Verdict{}, unexpected("box", resp)
		}
		if strings.Contains(loc, "/login") {
			return domain.Dead("shared link requires login"), nil
		}
		return domain.RedirectTo(absolute(resp, loc)), nil

	case resp.StatusCode != http.StatusOK:
		return domain.Verdict{}, unexpected("box", resp)
	}

	if containsAny(resp.Body,
		"This shared file or folder link has been removed",
		"is unavailable",
		`"itemNotFound"`,
	) {
		return domain.Dead("shared link removed"), nil
	}

	doc, err := parsePage(resp)
	if err != nil {
		return domain.Verdict{}, err
	}

	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	if strings.Contains(title, "not found") || strings.Contains(title, "error") {
		return domain.Dead("shared link removed"), nil
	}

	return domain.Live("shared link available"), nil
}
