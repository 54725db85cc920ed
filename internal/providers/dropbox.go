// internal/providers/dropbox.go
package providers

import (
	"net/http"
	"regexp"
	"strings"

	"dlcheck/internal/core/domain"
)

// Dropbox verifica enlaces compartidos de Dropbox con un HEAD: si el archivo
// existe, Dropbox responde 200 o redirige al servidor de contenido.
func Dropbox() *domain.Provider {
	return &domain.Provider{
		Name:  "dropbox",
		Hosts: []string{"www.dropbox.com", "dropbox.com", "dl.dropbox.com", "dl.dropboxusercontent.com"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^[a-z0-9-]+\.dl\.dropboxusercontent\.com$`),
		},
		Request: domain.DefaultRequest{Template: domain.RequestTemplate{Method: http.MethodHead}},
		Verify:  verifyDropbox,
	}
}

func verifyDropbox(resp *domain.Response) (domain.Verdict, error) {
	switch {
	case resp.StatusCode == http.StatusOK:
		return domain.Live("file available"), nil

	case isGone(resp.StatusCode):
		return domain.Dead("file not found"), nil

	case isHTTPRedirect(resp.StatusCode):
		loc := resp.Location()
		if loc == "" {
			return domain.Verdict{}, unexpected("dropbox", resp)
		}
		// Los enlaces borrados redirigen a la página de error o al login.
		if strings.Contains(loc, "/error") || strings.Contains(loc, "/login") {
			return domain.Dead("link removed"), nil
		}
		return domain.RedirectTo(absolute(resp, loc)), nil

	case resp.StatusCode == http.StatusForbidden:
		return domain.Dead("link disabled"), nil
	}

	return domain.Verdict{}, unexpected("dropbox", resp)
}
