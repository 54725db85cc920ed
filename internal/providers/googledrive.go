// internal/providers/googledrive.go
package providers

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dlcheck/internal/core/domain"
)

var driveFileID = regexp.MustCompile(`/file/d/([\w-]+)`)

// GoogleDrive verifica archivos compartidos de Google Drive. La vista del
// archivo redirige (redirect de proveedor) al endpoint de descarga; si Drive
// interpone la página de confirmación de antivirus, el formulario de
// confirmación produce un segundo redirect.
func GoogleDrive() *domain.Provider {
	return &domain.Provider{
		Name:  "googledrive",
		Hosts: []string{"drive.google.com", "docs.google.com"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`^drive\.usercontent\.google\.com$`),
			regexp.MustCompile(`^doc-[\w-]+-docs\.googleusercontent\.com$`),
		},
		Request: domain.CustomRequest{Build: driveRequest},
		Verify:  verifyGoogleDrive,
	}
}

// driveRequest pide con HEAD los servidores de contenido para no transferir
// el archivo. /uc puede responder con la página de confirmación, así que va
// con GET.
func driveRequest(rawURL string) (domain.RequestTemplate, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.RequestTemplate{}, err
	}
	if isDriveContent(u) {
		return domain.RequestTemplate{Method: http.MethodHead}, nil
	}
	return domain.RequestTemplate{Method: http.MethodGet, Header: browserHeaders()}, nil
}

func isDriveContent(u *url.URL) bool {
	return strings.HasSuffix(strings.ToLower(u.Hostname()), "googleusercontent.com") || u.Path == "/download"
}

func isDriveDownload(u *url.URL) bool {
	return isDriveContent(u) || (u.Path == "/uc" && u.Query().Get("export") == "download")
}

func verifyGoogleDrive(resp *domain.Response) (domain.Verdict, error) {
	u, err := url.Parse(resp.URL)
	if err != nil {
		return domain.Verdict{}, err
	}

	switch {
	case isGone(resp.StatusCode):
		return domain.Dead("file not found"), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.Dead("access denied"), nil
	}

	if isDriveDownload(u) {
		return verifyDriveDownload(resp)
	}

	if resp.StatusCode != http.StatusOK {
		if isHTTPRedirect(resp.StatusCode) && strings.Contains(resp.Location(), "ServiceLogin") {
			return domain.Dead("file is private"), nil
		}
		return domain.Verdict{}, unexpected("googledrive", resp)
	}

	m := driveFileID.FindStringSubmatch(u.Path)
	if m == nil {
		id := u.Query().Get("id")
		if id == "" {
			return domain.Live("drive page available"), nil
		}
		m = []string{"", id}
	}

	download := url.URL{
		Scheme:   "https",
		Host:     "drive.google.com",
		Path:     "/uc",
		RawQuery: url.Values{"export": {"download"}, "id": {m[1]}}.Encode(),
	}
	return domain.RedirectTo(download.String()), nil
}

// verifyDriveDownload interpreta el endpoint de descarga: un redirect al
// servidor de contenido o una respuesta directa significa que el archivo
// existe; la página de confirmación se sigue vía su formulario.
func verifyDriveDownload(resp *domain.Response) (domain.Verdict, error) {
	switch {
	case isHTTPRedirect(resp.StatusCode):
		loc := resp.Location()
		if strings.Contains(loc, "ServiceLogin") {
			return domain.Dead("file is private"), nil
		}
		if loc == "" {
			return domain.Verdict{}, unexpected("googledrive", resp)
		}
		return domain.Live("download redirect issued"), nil

	case resp.StatusCode != http.StatusOK:
		return domain.Verdict{}, unexpected("googledrive", resp)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return domain.Live("file served"), nil
	}

	doc, err := parsePage(resp)
	if err != nil {
		return domain.Verdict{}, err
	}

	form := doc.Find("form#download-form").First()
	if form.Length() == 0 {
		if containsAny(resp.Body, "Google Drive - Quota exceeded", "Too many users have viewed or downloaded") {
			return domain.Dead("download quota exceeded"), nil
		}
		return domain.Dead("download page without file"), nil
	}

	action, _ := form.Attr("action")
	target, err := url.Parse(absolute(resp, action))
	if err != nil {
		return domain.Verdict{}, err
	}

	q := target.Query()
	form.Find(`input[type="hidden"]`).Each(func(_ int, in *goquery.Selection) {
		name, ok := in.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := in.Attr("value")
		q.Set(name, value)
	})
	target.RawQuery = q.Encode()

	return domain.RedirectTo(target.String()), nil
}
