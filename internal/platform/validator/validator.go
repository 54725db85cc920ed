// internal/platform/validator/validator.go
package validator

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)

// Domain validators

// IsDomain verifica si un string es un dominio válido (ASCII o punycode).
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}

	if !domainRegex.MatchString(domain) {
		return false
	}

	// Verificar que no sea una IP
	if net.ParseIP(domain) != nil {
		return false
	}

	return true
}

// NormalizeHost lleva un hostname a su forma canónica de comparación:
// minúsculas, sin punto final y en punycode (IDN -> ASCII).
// Si la conversión IDNA falla se conserva la forma en minúsculas.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	if host == "" || net.ParseIP(host) != nil {
		return host
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

// Network validators

// IsPort valida que un puerto esté en el rango válido [1-65535].
func IsPort(portStr string) bool {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return false
	}
	return port >= 1 && port <= 65535
}

// URL validators

// IsURL verifica si un string es una URL absoluta (scheme y host).
func IsURL(urlStr string) bool {
	if len(urlStr) == 0 {
		return false
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	return parsed.Scheme != "" && parsed.Host != ""
}

// IsHTTPURL verifica que la URL sea absoluta y use http o https.
func IsHTTPURL(urlStr string) bool {
	if !IsURL(urlStr) {
		return false
	}
	parsed, _ := url.Parse(urlStr)
	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// Hostname extrae y normaliza el hostname de una URL.
// Retorna "" si la URL no se puede parsear o no tiene host.
func Hostname(urlStr string) string {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return ""
	}
	return NormalizeHost(parsed.Hostname())
}

// Generic validators

// IsEmpty verifica si un string está vacío o solo contiene espacios.
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}
