// internal/platform/validator/plugins.go
package validator

import (
	"fmt"
	"net/http"
	"strings"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/core/ports"
	"dlcheck/internal/platform/errors"
)

var validMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodOptions: true,
}

// ValidateProvider verifica el contrato de un service supporter:
// función de verificación presente, capacidad de match de host no vacía y
// request personalizado bien formado si existe.
func ValidateProvider(p *domain.Provider) error {
	if p == nil {
		return errors.Wrap(errors.ErrInvalidPlugin, "provider is nil")
	}
	if IsEmpty(p.Name) {
		return errors.Wrap(errors.ErrInvalidPlugin, domain.ErrProviderNoName.Error())
	}
	if p.Verify == nil {
		return errors.Wrapf(errors.ErrInvalidPlugin, "provider %s: %v", p.Name, domain.ErrProviderNoVerify)
	}
	if !p.HasHostMatching() {
		return errors.Wrapf(errors.ErrInvalidPlugin, "provider %s: %v", p.Name, domain.ErrProviderNoHosts)
	}

	for _, h := range p.Hosts {
		if !IsDomain(NormalizeHost(h)) {
			return errors.Wrapf(errors.ErrInvalidPlugin, "provider %s: invalid host %q", p.Name, h)
		}
	}
	for i, re := range p.Patterns {
		if re == nil {
			return errors.Wrapf(errors.ErrInvalidPlugin, "provider %s: pattern %d is nil", p.Name, i)
		}
	}

	if err := validateRequest(p); err != nil {
		return errors.Wrapf(errors.ErrInvalidPlugin, "provider %s: %v", p.Name, err)
	}
	return nil
}

func validateRequest(p *domain.Provider) error {
	switch r := p.Request.(type) {
	case nil:
		return nil
	case domain.DefaultRequest:
		return validateTemplate(r.Template)
	case domain.CustomRequest:
		if r.Build == nil {
			return domain.ErrProviderBadRequest
		}
		return probeCustomRequest(p, r)
	default:
		return fmt.Errorf("unknown request strategy %T", r)
	}
}

func validateTemplate(t domain.RequestTemplate) error {
	if t.Method == "" {
		return nil
	}
	if !validMethods[strings.ToUpper(t.Method)] {
		return fmt.Errorf("unsupported method %q", t.Method)
	}
	return nil
}

// probeCustomRequest ejecuta el constructor con una URL de muestra del
// propio proveedor para detectar lógica rota antes de usarla.
func probeCustomRequest(p *domain.Provider, r domain.CustomRequest) (err error) {
	if len(p.Hosts) == 0 {
		return nil
	}
	sample := "https://" + NormalizeHost(p.Hosts[0]) + "/validate"

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrProviderBadRequest, rec)
		}
	}()

	tmpl, buildErr := r.Build(sample)
	if buildErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderBadRequest, buildErr)
	}
	return validateTemplate(tmpl)
}

// ValidateResultHandler verifica un result handler antes de usarlo.
func ValidateResultHandler(h ports.ResultHandler) error {
	if h == nil {
		return errors.Wrap(errors.ErrInvalidPlugin, "result handler is nil")
	}
	if IsEmpty(h.Name()) {
		return errors.Wrap(errors.ErrInvalidPlugin, "result handler name cannot be empty")
	}
	return nil
}

// ValidateInputSource verifica una fuente de entrada antes de usarla.
func ValidateInputSource(s ports.InputSource) error {
	if s == nil {
		return errors.Wrap(errors.ErrInvalidPlugin, "input source is nil")
	}
	if IsEmpty(s.Name()) {
		return errors.Wrap(errors.ErrInvalidPlugin, "input source name cannot be empty")
	}
	return nil
}
