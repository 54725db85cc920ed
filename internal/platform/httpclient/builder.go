package httpclient

import (
	"net/http"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/errors"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/proxypool"
)

// Builder turns a provider and a URL into a concrete RequestSpec.
type Builder struct {
	config Config
	pool   *proxypool.Pool
	logger logx.Logger
}

// NewBuilder creates a request builder. A nil pool never assigns a proxy.
func NewBuilder(config Config, pool *proxypool.Pool, logger logx.Logger) *Builder {
	return &Builder{
		config: config.withDefaults(),
		pool:   pool,
		logger: logger.With("component", "request-builder"),
	}
}

// Build resolves the provider's request strategy, applies the global
// defaults and assigns a proxy when the pool is active. The chosen proxy, or
// its absence, is recorded on rec.
func (b *Builder) Build(p *domain.Provider, rawURL string, rec *domain.LinkRecord) (domain.RequestSpec, error) {
	if p == nil {
		return domain.RequestSpec{}, errors.Wrap(errors.ErrInvalidInput, "provider is nil")
	}

	tmpl, err := templateFor(p, rawURL)
	if err != nil {
		return domain.RequestSpec{}, err
	}

	spec := domain.RequestSpec{
		Method:          tmpl.Method,
		URL:             rawURL,
		Header:          tmpl.Header.Clone(),
		Body:            tmpl.Body,
		FollowRedirects: false,
		Timeout:         b.config.Timeout,
	}
	if spec.Method == "" {
		spec.Method = http.MethodGet
	}
	if spec.Header == nil {
		spec.Header = make(http.Header)
	}
	if spec.Header.Get("User-Agent") == "" {
		spec.Header.Set("User-Agent", b.config.UserAgent)
	}

	if ep, ok := b.pool.Pick(); ok {
		spec.Proxy = ep.URL().String()
		spec.Tunnel = false
		b.logger.Notice("using proxy", "proxy", ep.String(), "url", rawURL)
		if rec != nil {
			rec.Set(domain.AttrProxy, ep.String())
		}
	} else if rec != nil {
		rec.Set(domain.AttrProxy, nil)
	}

	return spec, nil
}

// templateFor dispatches on the provider's request strategy. A custom
// constructor's result is used verbatim.
func templateFor(p *domain.Provider, rawURL string) (domain.RequestTemplate, error) {
	switch r := p.Request.(type) {
	case nil:
		return domain.RequestTemplate{}, nil
	case domain.DefaultRequest:
		return r.Template, nil
	case domain.CustomRequest:
		tmpl, err := r.Build(rawURL)
		if err != nil {
			return domain.RequestTemplate{}, errors.Wrapf(errors.Mark(err, errors.ErrInterpretation), "custom request for %s", p.Name)
		}
		return tmpl, nil
	default:
		return domain.RequestTemplate{}, errors.Wrapf(errors.ErrInvalidPlugin, "provider %s: unknown request strategy %T", p.Name, r)
	}
}
