// internal/core/usecases/pipeline.go
package usecases

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/core/ports"
	"dlcheck/internal/platform/errors"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/registry"
	"dlcheck/internal/platform/resilience"
	"dlcheck/internal/platform/tracker"
	"dlcheck/internal/platform/validator"
)

// DefaultMaxRedirects limita las cadenas de redirects mediados por proveedor.
const DefaultMaxRedirects = 10

// Resolver busca el proveedor de una URL.
type Resolver interface {
	Resolve(url string) (*domain.Provider, bool)
}

// Attempt es el contexto explícito de un intento de verificación. Retries y
// redirects producen un Attempt nuevo en lugar de una llamada recursiva.
type Attempt struct {
	// URL objetivo de este intento (cambia tras un redirect)
	URL string

	// Record registro original, enriquecido en el lugar
	Record *domain.LinkRecord

	// Handler result handler que recibe el resultado terminal
	Handler ports.ResultHandler

	// Budget reintentos restantes; se conserva a través de redirects
	Budget resilience.Budget

	// Redirects redirects de proveedor seguidos hasta ahora
	Redirects int

	// Tries intentos enviados hasta ahora
	Tries int

	// Last marca el último enlace del batch (dispara el resumen)
	Last bool
}

// NewAttempt crea el primer intento para un registro.
func NewAttempt(rec *domain.LinkRecord, handler ports.ResultHandler, retries int, last bool) Attempt {
	return Attempt{
		URL:     strings.TrimSpace(rec.URL()),
		Record:  rec,
		Handler: handler,
		Budget:  resilience.NewBudget(retries),
		Last:    last,
	}
}

// LinkResult resume cómo terminó la verificación de un enlace.
type LinkResult struct {
	URL       string
	FinalURL  string
	Status    domain.LinkStatus
	Provider  string
	Tries     int
	Redirects int
	Duration  time.Duration
	Err       error
}

// Pipeline es la máquina de estados de verificación:
// Resolving -> Requesting -> Interpreting -> {Redirecting | Retrying | Reporting} -> Done.
type Pipeline struct {
	resolver     Resolver
	builder      ports.RequestBuilder
	transport    ports.Transport
	tracker      *tracker.Unsupported
	summary      *Summary
	backoff      resilience.Backoff
	maxRedirects int
	logger       logx.Logger
}

// PipelineOptions configura el pipeline.
type PipelineOptions struct {
	Resolver     Resolver
	Builder      ports.RequestBuilder
	Transport    ports.Transport
	Tracker      *tracker.Unsupported
	Summary      *Summary
	Backoff      resilience.Backoff
	MaxRedirects int
	Logger       logx.Logger
}

// NewPipeline crea una nueva instancia del pipeline.
func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Tracker == nil {
		opts.Tracker = tracker.NewUnsupported()
	}
	if opts.Summary == nil {
		opts.Summary = NewSummary(opts.Tracker, opts.Logger)
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}

	return &Pipeline{
		resolver:     opts.Resolver,
		builder:      opts.Builder,
		transport:    opts.Transport,
		tracker:      opts.Tracker,
		summary:      opts.Summary,
		backoff:      opts.Backoff,
		maxRedirects: opts.MaxRedirects,
		logger:       opts.Logger.With("component", "pipeline"),
	}
}

// Verify lleva un enlace hasta su resolución terminal. El error retornado
// es solo el del result handler; los fallos por enlace se registran en el log.
// Si el intento es el último del batch, el resumen se emite después de la
// acción terminal, sea cual sea el camino.
func (p *Pipeline) Verify(ctx context.Context, a Attempt) (res LinkResult, err error) {
	start := time.Now()
	res = LinkResult{URL: a.URL}

	defer func() {
		res.Tries = a.Tries
		res.Redirects = a.Redirects
		res.FinalURL = a.URL
		res.Duration = time.Since(start)
		if a.Last {
			p.summary.Emit()
		}
	}()

	if a.Record == nil {
		res.Status = domain.StatusInvalid
		res.Err = domain.ErrMissingRecord
		p.logger.Err(domain.ErrMissingRecord)
		return res, nil
	}

	for {
		// Resolving
		if !validator.IsHTTPURL(a.URL) {
			return p.reportInvalid(ctx, a, res)
		}
		provider, ok := p.resolver.Resolve(a.URL)
		if !ok {
			return p.reportUnsupported(ctx, a, res)
		}
		res.Provider = provider.Name
		a.Record.Set(domain.AttrProvider, provider.Name)

		// Requesting + Interpreting
		a.Tries++
		a.Record.Set(domain.AttrAttempts, a.Tries)
		verdict, resp, probeErr := p.probe(ctx, provider, a)

		if probeErr != nil {
			// Retrying
			next, retry := p.retry(ctx, a, probeErr)
			if !retry {
				res.Status = domain.StatusFailed
				res.Err = probeErr
				return res, nil
			}
			a = next
			continue
		}

		if verdict.Kind == domain.VerdictRedirect {
			// Redirecting
			target, redirErr := resolveRedirect(a.URL, verdict.RedirectURL)
			if redirErr != nil {
				next, retry := p.retry(ctx, a, redirErr)
				if !retry {
					res.Status = domain.StatusFailed
					res.Err = redirErr
					return res, nil
				}
				a = next
				continue
			}

			if a.Redirects >= p.maxRedirects {
				return p.reportRedirectLimit(ctx, a, res)
			}

			p.logger.Debug("provider redirect",
				"from", a.URL,
				"to", target,
				"provider", provider.Name,
				"depth", a.Redirects+1,
			)
			a.Record.Set(domain.AttrRedirected, true)
			a.URL = target
			a.Redirects++
			continue
		}

		// Reporting
		return p.report(ctx, a, res, provider, verdict, resp)
	}
}

// probe construye la petición, la envía y pasa la respuesta al proveedor.
// Cualquier error (de transporte o de interpretación) es reintentable.
func (p *Pipeline) probe(ctx context.Context, provider *domain.Provider, a Attempt) (domain.Verdict, *domain.Response, error) {
	spec, err := p.builder.Build(provider, a.URL, a.Record)
	if err != nil {
		return domain.Verdict{}, nil, err
	}

	resp, err := p.transport.Do(ctx, spec)
	if err != nil {
		return domain.Verdict{}, nil, err
	}

	verdict, err := interpret(provider, resp)
	return verdict, resp, err
}

// interpret ejecuta la función de verificación convirtiendo panics en
// errores de interpretación.
func interpret(provider *domain.Provider, resp *domain.Response) (v domain.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrInterpretation, "provider %s panicked: %v", provider.Name, r)
		}
	}()

	v, err = provider.Verify(resp)
	if err != nil {
		return domain.Verdict{}, errors.Mark(err, errors.ErrInterpretation)
	}
	if v.Kind == domain.VerdictRedirect && v.RedirectURL == "" {
		return domain.Verdict{}, errors.Wrapf(errors.ErrInterpretation, "provider %s returned an empty redirect", provider.Name)
	}
	return v, nil
}

// retry decide el siguiente intento tras un fallo. Retorna false cuando el
// fallo es terminal: se registra con la URL y no se llama al result handler.
func (p *Pipeline) retry(ctx context.Context, a Attempt, cause error) (Attempt, bool) {
	if !errors.IsRetryable(cause) {
		p.logger.Err(cause, "url", a.URL, "attempts", a.Tries)
		return a, false
	}

	next, ok := a.Budget.Spend()
	if !ok {
		p.logger.Err(errors.Wrapf(errors.Mark(cause, errors.ErrRetriesExhausted), "verify %s", a.URL),
			"url", a.URL,
			"attempts", a.Tries,
		)
		return a, false
	}

	p.logger.Debug("retrying link",
		"url", a.URL,
		"attempt", a.Tries+1,
		"retries_left", next.Remaining(),
		"error", cause.Error(),
	)

	if err := resilience.Sleep(ctx, p.backoff.Delay(a.Tries-1)); err != nil {
		p.logger.Err(errors.Wrapf(err, "retry backoff %s", a.URL), "url", a.URL)
		return a, false
	}

	a.Budget = next
	return a, true
}

// report entrega un veredicto terminal al result handler. Los errores del
// handler no se capturan aquí: suben al runner.
func (p *Pipeline) report(ctx context.Context, a Attempt, res LinkResult, provider *domain.Provider, v domain.Verdict, resp *domain.Response) (LinkResult, error) {
	if !a.Record.Redirected() {
		a.Record.Set(domain.AttrRedirected, false)
	}
	a.Record.Set(domain.AttrFinalURL, a.URL)

	outcome := domain.Outcome{
		Live:     v.Kind == domain.VerdictLive,
		Reason:   v.Reason,
		Provider: provider.Name,
	}
	if resp != nil {
		outcome.StatusCode = resp.StatusCode
	}

	res.Status = domain.StatusDead
	if outcome.Live {
		res.Status = domain.StatusLive
	}

	if err := a.Handler.HandleResult(ctx, a.Record, outcome); err != nil {
		res.Err = err
		return res, fmt.Errorf("result handler %s: %w", a.Handler.Name(), err)
	}
	return res, nil
}

// reportUnsupported registra el host sin proveedor. Solo la primera
// aparición de cada host se registra en el log y llega al result handler.
func (p *Pipeline) reportUnsupported(ctx context.Context, a Attempt, res LinkResult) (LinkResult, error) {
	host := registry.HostOf(a.URL)
	if host == "" {
		return p.reportInvalid(ctx, a, res)
	}

	res.Status = domain.StatusUnsupported
	res.Err = errors.ErrUnsupportedService

	if !p.tracker.Record(host) {
		return res, nil
	}

	p.logger.Notice("no support found for file service", "host", host, "url", a.URL)
	if err := a.Handler.HandleError(ctx, domain.MsgNoSupport, a.Record); err != nil {
		return res, fmt.Errorf("result handler %s: %w", a.Handler.Name(), err)
	}
	return res, nil
}

// reportInvalid informa un enlace vacío, sin esquema http(s) o sin host.
// No cuenta como servicio no soportado.
func (p *Pipeline) reportInvalid(ctx context.Context, a Attempt, res LinkResult) (LinkResult, error) {
	res.Status = domain.StatusInvalid
	res.Err = errors.Wrapf(domain.ErrInvalidURL, "%q", a.URL)
	p.logger.Err(res.Err, "url", a.URL)
	if err := a.Handler.HandleError(ctx, domain.MsgInvalidLink, a.Record); err != nil {
		return res, fmt.Errorf("result handler %s: %w", a.Handler.Name(), err)
	}
	return res, nil
}

// reportRedirectLimit corta una cadena de redirects demasiado larga.
func (p *Pipeline) reportRedirectLimit(ctx context.Context, a Attempt, res LinkResult) (LinkResult, error) {
	res.Status = domain.StatusRedirectLimit
	res.Err = errors.Wrapf(errors.ErrRedirectLimit, "%d redirects", a.Redirects)
	p.logger.Err(res.Err, "url", a.URL, "redirects", a.Redirects)

	if err := a.Handler.HandleError(ctx, domain.MsgTooManyRedirects, a.Record); err != nil {
		return res, fmt.Errorf("result handler %s: %w", a.Handler.Name(), err)
	}
	return res, nil
}

// resolveRedirect admite destinos relativos a la URL actual.
func resolveRedirect(current, target string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInterpretation, "current url %q: %v", current, err)
	}
	ref, err := url.Parse(target)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInterpretation, "redirect target %q: %v", target, err)
	}
	return base.ResolveReference(ref).String(), nil
}
