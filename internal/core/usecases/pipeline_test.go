// internal/core/usecases/pipeline_test.go
package usecases

import (
	"context"
	stderrors "errors"
	"net"
	"regexp"
	"strings"
	"testing"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/errors"
	"dlcheck/internal/platform/httpclient"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/platform/proxypool"
	"dlcheck/internal/platform/registry"
	"dlcheck/internal/platform/tracker"
	"dlcheck/internal/testutil"
)

type pipelineFixture struct {
	pipeline  *Pipeline
	transport *mockTransport
	tracker   *tracker.Unsupported
	log       *logx.Recorder
	handler   *mockHandler
}

func newPipelineFixture(t *testing.T, providers []*domain.Provider, transport *mockTransport, maxRedirects int) *pipelineFixture {
	t.Helper()

	log := logx.NewRecorder()
	trk := tracker.NewUnsupported()
	p := NewPipeline(PipelineOptions{
		Resolver:     registry.NewProviderRegistry(log, providers...),
		Builder:      httpclient.NewBuilder(httpclient.DefaultConfig(), proxypool.Disabled(), log),
		Transport:    transport,
		Tracker:      trk,
		MaxRedirects: maxRedirects,
		Logger:       log,
	})

	return &pipelineFixture{
		pipeline:  p,
		transport: transport,
		tracker:   trk,
		log:       log,
		handler:   newMockHandler(log),
	}
}

func (f *pipelineFixture) attempt(url string, retries int, last bool) Attempt {
	rec := domain.NewLinkRecord(map[string]any{"link": url}, "link")
	return NewAttempt(rec, f.handler, retries, last)
}

func liveProvider(name, host string) *domain.Provider {
	return &domain.Provider{
		Name:  name,
		Hosts: []string{host},
		Verify: func(resp *domain.Response) (domain.Verdict, error) {
			if resp.StatusCode == 200 {
				return domain.Live("ok"), nil
			}
			return domain.Dead("status"), nil
		},
	}
}

func TestPipeline_ReportsTerminalVerdict(t *testing.T) {
	f := newPipelineFixture(t, []*domain.Provider{liveProvider("p1", "example-a.com")}, newMockTransport(nil), 0)

	res, err := f.pipeline.Verify(context.Background(), f.attempt("https://example-a.com/f1", 0, false))

	testutil.AssertNoError(t, err, "verify")
	testutil.AssertEqual(t, res.Status, domain.StatusLive, "status")
	testutil.AssertEqual(t, res.Tries, 1, "one try")

	results := f.handler.Results()
	testutil.AssertEqual(t, len(results), 1, "one report")
	testutil.AssertTrue(t, results[0].Outcome.Live, "live outcome")
	testutil.AssertEqual(t, results[0].Outcome.Provider, "p1", "provider attributed")
	testutil.AssertFalse(t, results[0].Redirected, "not redirected")

	v, ok := results[0].Record.Get(domain.AttrRedirected)
	testutil.AssertTrue(t, ok, "redirected flag always set")
	testutil.AssertEqual(t, v, false, "redirected=false")

	proxy, ok := results[0].Record.Get(domain.AttrProxy)
	testutil.AssertTrue(t, ok, "proxy provenance recorded")
	testutil.AssertNil(t, proxy, "no proxy when pool disabled")
}

func TestPipeline_DeadVerdictIsReported(t *testing.T) {
	transport := newMockTransport(func(spec domain.RequestSpec) (*domain.Response, error) {
		return &domain.Response{URL: spec.URL, StatusCode: 404}, nil
	})
	f := newPipelineFixture(t, []*domain.Provider{liveProvider("p1", "example-a.com")}, transport, 0)

	res, err := f.pipeline.Verify(context.Background(), f.attempt("https://example-a.com/gone", 3, false))

	testutil.AssertNoError(t, err, "verify")
	testutil.AssertEqual(t, res.Status, domain.StatusDead, "dead")
	testutil.AssertEqual(t, transport.Total(), 1, "non-2xx is not retried")
	testutil.AssertEqual(t, f.handler.Results()[0].Outcome.StatusCode, 404, "status code passed through")
}

func TestPipeline_ProviderRedirect(t *testing.T) {
	const a = "https://interstitial.example/a"
	const b = "https://files.example/b"

	provider := &domain.Provider{
		Name:  "p",
		Hosts: []string{"interstitial.example", "files.example"},
		Verify: func(resp *domain.Response) (domain.Verdict, error) {
			if resp.URL == a {
				return domain.RedirectTo(b), nil
			}
			return domain.Live("file"), nil
		},
	}
	f := newPipelineFixture(t, []*domain.Provider{provider}, newMockTransport(nil), 0)

	res, err := f.pipeline.Verify(context.Background(), f.attempt(a, 0, true))

	testutil.AssertNoError(t, err, "verify")
	testutil.AssertEqual(t, res.Redirects, 1, "one redirect")
	testutil.AssertEqual(t, res.FinalURL, b, "final url")

	results := f.handler.Results()
	testutil.AssertEqual(t, len(results), 1, "exactly one terminal report")
	testutil.AssertTrue(t, results[0].Redirected, "record marked redirected")
	testutil.AssertEqual(t, results[0].URL, a, "original link field untouched")

	final, _ := results[0].Record.Get(domain.AttrFinalURL)
	testutil.AssertEqual(t, final, b, "final url recorded")
	testutil.AssertEqual(t, f.transport.Calls(a), 1, "A probed once")
	testutil.AssertEqual(t, f.transport.Calls(b), 1, "B probed once")
	testutil.AssertEqual(t, f.log.Count(logx.LevelNotice, MarkerSummary), 1, "summary after chain")
	testutil.AssertTrue(t, f.log.Index("sink:result") < f.log.Index(MarkerSummary), "summary after report")
}

func TestPipeline_RelativeRedirect(t *testing.T) {
	provider := &domain.Provider{
		Name:  "p",
		Hosts: []string{"files.example"},
		Verify: func(resp *domain.Response) (domain.Verdict, error) {
			if strings.HasSuffix(resp.URL, "/start") {
				return domain.RedirectTo("/download/1"), nil
			}
			return domain.Live("file"), nil
		},
	}
	f := newPipelineFixture(t, []*domain.Provider{provider}, newMockTransport(nil), 0)

	res, _ := f.pipeline.Verify(context.Background(), f.attempt("https://files.example/start", 0, false))

	testutil.AssertEqual(t, res.FinalURL, "https://files.example/download/1", "resolved against current url")
	testutil.AssertEqual(t, res.Status, domain.StatusLive, "live")
}

func TestPipeline_RedirectToUnsupportedHost(t *testing.T) {
	provider := &domain.Provider{
		Name:  "p",
		Hosts: []string{"files.example"},
		Verify: func(resp *domain.Response) (domain.Verdict, error) {
			return domain.RedirectTo("https://mirror.unknown.test/x"), nil
		},
	}
	f := newPipelineFixture(t, []*domain.Provider{provider}, newMockTransport(nil), 0)

	res, _ := f.pipeline.Verify(context.Background(), f.attempt("https://files.example/a", 0, false))

	testutil.AssertEqual(t, res.Status, domain.StatusUnsupported, "redirect target re-resolved")
	testutil.AssertEqual(t, len(f.handler.Errors()), 1, "unsupported reported once")
	testutil.AssertEqual(t, f.tracker.Count("mirror.unknown.test"), 1, "counted")
}

func TestPipeline_RedirectLimit(t *testing.T) {
	n := 0
	provider := &domain.Provider{
		Name:  "loop",
		Hosts: []string{"loop.example"},
		Verify: func(resp *domain.Response) (domain.Verdict, error) {
			n++
			return domain.RedirectTo("https://loop.example/" + strings.Repeat("x", n)), nil
		},
	}
	f := newPipelineFixture(t, []*domain.Provider{provider}, newMockTransport(nil), 3)

	res, err := f.pipeline.Verify(context.Background(), f.attempt("https://loop.example/", 5, false))

	testutil.AssertNoError(t, err, "verify")
	testutil.AssertEqual(t, res.Status, domain.StatusRedirectLimit, "limit reached")
	testutil.AssertEqual(t, res.Redirects, 3, "three redirects followed")
	testutil.AssertEqual(t, f.transport.Total(), 4, "initial probe plus three redirects")
	testutil.AssertEqual(t, len(f.handler.Results()), 0, "no verdict reported")

	errs := f.handler.Errors()
	testutil.AssertEqual(t, len(errs), 1, "one error report")
	testutil.AssertEqual(t, errs[0].Message, domain.MsgTooManyRedirects, "fixed message")
	testutil.AssertTrue(t, errors.Is(res.Err, errors.ErrRedirectLimit), "classified")
}

func TestPipeline_RetriesExhausted(t *testing.T) {
	provider := &domain.Provider{
		Name:  "raises",
		Hosts: []string{"example-a.com"},
		Verify: func(*domain.Response) (domain.Verdict, error) {
			return domain.Verdict{}, stderrors.New("cannot parse page")
		},
	}
	f := newPipelineFixture(t, []*domain.Provider{provider}, newMockTransport(nil), 0)

	res, err := f.pipeline.Verify(context.Background(), f.attempt("https://example-a.com/f1", 2, false))

	testutil.AssertNoError(t, err, "failures are not returned")
	testutil.AssertEqual(t, res.Status, domain.StatusFailed, "failed")
	testutil.AssertEqual(t, res.Tries, 3, "1 initial + 2 retries")
	testutil.AssertEqual(t, f.transport.Total(), 3, "three probes")
	testutil.AssertEqual(t, len(f.handler.Results()), 0, "no result sink call")
	testutil.AssertEqual(t, len(f.handler.Errors()), 0, "no error sink call")
	testutil.AssertTrue(t, errors.IsInterpretation(res.Err), "interpretation failure")

	terminal := 0
	for _, e := range f.log.Entries() {
		if e.Level == logx.LevelError && e.Fields["url"] == "https://example-a.com/f1" {
			terminal++
		}
	}
	testutil.AssertEqual(t, terminal, 1, "one terminal log entry with url")
}

func TestPipeline_TransportFailureThenSuccess(t *testing.T) {
	calls := 0
	transport := newMockTransport(func(spec domain.RequestSpec) (*domain.Response, error) {
		calls++
		if calls == 1 {
			return nil, errors.Classify(&net.OpError{Op: "dial", Err: stderrors.New("connection refused")})
		}
		return &domain.Response{URL: spec.URL, StatusCode: 200}, nil
	})
	f := newPipelineFixture(t, []*domain.Provider{liveProvider("p1", "example-a.com")}, transport, 0)

	res, _ := f.pipeline.Verify(context.Background(), f.attempt("https://example-a.com/f1", 1, false))

	testutil.AssertEqual(t, res.Status, domain.StatusLive, "recovered on retry")
	testutil.AssertEqual(t, res.Tries, 2, "two tries")

	attempts, _ := f.handler.Results()[0].Record.Get(domain.AttrAttempts)
	testutil.AssertEqual(t, attempts, 2, "attempts recorded")
}

func TestPipeline_PanickingVerifyIsRetried(t *testing.T) {
	calls := 0
	provider := &domain.Provider{
		Name:  "fragile",
		Hosts: []string{"example-a.com"},
		Verify: func(*domain.Response) (domain.Verdict, error) {
			calls++
			if calls == 1 {
				var m map[string]int
				m["boom"]++
			}
			return domain.Live("ok"), nil
		},
	}
	f := newPipelineFixture(t, []*domain.Provider{provider}, newMockTransport(nil), 0)

	res, _ := f.pipeline.Verify(context.Background(), f.attempt("https://example-a.com/f1", 1, false))

	testutil.AssertEqual(t, res.Status, domain.StatusLive, "panic consumed one retry")
	testutil.AssertEqual(t, len(f.handler.Results()), 1, "reported once")
}

func TestPipeline_UnsupportedFirstOccurrenceOnly(t *testing.T) {
	f := newPipelineFixture(t, []*domain.Provider{liveProvider("p1", "example-a.com")}, newMockTransport(nil), 0)

	for _, u := range []string{"https://unknown-host.test/a", "https://UNKNOWN-HOST.test/b"} {
		res, err := f.pipeline.Verify(context.Background(), f.attempt(u, 0, false))
		testutil.AssertNoError(t, err, "verify")
		testutil.AssertEqual(t, res.Status, domain.StatusUnsupported, "unsupported")
	}

	testutil.AssertEqual(t, f.log.Count(logx.LevelNotice, "no support found for file service"), 1, "one notice")
	errs := f.handler.Errors()
	testutil.AssertEqual(t, len(errs), 1, "one HandleError")
	testutil.AssertEqual(t, errs[0].Message, "No support found for file service.", "fixed message")
	testutil.AssertEqual(t, f.tracker.Count("unknown-host.test"), 2, "counter is 2")
	testutil.AssertEqual(t, f.transport.Total(), 0, "never probed")
}

func TestPipeline_PatternMatchedProvider(t *testing.T) {
	provider := &domain.Provider{
		Name:     "cdn",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`^dl\d+\.cdn\.example$`)},
		Verify:   func(*domain.Response) (domain.Verdict, error) { return domain.Live("ok"), nil },
	}
	f := newPipelineFixture(t, []*domain.Provider{provider}, newMockTransport(nil), 0)

	res, _ := f.pipeline.Verify(context.Background(), f.attempt("https://dl42.cdn.example/f", 0, false))
	testutil.AssertEqual(t, res.Provider, "cdn", "pattern match")
	testutil.AssertEqual(t, res.Status, domain.StatusLive, "live")
}

func TestPipeline_InvalidURL(t *testing.T) {
	f := newPipelineFixture(t, nil, newMockTransport(nil), 0)

	res, _ := f.pipeline.Verify(context.Background(), f.attempt("", 0, false))

	testutil.AssertEqual(t, res.Status, domain.StatusInvalid, "invalid")
	errs := f.handler.Errors()
	testutil.AssertEqual(t, len(errs), 1, "reported")
	testutil.AssertEqual(t, errs[0].Message, domain.MsgInvalidLink, "message")
	testutil.AssertEqual(t, f.tracker.Total(), 0, "not counted as unsupported")
}

func TestPipeline_NonHTTPLinksAreInvalid(t *testing.T) {
	providers := []*domain.Provider{
		liveProvider("files", "www.dropbox.com"),
		liveProvider("p1", "example-a.com"),
	}

	tests := []struct {
		name string
		link string
	}{
		{"schemeless host and path", "www.dropbox.com/s/abc"},
		{"schemeless host and port", "127.0.0.1:8080/f"},
		{"non http scheme", "ftp://example-a.com/f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t, providers, newMockTransport(nil), 0)

			res, err := f.pipeline.Verify(context.Background(), f.attempt(tt.link, 2, false))

			testutil.AssertNoError(t, err, "verify")
			testutil.AssertEqual(t, res.Status, domain.StatusInvalid, "invalid")
			testutil.AssertEqual(t, f.transport.Total(), 0, "never requested")
			testutil.AssertEqual(t, f.tracker.Total(), 0, "not counted as unsupported")

			errs := f.handler.Errors()
			testutil.AssertEqual(t, len(errs), 1, "reported once")
			testutil.AssertEqual(t, errs[0].Message, domain.MsgInvalidLink, "message")
		})
	}
}

func TestPipeline_TrimsLinkBeforeRequest(t *testing.T) {
	f := newPipelineFixture(t, []*domain.Provider{liveProvider("p1", "example-a.com")}, newMockTransport(nil), 0)

	res, _ := f.pipeline.Verify(context.Background(), f.attempt("  https://example-a.com/f1\n", 0, false))

	testutil.AssertEqual(t, res.Status, domain.StatusLive, "live")
	testutil.AssertEqual(t, f.transport.Calls("https://example-a.com/f1"), 1, "requested trimmed url")
}

func TestPipeline_SinkErrorPropagates(t *testing.T) {
	f := newPipelineFixture(t, []*domain.Provider{liveProvider("p1", "example-a.com")}, newMockTransport(nil), 0)
	f.handler.resultErr = stderrors.New("disk full")

	_, err := f.pipeline.Verify(context.Background(), f.attempt("https://example-a.com/f1", 3, true))

	testutil.AssertError(t, err, "sink error surfaces")
	testutil.AssertEqual(t, f.transport.Total(), 1, "sink errors are not retried")
	testutil.AssertEqual(t, f.log.Count(logx.LevelNotice, MarkerSummary), 1, "summary still emitted")
}

func TestPipeline_LastLinkRetriedEmitsSummaryOnce(t *testing.T) {
	calls := 0
	transport := newMockTransport(func(spec domain.RequestSpec) (*domain.Response, error) {
		calls++
		if calls < 3 {
			return nil, errors.Mark(stderrors.New("i/o timeout"), errors.ErrTimeout)
		}
		return &domain.Response{URL: spec.URL, StatusCode: 200}, nil
	})
	f := newPipelineFixture(t, []*domain.Provider{liveProvider("p1", "example-a.com")}, transport, 0)

	_, _ = f.pipeline.Verify(context.Background(), f.attempt("https://example-a.com/f1", 2, true))

	testutil.AssertEqual(t, f.log.Count(logx.LevelNotice, MarkerSummary), 1, "summary once")
	testutil.AssertEqual(t, f.log.Count(logx.LevelNotice, MarkerFinish), 1, "finish marker once")
	testutil.AssertTrue(t, f.log.Index("sink:result") < f.log.Index(MarkerSummary), "after eventual resolution")
	testutil.AssertTrue(t, f.log.Index(MarkerSummary) < f.log.Index(MarkerFinish), "summary before finish marker")
}

func TestPipeline_NotLastNeverEmitsSummary(t *testing.T) {
	f := newPipelineFixture(t, []*domain.Provider{liveProvider("p1", "example-a.com")}, newMockTransport(nil), 0)

	_, _ = f.pipeline.Verify(context.Background(), f.attempt("https://example-a.com/f1", 0, false))
	_, _ = f.pipeline.Verify(context.Background(), f.attempt("https://unknown-host.test/f2", 0, false))

	testutil.AssertEqual(t, f.log.Count(logx.LevelNotice, MarkerSummary), 0, "no summary without last link")
}
