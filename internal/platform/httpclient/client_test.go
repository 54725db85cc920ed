package httpclient

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/errors"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/testutil"
)

func TestClient_DoesNotFollowRedirects(t *testing.T) {
	srv := testutil.NewStubServer(t, map[string]http.HandlerFunc{
		"/start": func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/final", http.StatusFound)
		},
		"/final": testutil.Respond(http.StatusOK, "final"),
	})

	c := New(DefaultConfig(), logx.NewSilent())
	resp, err := c.Do(context.Background(), domain.RequestSpec{URL: srv.URL + "/start"})

	testutil.AssertNoError(t, err, "redirect response is not an error")
	testutil.AssertEqual(t, resp.StatusCode, http.StatusFound, "status")
	testutil.AssertEqual(t, resp.Location(), "/final", "location header kept")
	testutil.AssertEqual(t, srv.Hits("/final"), 0, "redirect must not be followed")
}

func TestClient_Non2xxIsNotAnError(t *testing.T) {
	srv := testutil.NewStubServer(t, map[string]http.HandlerFunc{
		"/gone": testutil.Respond(http.StatusNotFound, "not here"),
	})

	c := New(DefaultConfig(), logx.NewSilent())
	resp, err := c.Do(context.Background(), domain.RequestSpec{URL: srv.URL + "/gone"})

	testutil.AssertNoError(t, err, "404 is a normal response")
	testutil.AssertEqual(t, resp.StatusCode, http.StatusNotFound, "status")
	testutil.AssertEqual(t, string(resp.Body), "not here", "body")
}

func TestClient_SendsHeadersAndUserAgent(t *testing.T) {
	var gotUA, gotCustom, gotMethod string
	srv := testutil.NewStubServer(t, map[string]http.HandlerFunc{
		"/h": func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotCustom = r.Header.Get("X-Probe")
			gotMethod = r.Method
		},
	})

	c := New(DefaultConfig(), logx.NewSilent())
	_, err := c.Do(context.Background(), domain.RequestSpec{
		Method: http.MethodHead,
		URL:    srv.URL + "/h",
		Header: http.Header{"X-Probe": []string{"1"}},
	})

	testutil.AssertNoError(t, err, "request")
	testutil.AssertEqual(t, gotUA, DefaultUserAgent, "default user agent")
	testutil.AssertEqual(t, gotCustom, "1", "custom header")
	testutil.AssertEqual(t, gotMethod, http.MethodHead, "method")
}

func TestClient_TimeoutIsClassified(t *testing.T) {
	release := make(chan struct{})
	srv := testutil.NewStubServer(t, map[string]http.HandlerFunc{
		"/slow": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		},
	})
	defer close(release)

	c := New(DefaultConfig(), logx.NewSilent())
	_, err := c.Do(context.Background(), domain.RequestSpec{
		URL:     srv.URL + "/slow",
		Timeout: 50 * time.Millisecond,
	})

	testutil.AssertError(t, err, "timeout")
	testutil.AssertTrue(t, errors.IsTimeout(err), "classified as timeout")
	testutil.AssertTrue(t, errors.IsRetryable(err), "timeouts consume the retry budget")
}

func TestClient_ConnectionRefusedIsClassified(t *testing.T) {
	c := New(DefaultConfig(), logx.NewSilent())
	_, err := c.Do(context.Background(), domain.RequestSpec{URL: "http://127.0.0.1:1/x"})

	testutil.AssertError(t, err, "refused")
	testutil.AssertTrue(t, errors.IsConnectionFailed(err), "classified as connection failure")
}

func TestClient_PlainHTTPThroughProxyIsNotTunneled(t *testing.T) {
	var gotHost, gotMethod string
	proxy := testutil.NewStubServer(t, map[string]http.HandlerFunc{
		"/f1": func(w http.ResponseWriter, r *http.Request) {
			gotHost = r.Host
			gotMethod = r.Method
			w.WriteHeader(http.StatusOK)
		},
	})

	c := New(DefaultConfig(), logx.NewSilent())
	resp, err := c.Do(context.Background(), domain.RequestSpec{
		URL:   "http://files.example.test/f1",
		Proxy: proxy.URL,
	})

	testutil.AssertNoError(t, err, "proxied request")
	testutil.AssertEqual(t, resp.StatusCode, http.StatusOK, "status")
	testutil.AssertEqual(t, gotHost, "files.example.test", "proxy received absolute-form request")
	testutil.AssertEqual(t, gotMethod, http.MethodGet, "no CONNECT")
}

func TestClient_BodyIsCapped(t *testing.T) {
	srv := testutil.NewStubServer(t, map[string]http.HandlerFunc{
		"/big": testutil.Respond(http.StatusOK, strings.Repeat("x", 4096)),
	})

	cfg := DefaultConfig()
	cfg.MaxBodyBytes = 100
	c := New(cfg, logx.NewSilent())

	resp, err := c.Do(context.Background(), domain.RequestSpec{URL: srv.URL + "/big"})
	testutil.AssertNoError(t, err, "request")
	testutil.AssertEqual(t, len(resp.Body), 100, "body capped")
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 0.001
	cfg.RateLimitBurst = 1
	c := New(cfg, logx.NewSilent())

	srv := testutil.NewStubServer(t, map[string]http.HandlerFunc{
		"/r": testutil.Respond(http.StatusOK, ""),
	})

	_, err := c.Do(context.Background(), domain.RequestSpec{URL: srv.URL + "/r"})
	testutil.AssertNoError(t, err, "first request uses the burst token")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Do(ctx, domain.RequestSpec{URL: srv.URL + "/r"})
	testutil.AssertError(t, err, "second request cannot get a token in time")
	testutil.AssertEqual(t, srv.Hits("/r"), 1, "limited request never sent")
}
