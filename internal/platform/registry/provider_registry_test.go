// internal/platform/registry/provider_registry_test.go
package registry

import (
	"regexp"
	"sync"
	"testing"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/logx"
	"dlcheck/internal/testutil"
)

func verifyLive(*domain.Response) (domain.Verdict, error) { return domain.Live("ok"), nil }

func newTestProviders() []*domain.Provider {
	return []*domain.Provider{
		{
			Name:     "dropbox",
			Hosts:    []string{"www.dropbox.com", "dropbox.com"},
			Patterns: []*regexp.Regexp{regexp.MustCompile(`(^|\.)dropboxusercontent\.com$`)},
			Verify:   verifyLive,
		},
		{
			Name:     "wildcard",
			Patterns: []*regexp.Regexp{regexp.MustCompile(`\.com$`)},
			Verify:   verifyLive,
		},
		{
			Name:   "mediafire",
			Hosts:  []string{"www.mediafire.com"},
			Verify: verifyLive,
		},
	}
}

func TestProviderRegistry_Resolve(t *testing.T) {
	reg := NewProviderRegistry(logx.NewSilent(), newTestProviders()...)

	tests := []struct {
		name     string
		url      string
		wantOK   bool
		wantName string
	}{
		{"exact host", "https://www.dropbox.com/s/abc/file.zip", true, "dropbox"},
		{"exact host case-insensitive", "https://WWW.DROPBOX.COM/s/abc", true, "dropbox"},
		{"exact beats earlier pattern", "https://www.mediafire.com/file/x", true, "mediafire"},
		{"pattern in registration order", "https://dl.dropboxusercontent.com/x", true, "dropbox"},
		{"fallback pattern", "https://unknown.com/x", true, "wildcard"},
		{"no scheme", "www.dropbox.com/s/abc", true, "dropbox"},
		{"no match", "https://files.example.org/a.zip", false, ""},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := reg.Resolve(tt.url)
			testutil.AssertEqual(t, ok, tt.wantOK, "resolve ok")
			if tt.wantOK {
				testutil.AssertEqual(t, p.Name, tt.wantName, "provider name")
			} else {
				testutil.AssertTrue(t, p == nil, "provider should be nil")
			}
		})
	}
}

func TestProviderRegistry_ExcludesInvalid(t *testing.T) {
	rec := logx.NewRecorder()
	providers := []*domain.Provider{
		{Name: "no-verify", Hosts: []string{"a.com"}},
		{Name: "no-hosts", Verify: verifyLive},
		{Name: "ok", Hosts: []string{"b.com"}, Verify: verifyLive},
		{Name: "ok", Hosts: []string{"c.com"}, Verify: verifyLive},
	}

	reg := NewProviderRegistry(rec, providers...)

	testutil.AssertEqual(t, reg.Len(), 1, "only one valid provider")
	testutil.AssertEqual(t, reg.Names()[0], "ok", "valid provider kept")

	_, ok := reg.Resolve("https://a.com/x")
	testutil.AssertFalse(t, ok, "invalid provider must not resolve")
	_, ok = reg.Resolve("https://c.com/x")
	testutil.AssertFalse(t, ok, "duplicate provider must not resolve")

	errs := 0
	for _, e := range rec.Entries() {
		if e.Level == logx.LevelError {
			errs++
		}
	}
	testutil.AssertEqual(t, errs, 2, "each invalid provider logged once")
}

func TestProviderRegistry_HostCollisionKeepsFirst(t *testing.T) {
	reg := NewProviderRegistry(logx.NewSilent(),
		&domain.Provider{Name: "first", Hosts: []string{"box.com"}, Verify: verifyLive},
		&domain.Provider{Name: "second", Hosts: []string{"box.com", "app.box.com"}, Verify: verifyLive},
	)

	p, ok := reg.Resolve("https://box.com/s/1")
	testutil.AssertTrue(t, ok, "resolves")
	testutil.AssertEqual(t, p.Name, "first", "first registrant owns host")

	p, ok = reg.Resolve("https://app.box.com/s/1")
	testutil.AssertTrue(t, ok, "resolves")
	testutil.AssertEqual(t, p.Name, "second", "unclaimed host still registered")
}

func TestProviderRegistry_ConcurrentResolve(t *testing.T) {
	reg := NewProviderRegistry(logx.NewSilent(), newTestProviders()...)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, u := range testutil.FixtureSupportedLinks {
				reg.Resolve(u)
			}
		}()
	}
	wg.Wait()
}

func TestHostOf(t *testing.T) {
	testutil.AssertEqual(t, HostOf("https://Www.Box.com:443/s/x"), "www.box.com", "port and case")
	testutil.AssertEqual(t, HostOf("  https://drive.google.com/file/d/1 "), "drive.google.com", "trimmed")
	testutil.AssertEqual(t, HostOf("drive.google.com/file/d/1"), "", "schemeless has no host")
	testutil.AssertEqual(t, HostOf("127.0.0.1:8080/f"), "", "host:port without scheme")
	testutil.AssertEqual(t, HostOf("http://[::1]:80/"), "::1", "ipv6")
	testutil.AssertEqual(t, HostOf(""), "", "empty")
}
