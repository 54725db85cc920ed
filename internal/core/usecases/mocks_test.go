// internal/core/usecases/mocks_test.go
package usecases

import (
	"context"
	"sync"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/logx"
)

// mockHandler es un mock de ports.ResultHandler que además deja una marca en
// el logger compartido para poder verificar el orden relativo al resumen.
type mockHandler struct {
	mu      sync.Mutex
	results []handledResult
	errs    []handledError
	log     logx.Logger

	resultErr error
}

type handledResult struct {
	URL        string
	Redirected bool
	Outcome    domain.Outcome
	Record     *domain.LinkRecord
}

type handledError struct {
	URL     string
	Message string
}

func newMockHandler(log logx.Logger) *mockHandler {
	return &mockHandler{log: log}
}

func (m *mockHandler) Name() string { return "mock" }

func (m *mockHandler) HandleResult(ctx context.Context, rec *domain.LinkRecord, outcome domain.Outcome) error {
	m.mu.Lock()
	m.results = append(m.results, handledResult{
		URL:        rec.URL(),
		Redirected: rec.Redirected(),
		Outcome:    outcome,
		Record:     rec,
	})
	m.mu.Unlock()

	if m.log != nil {
		m.log.Info("sink:result", "url", rec.URL())
	}
	return m.resultErr
}

func (m *mockHandler) HandleError(ctx context.Context, message string, rec *domain.LinkRecord) error {
	m.mu.Lock()
	m.errs = append(m.errs, handledError{URL: rec.URL(), Message: message})
	m.mu.Unlock()

	if m.log != nil {
		m.log.Info("sink:error", "url", rec.URL())
	}
	return nil
}

func (m *mockHandler) Close() error { return nil }

func (m *mockHandler) Results() []handledResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]handledResult(nil), m.results...)
}

func (m *mockHandler) Errors() []handledError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]handledError(nil), m.errs...)
}

// mockTransport responde según la URL y cuenta llamadas.
type mockTransport struct {
	mu    sync.Mutex
	calls map[string]int
	do    func(spec domain.RequestSpec) (*domain.Response, error)
}

func newMockTransport(do func(spec domain.RequestSpec) (*domain.Response, error)) *mockTransport {
	return &mockTransport{calls: make(map[string]int), do: do}
}

func (m *mockTransport) Do(ctx context.Context, spec domain.RequestSpec) (*domain.Response, error) {
	m.mu.Lock()
	m.calls[spec.URL]++
	m.mu.Unlock()

	if m.do == nil {
		return &domain.Response{URL: spec.URL, StatusCode: 200}, nil
	}
	return m.do(spec)
}

func (m *mockTransport) Calls(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

func (m *mockTransport) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// mockInput es un mock de ports.InputSource.
type mockInput struct {
	linkField string
	records   []*domain.LinkRecord
	err       error
}

func newMockInput(urls ...string) *mockInput {
	records := make([]*domain.LinkRecord, 0, len(urls))
	for i, u := range urls {
		records = append(records, domain.NewLinkRecord(map[string]any{"id": i, "link": u}, "link"))
	}
	return &mockInput{linkField: "link", records: records}
}

func (m *mockInput) Name() string { return "mock-input" }

func (m *mockInput) GetDownloadLinks(ctx context.Context) (string, []*domain.LinkRecord, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	return m.linkField, m.records, nil
}

func (m *mockInput) Close() error { return nil }
