// internal/testutil/mocks.go
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Nota: Los mocks específicos de domain/ports están en sus respectivos paquetes
// Este archivo contiene solo utilidades genéricas sin dependencias circulares

// StubServer es un servidor HTTP de prueba que cuenta las peticiones por path.
type StubServer struct {
	*httptest.Server

	mu     sync.Mutex
	hits   map[string]int
	routes map[string]http.HandlerFunc
}

// NewStubServer crea y arranca un StubServer; se cierra al terminar el test.
func NewStubServer(t *testing.T, routes map[string]http.HandlerFunc) *StubServer {
	t.Helper()

	s := &StubServer{
		hits:   make(map[string]int),
		routes: routes,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *StubServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	h, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// Hits retorna cuántas veces se pidió path.
func (s *StubServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Respond retorna un handler con status y body fijos.
func Respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
