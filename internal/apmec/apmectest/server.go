// Package apmectest provides an in-memory orchestration API for tests.
package apmectest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/config"
)

// Token is the credential the fake server expects when auth is checked.
const Token = "test-token"

type failure struct {
	status int
	body   string
}

// Server is an httptest server speaking the orchestration API.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	resources map[apmec.Kind][]apmec.Record
	failures  map[apmec.Kind]failure
	requests  map[string]int
	lastToken string
}

// NewServer starts a fake API that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		resources: make(map[apmec.Kind][]apmec.Record),
		failures:  make(map[apmec.Kind]failure),
		requests:  make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// Config returns an orchestrator configuration pointing at the server.
func (s *Server) Config() config.OrchestratorConfig {
	return config.OrchestratorConfig{
		Endpoint: s.URL,
		Auth:     config.AuthConfig{Mode: config.AuthModeKeystone, Token: Token},
	}
}

// Client returns an apmec client for the server.
func (s *Server) Client(t testing.TB) *apmec.Client {
	t.Helper()
	c, err := apmec.NewClient(s.Config())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// Set replaces the resources of kind. Records are copied.
func (s *Server) Set(kind apmec.Kind, records ...apmec.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]apmec.Record, 0, len(records))
	for _, r := range records {
		cp = append(cp, copyRecord(r))
	}
	s.resources[kind] = cp
}

// Records returns a copy of the resources of kind.
func (s *Server) Records(kind apmec.Kind) []apmec.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]apmec.Record, 0, len(s.resources[kind]))
	for _, r := range s.resources[kind] {
		out = append(out, copyRecord(r))
	}
	return out
}

// Fail makes every following request for kind answer with status and body.
// An empty body produces a JSON error envelope.
func (s *Server) Fail(kind apmec.Kind, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if body == "" {
		body = fmt.Sprintf(`{"message": "injected failure %d"}`, status)
	}
	s.failures[kind] = failure{status: status, body: body}
}

// Recover clears a failure installed with Fail.
func (s *Server) Recover(kind apmec.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, kind)
}

// Requests returns how many requests with the given method hit the
// collection of kind.
func (s *Server) Requests(method string, kind apmec.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+kind.Plural()]
}

// LastToken returns the X-Auth-Token of the most recent request.
func (s *Server) LastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastToken
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != apmec.APIVersion {
		writeError(w, http.StatusNotFound, "unknown path "+r.URL.Path)
		return
	}
	kind, err := apmec.ParseKind(parts[1])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	id := ""
	if len(parts) > 2 {
		id = parts[2]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests[r.Method+" "+kind.Plural()]++
	s.lastToken = r.Header.Get(apmec.AuthTokenHeader)

	if f, ok := s.failures[kind]; ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		w.Write([]byte(f.body))
		return
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		s.list(w, r, kind)
	case r.Method == http.MethodGet:
		s.show(w, kind, id)
	case r.Method == http.MethodPost && id == "":
		s.create(w, r, kind)
	case r.Method == http.MethodDelete && id != "":
		s.delete(w, kind, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, kind apmec.Kind) {
	query := r.URL.Query()
	out := make([]apmec.Record, 0)
	for _, rec := range s.resources[kind] {
		match := true
		for key := range query {
			if v, _ := rec.String(key); v != query.Get(key) {
				match = false
				break
			}
		}
		if match {
			out = append(out, rec)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{kind.Plural(): out})
}

func (s *Server) show(w http.ResponseWriter, kind apmec.Kind, id string) {
	for _, rec := range s.resources[kind] {
		if rec.ID() == id {
			writeJSON(w, http.StatusOK, map[string]any{kind.Singular(): rec})
			return
		}
	}
	writeNotFound(w, kind, id)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, kind apmec.Kind) {
	var body map[string]apmec.Record
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	rec, ok := body[kind.Singular()]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("missing %q", kind.Singular()))
		return
	}
	rec = copyRecord(rec)
	rec["id"] = uuid.NewString()
	if _, ok := rec["status"]; !ok {
		rec["status"] = "PENDING_CREATE"
	}
	s.resources[kind] = append(s.resources[kind], rec)
	writeJSON(w, http.StatusCreated, map[string]any{kind.Singular(): rec})
}

func (s *Server) delete(w http.ResponseWriter, kind apmec.Kind, id string) {
	recs := s.resources[kind]
	for i, rec := range recs {
		if rec.ID() == id {
			s.resources[kind] = append(recs[:i:i], recs[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeNotFound(w, kind, id)
}

func writeNotFound(w http.ResponseWriter, kind apmec.Kind, id string) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"NotFoundError": map[string]any{
			"type":    "NotFoundError",
			"message": fmt.Sprintf("%s %s could not be found", kind, id),
		},
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func copyRecord(r apmec.Record) apmec.Record {
	cp := make(apmec.Record, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}
