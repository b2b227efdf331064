package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/database"
	"github.com/pineunity/apmec-horizon/internal/deploy"
	"github.com/pineunity/apmec-horizon/internal/reconciler"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// maxRequestBody bounds deploy request bodies, uploads included.
const maxRequestBody = 4 << 20

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverMiddleware)
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware)
	r.Use(tracingMiddleware)
	if origins := s.cfg.Panel.AllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Traceparent", "Tracestate"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/metrics", s.handleMetrics)
		r.Get("/operations", s.handleOperations)
		r.Get("/deploy/choices", s.handleChoices)
		r.Delete("/session", s.handleEndSession)

		r.Route("/{kind}", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Post("/", s.handleDeploy)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleRow)
				r.Delete("/", s.handleDelete)
				r.Get("/events", s.handleEvents)
				r.Get("/detail", s.handleDetail)
			})
		})
	})

	return r
}

// kindParam parses the {kind} path value, writing a 404 when it is unknown.
func kindParam(w http.ResponseWriter, r *http.Request) (apmec.Kind, bool) {
	kind, err := apmec.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return kind, true
}

func filtersFrom(r *http.Request) map[string]string {
	query := r.URL.Query()
	if len(query) == 0 {
		return nil
	}
	filters := make(map[string]string, len(query))
	for k := range query {
		filters[k] = query.Get(k)
	}
	return filters
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	if kind == apmec.KindEvent {
		writeError(w, http.StatusBadRequest, "events are listed per resource: /api/v1/{kind}/{id}/events")
		return
	}

	result := s.poller.Poll(r.Context(), scopeFrom(r.Context()), kind, filtersFrom(r))
	writePollResult(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	result := s.poller.PollEvents(r.Context(), scopeFrom(r.Context()), kind, chi.URLParam(r, "id"))
	writePollResult(w, result)
}

func writePollResult(w http.ResponseWriter, result reconciler.PollResult) {
	if result.Rows == nil {
		result.Rows = []reconciler.Row{}
	}
	writeJSON(w, outcomeStatus(result.Outcome), result)
}

func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	result := s.poller.RefreshRow(r.Context(), scopeFrom(r.Context()), kind, chi.URLParam(r, "id"))
	writeJSON(w, outcomeStatus(result.Outcome), result)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	rec, err := s.client.Show(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, outcomeStatus(reconciler.Classify(err)), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	if !kind.Deployable() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s cannot be deployed", kind.Plural()))
		return
	}

	var req deploy.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid deploy request: "+err.Error())
		return
	}

	rec, err := s.deployer.Deploy(r.Context(), kind, req, sessionID(r.Context()))
	if err != nil {
		var verr *deploy.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
		case errors.Is(err, deploy.ErrDuplicateDeploy):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	err := s.deployer.Delete(r.Context(), kind, id, sessionID(r.Context()))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case apmec.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInFlight):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) handleChoices(w http.ResponseWriter, r *http.Request) {
	kind, err := apmec.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	choices, err := deploy.LoadChoices(r.Context(), s.client, kind)
	if err != nil {
		if r.Context().Err() != nil {
			// The console went away.
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, choices)
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "operations log is disabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ops, err := s.db.Recent(r.Context(), limit)
	if err != nil {
		logging.Error("Server", err, "Failed to read operations")
		writeError(w, http.StatusInternalServerError, "failed to read operations")
		return
	}
	writeJSON(w, http.StatusOK, ops)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	summary := s.poller.Metrics.GetSummary()

	// Row counts of the lists held for the caller's session.
	lists := map[string]int{}
	scope := scopeFrom(r.Context())
	for _, key := range scope.Keys() {
		lists[key.String()] = len(scope.Get(key))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"polls":    summary,
		"sessions": s.registry.Len(),
		"lists":    lists,
	})
}

// handleEndSession drops the lists stored for the caller and expires the
// session cookie. The next request starts a fresh session.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r.Context())
	s.registry.Drop(id)

	session, _ := s.sessions.Get(r, sessionName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		logging.Error("HTTP", err, "Failed to expire session")
	}
	logging.Debug("HTTP", "Ended session %s", logging.TruncateSessionID(id))
	w.WriteHeader(http.StatusNoContent)
}
