package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pineunity/apmec-horizon/internal/store"
	"github.com/pineunity/apmec-horizon/internal/telemetry"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

const (
	sessionName  = "mecpanel-session"
	sessionIDKey = "sid"
)

type contextKey int

const (
	sessionIDContextKey contextKey = iota
	scopeContextKey
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// recoverMiddleware turns handler panics into a 500 JSON response.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.Error("HTTP", fmt.Errorf("%v", rec), "Panic serving %s %s", r.Method, r.URL.Path)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs one line per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if r.URL.Path == "/healthz" {
			logging.Debug("HTTP", "%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
			return
		}
		logging.Info("HTTP", "[%s] %s %s %d %s", middleware.GetReqID(r.Context()),
			r.Method, r.URL.RequestURI(), rec.status, time.Since(start))
	})
}

// tracingMiddleware starts a server span per request, continuing any trace
// propagated by the console.
func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := telemetry.StartSpan(ctx, "HTTP "+r.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(ctx)
		next.ServeHTTP(rec, r)

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
			}
		}
		span.SetAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.Int("http.response.status_code", rec.status),
		)
	})
}

// sessionMiddleware assigns every browser a session id and attaches the
// session's store scope to the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// An undecodable cookie yields a fresh session.
		session, _ := s.sessions.Get(r, sessionName)

		id, _ := session.Values[sessionIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			session.Values[sessionIDKey] = id
			if err := session.Save(r, w); err != nil {
				logging.Error("HTTP", err, "Failed to save session")
				writeError(w, http.StatusInternalServerError, "failed to create session")
				return
			}
			logging.Debug("HTTP", "New session %s", logging.TruncateSessionID(id))
		}

		ctx := context.WithValue(r.Context(), sessionIDContextKey, id)
		ctx = context.WithValue(ctx, scopeContextKey, s.registry.Scope(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDContextKey).(string)
	return id
}

func scopeFrom(ctx context.Context) *store.Scope {
	scope, _ := ctx.Value(scopeContextKey).(*store.Scope)
	return scope
}
