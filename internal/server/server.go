package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/config"
	"github.com/pineunity/apmec-horizon/internal/database"
	"github.com/pineunity/apmec-horizon/internal/deploy"
	"github.com/pineunity/apmec-horizon/internal/reconciler"
	"github.com/pineunity/apmec-horizon/internal/store"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// shutdownTimeout bounds the graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server is the panel backend.
type Server struct {
	mu  sync.RWMutex
	cfg config.PanelConfig

	client   *apmec.Client
	poller   *reconciler.Poller
	registry *store.Registry
	deployer *deploy.Deployer
	db       *database.DB
	sessions *sessions.CookieStore
	handler  http.Handler
}

// New creates the panel backend. db may be nil, in which case deploys and
// deletes are not recorded and /api/v1/operations is unavailable.
func New(cfg config.PanelConfig, client *apmec.Client, db *database.DB) (*Server, error) {
	key := []byte(cfg.Panel.SessionKey)
	if len(key) == 0 {
		// Sessions will not survive a restart.
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("failed to generate session key")
		}
		logging.Warn("Server", "panel.session_key is not set, using a random key")
	}

	maxAge := cfg.Panel.SessionMaxAge
	if maxAge <= 0 {
		maxAge = config.DefaultSessionMaxAge
	}

	s := &Server{
		cfg:      cfg,
		client:   client,
		poller:   reconciler.NewPoller(client),
		registry: store.NewRegistry(),
		db:       db,
		sessions: sessions.NewCookieStore(key),
	}
	s.sessions.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	var operations deploy.OperationLog
	if db != nil {
		operations = db
	}
	s.deployer = deploy.NewDeployer(client, operations)

	s.handler = s.routes()
	return s, nil
}

// Handler returns the HTTP handler of the panel.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the session scope registry.
func (s *Server) Registry() *store.Registry {
	return s.registry
}

func (s *Server) config() config.PanelConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Reload applies a changed configuration. Only the orchestration endpoint and
// credentials take effect without a restart.
func (s *Server) Reload(cfg config.PanelConfig) {
	if err := s.client.Update(cfg.Orchestrator); err != nil {
		logging.Error("Server", err, "Ignoring reloaded orchestrator configuration")
		return
	}

	s.mu.Lock()
	previous := s.cfg
	s.cfg.Orchestrator = cfg.Orchestrator
	s.mu.Unlock()

	if !reflect.DeepEqual(previous.Panel, cfg.Panel) {
		logging.Warn("Server", "Changes to the panel section take effect after a restart")
	}
	logging.Info("Server", "Orchestration API is now %s", s.client.Endpoint())
}

// Start listens on panel.listen and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listen := s.config().Panel.Listen
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	cfg := s.config()

	maxAge := cfg.Panel.SessionMaxAge
	if maxAge <= 0 {
		maxAge = config.DefaultSessionMaxAge
	}
	schedule := cfg.Panel.SweepSchedule
	if schedule == "" {
		schedule = config.DefaultSweepSchedule
	}
	sweeper, err := store.NewSweeper(s.registry, schedule, maxAge)
	if err != nil {
		ln.Close()
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logging.Info("Server", "Panel backend listening on %s (orchestration API %s)", ln.Addr(), s.client.Endpoint())
	notify(daemon.SdNotifyReady)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("panel backend failed: %w", err)
		}
		return nil
	}

	notify(daemon.SdNotifyStopping)
	logging.Info("Server", "Shutting down panel backend")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down panel backend: %w", err)
	}
	return nil
}

// notify tells systemd about state changes. Outside systemd it does nothing.
func notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Server", "Failed to notify systemd: %v", err)
		return
	}
	if sent {
		logging.Debug("Server", "Notified systemd: %s", state)
	}
}
