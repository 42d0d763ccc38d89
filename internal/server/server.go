// Package server implements the local preview server: it serves the
// generated site, watches the source tree, and rebuilds on change.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/config"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/logfields"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/metrics"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/site"
)

// buildStatus tracks the latest build result for the health endpoint.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastBuildID  string
	lastOutcome  site.BuildOutcome
	hasGoodBuild bool
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

func (bs *buildStatus) setReport(report *site.BuildReport) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.lastBuildID = report.BuildID
	bs.lastOutcome = report.Outcome
	bs.hasGoodBuild = true
}

func (bs *buildStatus) snapshot() (buildID string, outcome site.BuildOutcome, err error, good bool) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastBuildID, bs.lastOutcome, bs.lastError, bs.hasGoodBuild
}

// Server is the preview server. It owns the generator, the file watcher, and
// the HTTP listener.
type Server struct {
	cfg      *config.Config
	gen      *site.Generator
	hub      *LiveReloadHub
	registry *prom.Registry
	onBuild  func(*site.BuildReport)
	status   buildStatus
	destAbs  string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMetricsRegistry enables the /metrics endpoint backed by reg.
func WithMetricsRegistry(reg *prom.Registry) ServerOption {
	return func(s *Server) { s.registry = reg }
}

// WithOnBuild registers a callback invoked after every completed build,
// successful or not. Used to persist build history.
func WithOnBuild(fn func(*site.BuildReport)) ServerOption {
	return func(s *Server) { s.onBuild = fn }
}

// New creates a preview server around an existing generator.
func New(cfg *config.Config, gen *site.Generator, opts ...ServerOption) *Server {
	s := &Server{cfg: cfg, gen: gen, hub: NewLiveReloadHub()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run builds the site, then serves it until ctx is cancelled. Rebuilds are
// triggered by filesystem changes and, when configured, on a fixed interval.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	srcAbs, err := filepath.Abs(s.cfg.Source)
	if err != nil {
		return fmt.Errorf("resolve source dir: %w", err)
	}
	if st, statErr := os.Stat(srcAbs); statErr != nil || !st.IsDir() {
		return fmt.Errorf("source dir not found: %s", srcAbs)
	}
	s.destAbs, _ = filepath.Abs(s.cfg.Destination)

	watcher, err := newWatcher(srcAbs, s.destAbs)
	if err != nil {
		return fmt.Errorf("watch source tree: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	rebuildReq, trigger := newDebouncer()
	s.startRebuildWorker(ctx, rebuildReq)

	scheduler, err := s.startScheduler(trigger)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	httpSrv, err := s.startHTTP(s.destAbs)
	if err != nil {
		return err
	}

	slog.Info("preview server listening",
		slog.String("addr", fmt.Sprintf("http://localhost:%d", s.cfg.Serve.Port)),
		logfields.Path(s.destAbs))

	for {
		select {
		case <-ctx.Done():
			return s.shutdown(httpSrv)
		case ev, ok := <-watcher.Events:
			if !ok {
				return s.shutdown(httpSrv)
			}
			s.handleFileEvent(watcher, ev, trigger)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return s.shutdown(httpSrv)
			}
			slog.Warn("watcher error", logfields.Error(werr))
		}
	}
}

func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	// The destination lives inside the watched source tree in the default
	// layout; its churn is our own output, never a reason to rebuild.
	if underDir(ev.Name, s.destAbs) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name, s.destAbs)
		}
	}
	slog.Debug("file change detected", logfields.Path(ev.Name))
	trigger()
}

// startRebuildWorker processes rebuild requests one at a time. A request that
// arrives mid-build queues exactly one follow-up.
func (s *Server) startRebuildWorker(ctx context.Context, rebuildReq chan struct{}) {
	var mu sync.Mutex
	running := false
	pending := false

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-rebuildReq:
				if !ok {
					return
				}
				mu.Lock()
				if running {
					pending = true
					mu.Unlock()
					continue
				}
				running = true
				mu.Unlock()

				s.rebuild(ctx)

				mu.Lock()
				running = false
				if pending {
					pending = false
					mu.Unlock()
					select {
					case rebuildReq <- struct{}{}:
					default:
					}
				} else {
					mu.Unlock()
				}
			}
		}
	}()
}

// rebuild runs one build and notifies browsers on completion.
func (s *Server) rebuild(ctx context.Context) {
	report, err := s.gen.Build(ctx)
	if s.onBuild != nil && report != nil {
		s.onBuild(report)
	}
	if err != nil {
		slog.Warn("rebuild failed", logfields.Error(err))
		s.status.setError(err)
		return
	}
	s.status.setReport(report)
	s.hub.Broadcast(report.BuildID)
}

// startScheduler sets up the periodic rebuild job when an interval is
// configured.
func (s *Server) startScheduler(trigger func()) (gocron.Scheduler, error) {
	interval, enabled := s.cfg.Serve.RebuildEvery()
	if !enabled {
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(trigger),
		gocron.WithName("periodic-rebuild"),
	); err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}
	scheduler.Start()
	slog.Info("periodic rebuild scheduled", slog.Duration("interval", interval))
	return scheduler, nil
}

func (s *Server) startHTTP(destAbs string) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/", s.siteHandler(destAbs))
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.cfg.Serve.LiveReload {
		mux.Handle("/livereload", s.hub)
		mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/javascript")
			_, _ = w.Write([]byte(liveReloadScript))
		})
	}
	if s.cfg.Serve.Metrics && s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}

	addr := fmt.Sprintf(":%d", s.cfg.Serve.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind port %d: %w", s.cfg.Serve.Port, err)
	}

	srv := &http.Server{
		Handler:           chain(slog.Default(), mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("HTTP server error", logfields.Error(serveErr))
		}
	}()
	return srv, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	buildID, outcome, err, good := s.status.snapshot()
	w.Header().Set("Content-Type", "application/json")
	if !good {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	fmt.Fprintf(w, `{"build_id":%q,"outcome":%q,"error":%q,"clients":%d}`+"\n",
		buildID, outcome, msg, s.hub.ClientCount())
}

func (s *Server) shutdown(srv *http.Server) error {
	slog.Info("shutting down preview server")
	s.hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	return nil
}
