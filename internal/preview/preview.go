// Package preview serves the generated site over HTTP and rebuilds it
// whenever a source file changes.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/config"
	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/generator"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

const debounceWindow = 300 * time.Millisecond

// Server watches the source tree behind a configuration and serves the
// rendered output, rebuilding on changes.
type Server struct {
	cfg  *config.Config
	gen  *generator.Generator
	reg  *prometheus.Registry
	port int
}

// NewServer wires up a preview server for the given configuration. Builds
// triggered by the server are recorded in a dedicated Prometheus registry
// exposed on /metrics.
func NewServer(cfg *config.Config, port int) *Server {
	reg := prometheus.NewRegistry()
	gen := generator.New(cfg)
	gen.SetRecorder(metrics.NewPrometheusRecorder(reg))
	return &Server{cfg: cfg, gen: gen, reg: reg, port: port}
}

// Run builds the site, serves it on the configured port and rebuilds on
// filesystem changes until ctx is cancelled. The initial build may fail
// without stopping the server; the next successful rebuild recovers.
func (s *Server) Run(ctx context.Context) error {
	sourceDir, err := s.sourceDir()
	if err != nil {
		return err
	}

	if err := s.gen.Build(); err != nil {
		slog.Error("Initial build failed", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	defer func() { _ = watcher.Close() }()
	if err := watchRecursive(watcher, sourceDir); err != nil {
		return err
	}

	httpServer, err := s.listen(ctx)
	if err != nil {
		return err
	}

	rebuildReq := make(chan struct{}, 1)
	trigger := debounced(debounceWindow, rebuildReq)
	go s.rebuildLoop(ctx, rebuildReq)

	for {
		select {
		case <-ctx.Done():
			return shutdown(httpServer)
		case ev, ok := <-watcher.Events:
			if !ok {
				return shutdown(httpServer)
			}
			s.handleEvent(watcher, ev, trigger)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return shutdown(httpServer)
			}
			slog.Warn("Watcher error", "error", werr)
		}
	}
}

// sourceDir resolves the directory holding the index document. All source
// files are expected to live under it.
func (s *Server) sourceDir() (string, error) {
	dir, err := filepath.Abs(filepath.Dir(s.cfg.Index))
	if err != nil {
		return "", sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to resolve source directory").
			WithContext("index", s.cfg.Index).
			Build()
	}
	if st, statErr := os.Stat(dir); statErr != nil || !st.IsDir() {
		return "", sgerrors.New(sgerrors.CategoryFileSystem, "source directory not found").
			WithContext("path", dir).
			Build()
	}
	return dir, nil
}

func (s *Server) listen(ctx context.Context) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(s.reg))
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.Output.Directory)))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return nil, sgerrors.Wrap(err, sgerrors.CategoryConfig, "failed to bind preview port").
			WithContext("port", s.port).
			Build()
	}

	go func() {
		if serveErr := httpServer.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("Preview server stopped", "error", serveErr)
		}
	}()
	slog.Info("Preview server listening", "url", fmt.Sprintf("http://localhost:%d", s.port))
	return httpServer, nil
}

// rebuildLoop serializes rebuild requests. A request arriving while a build
// runs is remembered and executed once afterwards.
func (s *Server) rebuildLoop(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			slog.Info("Change detected, rebuilding site")
			if err := s.gen.Build(); err != nil {
				slog.Warn("Rebuild failed", "error", err)
			}
		}
	}
}

func (s *Server) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if ignoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = watchRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", "path", ev.Name, "op", ev.Op.String())
	trigger()
}

// debounced returns a trigger that waits for a quiet window before sending on
// requests, coalescing bursts of events into a single rebuild.
func debounced(window time.Duration, requests chan<- struct{}) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(window, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}
}

func watchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := w.Add(path); addErr != nil {
				slog.Warn("Failed to watch directory", "dir", path, "error", addErr)
			}
		}
		return nil
	})
}

// ignoreEvent filters out hidden files and editor swap files so that saving
// in an editor does not trigger double rebuilds.
func ignoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") {
		return true
	}
	return base == "Thumbs.db"
}

func shutdown(httpServer *http.Server) error {
	slog.Info("Shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Preview server shutdown error", "error", err)
	}
	return nil
}
