// Package devserver rebuilds on change and serves the build directory while
// developing.
package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/webparts/internal/assets"
	"github.com/wolfeidau/webparts/internal/fragment"
	httpmiddleware "github.com/wolfeidau/webparts/internal/http"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 8080

	// ReloadPath streams an event after every successful rebuild
	ReloadPath = "/__webparts/reload"
)

type Server struct {
	addr     string
	dir      string
	fallback bool
	pipeline *assets.Pipeline
	reload   *broadcaster
}

// New creates a dev server for the merged configuration. The page reloads
// itself after rebuilds when the configuration enables hot reloading with
// the inline client.
func New(config assets.Config, build fragment.Config) (*Server, error) {
	s := &Server{
		addr:     Addr(build.DevServer),
		dir:      build.Output.Path,
		fallback: build.DevServer.HistoryAPIFallback,
		reload:   newBroadcaster(),
	}

	if build.DevServer.Hot && build.DevServer.Inline {
		config.LiveReload = ReloadPath
	}
	config.OnRebuild = s.reload.Notify

	pipeline, err := assets.New(config, build)
	if err != nil {
		return nil, err
	}
	s.pipeline = pipeline

	return s, nil
}

// Addr returns the listen address, falling back to localhost:8080 for unset
// values
func Addr(ds fragment.ServerOptions) string {
	host := ds.Host
	if host == "" {
		host = DefaultHost
	}
	port := ds.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Run builds in watch mode and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	if err := s.pipeline.Prepare(); err != nil {
		return err
	}

	buildCtx, err := s.pipeline.Context()
	if err != nil {
		return err
	}
	defer buildCtx.Dispose()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return err
	}

	srv := configureHTTPServer(s.addr, s.Handler())

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Str("dir", s.dir).Msg("Starting dev server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info().Msg("Stopping dev server")
	return srv.Shutdown(shutdownCtx)
}

// Handler serves the reload stream, the build directory and the index page
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(ReloadPath, s.reload)
	mux.Handle("/", gzhttp.GzipHandler(s.files()))

	return httpmiddleware.AccessLog()(cors.AllowAll().Handler(mux))
}

func (s *Server) files() http.Handler {
	fileServer := http.FileServer(http.Dir(s.dir))
	index := s.pipeline.Handler()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)

		if name == "/" || name == "/"+assets.IndexFile {
			index.ServeHTTP(w, r)
			return
		}

		if info, err := os.Stat(filepath.Join(s.dir, filepath.FromSlash(name))); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		// history API routes have no extension and render the index page
		if s.fallback && path.Ext(name) == "" {
			index.ServeHTTP(w, r)
			return
		}

		http.NotFound(w, r)
	})
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
