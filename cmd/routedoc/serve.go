package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/vitalvas/routedoc/internal/httplog"
	"github.com/vitalvas/routedoc/internal/metrics"
	"github.com/vitalvas/routedoc/muxhandlers"
	"github.com/vitalvas/routedoc/openapi"
)

const (
	metricsPath     = "/metrics"
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the example application with its documentation",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd, map[string]string{
				"listen":    "listen",
				"docs.path": "docs-path",
				"docs.ui":   "docs-ui",
			})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := metrics.New()
			handler, doc, err := a.serverHandler(m)
			if err != nil {
				return err
			}

			if export {
				if err := openapi.Export(doc, a.cfg.Output); err != nil {
					return err
				}
				a.logger.Info().Str("path", a.cfg.Output).Msg("document exported")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx, handler)
		},
	}

	cmd.Flags().String("listen", ":8080", "address to listen on")
	cmd.Flags().String("docs-path", "/docs", "path of the documentation endpoints")
	cmd.Flags().String("docs-ui", "swagger", "documentation UI (swagger, rapidoc, redoc)")
	cmd.Flags().BoolVar(&export, "export", false, "write the document to the configured output on start")

	return cmd
}

// serverHandler wires the example application, the documentation
// endpoints and the metrics endpoint behind the shared middleware. The
// document is built once up front so configuration errors fail the start.
func (a *app) serverHandler(m *metrics.Metrics) (http.Handler, *openapi.Document, error) {
	r, spec, err := a.newApplication()
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	doc, err := spec.Build(r)
	m.ObserveBuild(doc, time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("build document: %w", err)
	}

	ui, err := a.cfg.Docs.DocsUI()
	if err != nil {
		return nil, nil, err
	}
	spec.Handle(r, a.cfg.Docs.Path, &openapi.HandleConfig{UI: ui})
	r.Get(metricsPath, m.Handler().ServeHTTP)

	cache, err := muxhandlers.CacheControlMiddleware(muxhandlers.DocsCacheControl(a.cfg.Docs.Path, a.cfg.Docs.MaxAge))
	if err != nil {
		return nil, nil, err
	}
	r.Use(m.Middleware, cache)
	r.NotFoundHandler = m.Unmatched(http.NotFoundHandler())
	r.MethodNotAllowedHandler = m.Unmatched(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}))

	var handler http.Handler = r
	if len(a.cfg.Docs.CORSOrigins) > 0 {
		cors, err := muxhandlers.CORSMiddleware(muxhandlers.CORSConfig{
			AllowedOrigins: a.cfg.Docs.CORSOrigins,
			PathPrefix:     a.cfg.Docs.Path,
			MaxAge:         600,
		})
		if err != nil {
			return nil, nil, err
		}
		handler = cors(handler)
	}

	handler = httplog.Middleware(a.logger, &httplog.Options{
		RecoverPanics: true,
		Skip:          func(r *http.Request) bool { return r.URL.Path == metricsPath },
		Headers:       []string{"User-Agent"},
	})(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)

	a.logger.Info().
		Int("paths", len(doc.Paths)).
		Int("operations", doc.OperationCount()).
		Msg("document built")

	return handler, doc, nil
}

func (a *app) serve(ctx context.Context, handler http.Handler) error {
	ln, err := net.Listen("tcp", a.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Listen, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ln)
	}()

	a.logger.Info().
		Str("addr", ln.Addr().String()).
		Str("docs", a.cfg.Docs.Path).
		Msg("server started")

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		a.logger.Info().Msg("server stopped")
		return nil
	}
}
