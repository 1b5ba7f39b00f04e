// Package server exposes an analysis over HTTP. Analyses are produced on
// demand by a load function and memoized in an LRU cache until a request
// asks for a refresh.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toyz/injgraph/internal/utils"
	"github.com/toyz/injgraph/pkg/analysis"
)

const shutdownTimeout = 5 * time.Second

// Server serves the analysis of one source
type Server struct {
	engine      *gin.Engine
	cache       *analysis.Cache
	source      string
	load        analysis.LoadFunc
	diagnostics *utils.DiagnosticSystem
}

// New creates a server for source. load is called whenever the cache has no
// analysis for source or a request passes refresh=true.
func New(cache *analysis.Cache, source string, load analysis.LoadFunc, diagnostics *utils.DiagnosticSystem) *Server {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	s := &Server{
		engine:      gin.New(),
		cache:       cache,
		source:      source,
		load:        load,
		diagnostics: diagnostics,
	}
	s.engine.Use(gin.Recovery(), s.logRequests())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/analysis", s.handleAnalysis)
	s.engine.GET("/injectables", s.handleInjectables)
	s.engine.GET("/providers", s.handleProviders)
	s.engine.GET("/graph.dot", s.handleDOT)
	s.engine.GET("/graph.svg", s.handleSVG)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.diagnostics.Info("Serving %s on %s", s.source, addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.diagnostics.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
