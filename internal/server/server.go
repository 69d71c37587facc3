// Package server exposes the filter agent over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"filter-agent/internal/common/config"
	"filter-agent/internal/common/logger"
	"filter-agent/internal/common/observability"
	"filter-agent/internal/models"
)

// Processor runs the filter pipeline. Satisfied by *agent.Agent.
type Processor interface {
	Process(ctx context.Context, req *models.FilterRequest) interface{}
	SelectGroup(ctx context.Context, req *models.SelectGroupRequest) interface{}
}

// ConversationAdmin exposes the conversation maintenance operations.
type ConversationAdmin interface {
	Clear(ctx context.Context, conversationID string) error
	Stats(ctx context.Context) (map[string]int64, error)
}

type Server struct {
	processor     Processor
	conversations ConversationAdmin
	obs           *observability.Observability
	cfg           config.ServerConfig
	logger        logger.Logger
}

func New(
	processor Processor,
	conversations ConversationAdmin,
	obs *observability.Observability,
	cfg config.ServerConfig,
	log logger.Logger,
) *Server {
	return &Server{
		processor:     processor,
		conversations: conversations,
		obs:           obs,
		cfg:           cfg,
		logger:        log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
}

// Router builds the chi mux with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
	)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/filters/natural-language", s.handleFilterRequest)
	r.Post("/api/filters/select-group", s.handleSelectGroup)

	r.Get("/api/conversations/stats", s.handleConversationStats)
	r.Delete("/api/conversations/{conversationID}", s.handleClearConversation)

	return r
}

// Serve starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := s.cfg.Addr()
	s.logger.Info("starting http server", map[string]interface{}{"addr": addr})

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(s.cfg.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		s.logger.Info("shutting down http server", nil)
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
