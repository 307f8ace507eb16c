// Package server implements the HTTP listeners: trigger, health and metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker interface for checking component health.
type HealthChecker interface {
	Liveness() bool
	Readiness(ctx context.Context) bool
	GetStatus() map[string]string
}

// Server bundles the trigger, health and metrics HTTP servers.
type Server struct {
	triggerServer *http.Server
	healthServer  *http.Server
	metricsServer *http.Server
	logger        *slog.Logger
}

// NewServer creates the three HTTP servers. The trigger handler receives the
// storage notifications; health and metrics live on their own ports. service
// is the configured application name echoed in probe responses.
func NewServer(
	service string,
	triggerPort int,
	healthPort int,
	metricsPort int,
	trigger http.Handler,
	healthChecker HealthChecker,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *Server {
	triggerMux := http.NewServeMux()
	triggerMux.Handle("/", trigger)

	// ETL runs are bounded by the platform, not by this component, so the
	// trigger listener gets a generous write timeout.
	triggerServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", triggerPort),
		Handler:      triggerMux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
	}

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health/live", LivenessHandler(service, healthChecker, logger))
	healthMux.HandleFunc("/health/ready", ReadinessHandler(service, healthChecker, logger))

	healthServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", healthPort),
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	metricsServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", metricsPort),
		Handler:      metricsMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return &Server{
		triggerServer: triggerServer,
		healthServer:  healthServer,
		metricsServer: metricsServer,
		logger:        logger,
	}
}

// Start starts all HTTP servers.
func (s *Server) Start() error {
	go func() {
		s.logger.Info("starting trigger server", "addr", s.triggerServer.Addr)
		if err := s.triggerServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("trigger server failed", "error", err)
		}
	}()

	go func() {
		s.logger.Info("starting health server", "addr", s.healthServer.Addr)
		if err := s.healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("health server failed", "error", err)
		}
	}()

	go func() {
		s.logger.Info("starting metrics server", "addr", s.metricsServer.Addr)
		if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server failed", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down all servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP servers")

	errChan := make(chan error, 3)

	go func() {
		errChan <- s.triggerServer.Shutdown(ctx)
	}()

	go func() {
		errChan <- s.healthServer.Shutdown(ctx)
	}()

	go func() {
		errChan <- s.metricsServer.Shutdown(ctx)
	}()

	var lastErr error
	for i := 0; i < 3; i++ {
		if err := <-errChan; err != nil {
			s.logger.Error("error shutting down server", "error", err)
			lastErr = err
		}
	}

	return lastErr
}
