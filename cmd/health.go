package cmd

import (
	"context"
	"fmt"
	"net"
	"time"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// healthCheckInterval is how often readiness is copied into the health service
const healthCheckInterval = 5 * time.Second

// ReadinessSource reports whether the process can serve players
type ReadinessSource interface {
	Ready() bool
}

// HealthServer exposes the standard gRPC health protocol for orchestrators
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	source   ReadinessSource
}

// NewHealthServer listens on port and registers the health service
func NewHealthServer(port int, source ReadinessSource) (*HealthServer, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on health port %d: %w", port, err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	reflection.Register(srv)

	return &HealthServer{
		server:   srv,
		health:   healthServer,
		listener: lis,
		source:   source,
	}, nil
}

// Addr is the address the server listens on
func (h *HealthServer) Addr() net.Addr {
	return h.listener.Addr()
}

// Start serves health checks and keeps the status in step with the source.
// The returned function stops the server.
func (h *HealthServer) Start(ctx context.Context) func() {
	go func() {
		log.WithField("addr", h.listener.Addr().String()).Info("gRPC health server starting")
		if err := h.server.Serve(h.listener); err != nil {
			log.WithError(err).Error("gRPC health server stopped")
		}
	}()

	stopChan := make(chan struct{})
	go func() {
		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()

		h.refresh()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopChan:
				return
			case <-ticker.C:
				h.refresh()
			}
		}
	}()

	return func() {
		close(stopChan)
		h.health.Shutdown()

		stopped := make(chan struct{})
		go func() {
			h.server.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
			log.Info("gRPC health server stopped gracefully")
		case <-time.After(5 * time.Second):
			log.Warn("gRPC health server shutdown timed out, forcing stop")
			h.server.Stop()
		}
	}
}

func (h *HealthServer) refresh() {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if h.source.Ready() {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	entry := log.WithField("fields", fields)
	switch level {
	case grpc_logging.LevelDebug:
		entry.Debug(msg)
	case grpc_logging.LevelWarn:
		entry.Warn(msg)
	case grpc_logging.LevelError:
		entry.Error(msg)
	default:
		entry.Debug(msg)
	}
}
