// Package health exposes grpc.health.v1.Health for orchestrators and load balancers.
package health

import (
	"log/slog"
	"net"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported next to the overall ("") status.
const ServiceName = "rosterhub.Chat"

type Server struct {
	log    *slog.Logger
	grpc   *grpc.Server
	health *health.Server
}

// NewServer starts NOT_SERVING until SetServing(true) is called.
func NewServer(log *slog.Logger) *Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(log)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	srv := &Server{log: log, grpc: s, health: hs}
	srv.SetServing(false)
	return srv
}

func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.log.Debug("Health status changed", "status", status.String())
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop flags every service NOT_SERVING, then drains the server.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
