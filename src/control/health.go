package control

import (
	"fmt"
	"net"

	"digit-observer/src/logger"
	"digit-observer/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// -----------------------------------------------------------------------------
// HealthServer exposes the process state on a dedicated gRPC port so external
// supervisors can probe it without going through the HTTP dashboard.
// -----------------------------------------------------------------------------

const serviceName = "digit-observer"

type HealthServer struct {
	Config *models.MConfig
	Logger *logger.Logger

	server *grpc.Server
	health *health.Server
}

// -----------------------------------------------------------------------------

func NewHealthServer(cfg *models.MConfig, log *logger.Logger) *HealthServer {
	return &HealthServer{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Start begins serving on GrpcHost:GrpcPort. Blocks until the listener fails
// or Stop is called; run it on its own goroutine.
func (h *HealthServer) Start() error {
	addr := fmt.Sprintf("%s:%d", h.Config.GrpcHost, h.Config.GrpcPort)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	h.server = grpc.NewServer()
	h.health = health.NewServer()
	h.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(h.server, h.health)

	h.Logger.Info("gRPC health server listening on %s", addr)
	return h.server.Serve(lis)
}

// -----------------------------------------------------------------------------

// SetServing flips the advertised status; used when the feed degrades.
func (h *HealthServer) SetServing(serving bool) {
	if h.health == nil {
		return
	}
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(serviceName, status)
}

// -----------------------------------------------------------------------------

func (h *HealthServer) Stop() {
	if h.health != nil {
		h.health.Shutdown()
	}
	if h.server != nil {
		h.server.GracefulStop()
	}
}
