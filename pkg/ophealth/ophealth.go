// Package ophealth implements the Admin/Health gRPC surface (C13): a
// gRPC server exposing the standard grpc.health.v1.Health service for
// container orchestrators and ops tooling. It is never reachable by lamp
// firmware, which only speaks the HTTP JSON envelope.
//
// This uses the health package's own server implementation
// (google.golang.org/grpc/health + grpc_health_v1) rather than a
// hand-written RPC with custom generated stubs — there is no protoc
// toolchain available to generate a bespoke SchedulerStatus message type,
// so "scheduler is healthy" is expressed the idiomatic grpc-go way: a
// second service name ("scheduler") whose serving status is flipped by
// RecordCycleSuccess/RecordCycleFailure. The dial/credentials pattern this
// mirrors server-side is grounded on the teacher's
// pkg/collector/starlink_enhanced.go, which dials a Starlink dish's gRPC
// API from the client side.
package ophealth

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/shahar42/surf-lamp-engine/pkg/logx"
)

// SchedulerServiceName is the synthetic health-service name used to report
// the scheduler's own liveness distinct from the process's liveness.
const SchedulerServiceName = "scheduler"

// Server wraps a grpc.Server exposing the standard health-check service.
type Server struct {
	grpcServer *grpc.Server
	healthSrv  *health.Server
	logger     *logx.Logger
}

// New builds a Server with both the overall process service ("") and the
// scheduler service reporting NOT_SERVING until the first cycle completes.
func New(logger *logx.Logger) *Server {
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(SchedulerServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	return &Server{grpcServer: grpcServer, healthSrv: healthSrv, logger: logger}
}

// RecordCycleSuccess flips the scheduler service to SERVING after a cycle
// completes without a fatal error.
func (s *Server) RecordCycleSuccess() {
	s.healthSrv.SetServingStatus(SchedulerServiceName, healthpb.HealthCheckResponse_SERVING)
}

// RecordCycleFailure flips the scheduler service to NOT_SERVING, signaling
// orchestration tooling that ingestion is stalled.
func (s *Server) RecordCycleFailure() {
	s.healthSrv.SetServingStatus(SchedulerServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
}

// Serve listens on addr and blocks serving gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("admin grpc server listening", "addr", addr)
	return s.grpcServer.Serve(lis)
}

// Stop gracefully drains in-flight RPCs, marking every service
// NOT_SERVING first so health checks fail fast during shutdown.
func (s *Server) Stop() {
	s.healthSrv.Shutdown()
	s.grpcServer.GracefulStop()
}
