package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
)

const requestIDHeader = "x-request-id"

// NewGRPCServer builds a gRPC server with the extraction service, the standard
// health service and reflection registered.
func NewGRPCServer(svc ExtractionServiceServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(LoggingInterceptor(logger)))
	grpcServer := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	RegisterExtractionServiceServer(grpcServer, svc)
	return grpcServer, hs
}

// LoggingInterceptor tags each call with a request id (taken from the
// x-request-id header when present) and logs its outcome.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestIDHeader); len(vals) > 0 {
				requestID = vals[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, requestID)
		log := common.LoggerFromContext(ctx, logger)
		ctx = common.WithLogger(ctx, logger)

		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("rpc failed",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err)
			return resp, err
		}
		log.Info("rpc ok", "method", info.FullMethod, "duration_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}
