package main

import (
	"context"
	"net"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/pricelist-tracker/internal/core/async"
	"github.com/joseph-ayodele/pricelist-tracker/internal/export"
	"github.com/joseph-ayodele/pricelist-tracker/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC API and the background page-job workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		proc, jobs, items, err := newProcessor(db)
		if err != nil {
			return err
		}
		extractor, err := newExtractor()
		if err != nil {
			return err
		}

		queue := async.NewProcessorQueue(proc, logger,
			async.WithWorkers(cfg.Worker.Workers),
			async.WithQueueSize(cfg.Worker.QueueSize),
			async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
		)
		pollCtx, stopPoll := context.WithCancel(ctx)
		defer stopPoll()
		go queue.Poll(pollCtx, jobs, cfg.Worker.PollInterval, cfg.Worker.BatchSize)

		svc := server.NewExtractionServer(extractor, jobs, export.NewService(items, logger), logger)
		grpcServer, health := server.NewGRPCServer(svc, logger)

		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return err
		}
		logger.Info("gRPC serving", "addr", lis.Addr().String(), "workers", cfg.Worker.Workers)

		serveErr := make(chan error, 1)
		go func() { serveErr <- grpcServer.Serve(lis) }()

		select {
		case <-ctx.Done():
		case err = <-serveErr:
			logger.Error("grpc serve failed", "error", err)
		}

		logger.Info("shutting down")
		health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		grpcServer.GracefulStop()
		stopPoll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		queue.Shutdown(shutdownCtx)
		return err
	},
}
