package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Appa019/Coleta-dados-faturas/internal/async"
	"github.com/Appa019/Coleta-dados-faturas/internal/cli"
	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/ingest"
	"github.com/Appa019/Coleta-dados-faturas/internal/pipeline"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	// Daemon logs are plain text without time/level.
	logger := common.NewLogger(os.Stdout, common.LogConfig{Level: cfg.Log.Level, Format: "text"})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Daemon.WatchDir == "" {
		logger.Error("missing WATCH_DIR environment variable")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runs, closeStore, err := cli.OpenRunStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open run store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := pipeline.NewDefaultService(cli.NewProcessor(cfg, logger), runs, pipeline.Options{
		OutputDir: cfg.Output.Dir,
		WriteJSON: cfg.Output.WriteJSON,
		Marker:    cfg.Extraction.ArchiveMarker,
	}, logger)

	// One worker keeps documents strictly sequential.
	queue := async.NewProcessorQueue(svc.JobHandler(), logger,
		async.WithWorkers(1),
		async.WithQueueSize(256),
		async.WithProcessTimeout(10*time.Minute),
	)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Daemon.WatchDir},
		InitialScan: true,
		Debounce:    cfg.Daemon.Debounce,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "dir", cfg.Daemon.WatchDir, "error", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", cfg.Daemon.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Daemon.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("faturasd listening", "addr", cfg.Daemon.GRPCAddr, "watch_dir", cfg.Daemon.WatchDir)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		for {
			select {
			case path, ok := <-events:
				if !ok {
					return nil
				}
				job := async.Job{Path: path, SubmittedAt: time.Now(), TraceID: uuid.NewString()}
				if err := queue.Enqueue(gctx, job); err != nil {
					if errors.Is(err, async.ErrQueueClosed) || gctx.Err() != nil {
						return nil
					}
					logger.Error("enqueue failed", "path", path, "error", err)
				}
			case err, ok := <-watchErrs:
				if !ok {
					watchErrs = nil
					continue
				}
				logger.Error("watcher error", "error", err)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		drainCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		queue.Shutdown(drainCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("faturasd stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("faturasd stopped")
}
