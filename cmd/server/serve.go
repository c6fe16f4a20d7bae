package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"rbindex/api/grpcserver"
	"rbindex/infra/kafka"
	"rbindex/infra/outbox"
	"rbindex/jobs/broadcaster"
	"rbindex/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
)

func runServe(cctx *cli.Context) error {
	logger := configLogger(cctx)

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- Outbox ----------------

	var ob *outbox.Outbox
	if dir := cctx.String("outbox-dir"); dir != "" {
		var err error
		ob, err = outbox.Open(outbox.Config{Dir: dir})
		if err != nil {
			return err
		}
		defer ob.Close()
		logger.Info("change feed enabled", "outbox", dir)
	}

	// ---------------- Service ----------------

	cfg := service.Config{
		Low:    cctx.Int64("low"),
		High:   cctx.Int64("high"),
		Source: cctx.String("source"),
		Log:    logger,
	}
	if ob != nil {
		cfg.Outbox = ob
	}
	svc, err := service.NewIndexService(cfg)
	if err != nil {
		return err
	}

	// ---------------- Background Jobs ----------------

	brokers := cctx.StringSlice("kafka-brokers")
	if ob != nil && len(brokers) > 0 {
		pub, err := newPublisher(cctx.String("kafka-client"), brokers, cctx.String("kafka-topic"))
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		bc := broadcaster.New(ob, pub, broadcaster.Config{
			Interval:    cctx.Duration("broadcast-interval"),
			MaxRetries:  uint32(cctx.Uint("broadcast-max-retries")),
			SentTimeout: cctx.Duration("broadcast-sent-timeout"),
		}, logger)

		// Deferred in reverse: Run returns before the publisher and then
		// the outbox are closed.
		defer bc.Close()
		stopBroadcaster := startJob(ctx, bc.Run)
		defer stopBroadcaster()
	} else if ob != nil {
		logger.Warn("no kafka brokers configured, change events accumulate in the outbox")
	}

	// ---------------- Metrics ----------------

	if addr := cctx.String("metrics-listen"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", "addr", addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "err", err)
			}
		}()
		defer metricsSrv.Close()
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cctx.String("listen"))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor(logger)))
	grpcserver.RegisterIndexServer(grpcSrv, grpcserver.NewServer(svc))

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		grpcSrv.GracefulStop()
	}()

	logger.Info("rbindex serving", "addr", lis.Addr().String())
	if err := grpcSrv.Serve(lis); err != nil {
		return fmt.Errorf("grpc server exited: %w", err)
	}
	return nil
}

func newPublisher(client string, brokers []string, topic string) (broadcaster.Publisher, error) {
	switch client {
	case "kafka-go", "":
		return kafka.NewProducer(brokers, topic), nil
	case "sarama":
		p, err := kafka.NewSyncProducer(brokers, topic)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown kafka client %q", client)
	}
}

// startJob runs fn in its own goroutine. The returned stop cancels fn's
// context and blocks until fn has returned.
func startJob(ctx context.Context, fn func(context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn(ctx)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
