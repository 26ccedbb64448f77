package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/insighthub/insight-platform/internal/analytics"
	"github.com/insighthub/insight-platform/internal/config"
	"github.com/insighthub/insight-platform/internal/db"
	"github.com/insighthub/insight-platform/internal/httpapi"
	"github.com/insighthub/insight-platform/internal/hub"
)

// feedBus adapts the websocket hub to the pipeline's Broadcaster.
type feedBus struct {
	hub *hub.Hub
}

func (b feedBus) Broadcast(inq *analytics.Inquiry) {
	b.hub.BroadcastJSON("inquiry_updated", inq)
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := hub.New(log.Named("hub"), cfg.CORSAllowOrigins)
	go feed.Run(ctx)

	repo := analytics.NewRepo(gdb)
	classifier := analytics.NewHeuristicClassifier(cfg.ClassifierSeed)
	pipeline := analytics.NewPipeline(
		repo,
		feedBus{hub: feed},
		classifier,
		log.Named("pipeline"),
		cfg.PipelineDelayScale,
		cfg.MaxProcessDuration,
	)
	pipeline.Start(ctx, cfg.WorkerConcurrency)

	svc := analytics.NewService(repo, pipeline, cfg.StreamCharDelay)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(cfg, svc, feed, log.Named("http")),
	}

	go func() {
		log.Info("server started",
			zap.String("addr", cfg.HTTPAddr),
			zap.Int("workers", cfg.WorkerConcurrency),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	pipeline.Wait()
}
