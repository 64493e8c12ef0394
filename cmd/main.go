package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"trendhire/internal/config"
	"trendhire/internal/core/crawl"
	"trendhire/internal/core/discover"
	"trendhire/internal/core/extract"
	"trendhire/internal/core/job"
	"trendhire/internal/core/proxy"
	"trendhire/internal/core/source"
	"trendhire/internal/health"
	"trendhire/internal/logger"
	"trendhire/internal/model"
	rds "trendhire/internal/platform/redis"
	tasks "trendhire/internal/platform/tasks"
	"trendhire/internal/scheduler"
	"trendhire/internal/server"
	"trendhire/internal/store"
	"trendhire/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[trendhire] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	// Redis client
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	// Asynq client and server
	taskClient := tasks.New(redisSvc)
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
	})

	// Proxy transport shared by every source crawler
	transport, err := proxy.New(cfg.Proxy)
	if err != nil {
		log.Fatalf("proxy transport: %v", err)
	}
	defer transport.Close()

	// Source descriptors
	descriptors, err := cfg.LoadSources()
	if err != nil {
		log.Fatalf("load sources: %v", err)
	}
	registry, err := source.NewRegistry(descriptors)
	if err != nil {
		log.Fatalf("source registry: %v", err)
	}

	// Optional listing persistence
	var listingStore crawl.ListingStore
	healthChecks := map[string]health.Checker{"redis": redisSvc}
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pg.Close()
		listingStore = pg
		healthChecks["postgres"] = pg
	} else {
		logr.LogWarn("DATABASE_URL not set, listings are kept in job reports only")
	}

	// Core services
	extractor := extract.New()
	coordinator := crawl.NewCoordinator(transport, extractor)
	jobSvc := job.NewService(redisSvc)
	crawlSvc := crawl.NewService(jobSvc, taskClient, coordinator, registry, listingStore, cfg.TaskMaxRetries)
	discoverSvc := discover.New()

	// Worker mux
	mux := worker.NewMux()
	mux.HandleFunc(tasks.TaskTypeCrawlBatch, crawlSvc.HandleCrawlTask)

	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// Recurring crawls
	var sched *scheduler.Scheduler
	if cfg.ScheduleSpec != "" && cfg.ScheduleQuery != "" {
		names := make([]string, 0)
		for _, d := range registry.All() {
			names = append(names, d.Name)
		}
		sched = scheduler.New(crawlSvc, model.BatchRequest{
			TaskName: "scheduled",
			Query:    cfg.ScheduleQuery,
			Location: cfg.ScheduleLocation,
			MaxPages: cfg.SchedulePages,
			Sources:  names,
		}, cfg.ScheduleSpec)
		if err := sched.Start(context.Background()); err != nil {
			log.Fatalf("scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "TrendHire Crawl Engine",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	deps := server.Dependencies{
		Job:      jobSvc,
		Crawl:    crawlSvc,
		Discover: discoverSvc,
		Sources:  registry,
		Health:   healthChecks,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	go func() {
		time.Sleep(2 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("shutting down...")
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
