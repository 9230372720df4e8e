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

	"slotscout/internal/config"
	"slotscout/internal/core/dispatch"
	"slotscout/internal/core/scrape"
	"slotscout/internal/core/slot"
	"slotscout/internal/core/task"
	"slotscout/internal/logger"
	"slotscout/internal/platform/browser"
	"slotscout/internal/platform/postgres"
	rds "slotscout/internal/platform/redis"
	tasks "slotscout/internal/platform/tasks"
	"slotscout/internal/server"
	"slotscout/internal/telemetry"
	"slotscout/internal/venue"
	"slotscout/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[slotscout] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")
	ctx := context.Background()

	// Redis client
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	// Postgres and schema
	pgSvc, err := postgres.New(ctx, postgres.Options{DSN: cfg.PostgresDSN})
	if err != nil {
		log.Fatal(err)
	}
	defer pgSvc.Close()
	if err := postgres.Migrate(ctx, pgSvc.Pool()); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Browser pool
	pool := browser.NewPool(cfg.BrowserPoolSize, browser.NewFactory(browser.LaunchOptions{
		ExecutablePath: cfg.BrowserPath,
	}))

	// Asynq client and server
	taskClient := tasks.New(redisSvc)
	defer taskClient.Close()
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{tasks.QueueScraping: 5, tasks.QueueDefault: 1},
	})

	// Core services
	registry := venue.NewRegistry()
	slotSvc := slot.NewService(pgSvc)
	trackerSvc := task.NewService(pgSvc)
	dispatchSvc := dispatch.NewService(registry, trackerSvc, taskClient, cfg)
	scrapeSvc := scrape.NewService(registry, slotSvc, trackerSvc, pool, cfg)

	// Worker mux
	mux := worker.NewMux()
	mux.HandleFunc(tasks.TaskTypeVenueScrape, scrapeSvc.HandleVenueTask)
	mux.HandleFunc(tasks.TaskTypeRefreshCycle, dispatchSvc.HandleRefreshCycleTask)

	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// Periodic refresh cycle
	var scheduler *asynq.Scheduler
	if cfg.RefreshEnabled {
		scheduler = asynq.NewScheduler(redisSvc.AsynqRedisOpt(), nil)
		if _, err := scheduler.Register(cfg.RefreshCron,
			asynq.NewTask(tasks.TaskTypeRefreshCycle, nil),
			asynq.Queue(tasks.QueueDefault)); err != nil {
			log.Fatalf("register refresh cycle: %v", err)
		}
		go func() {
			if err := scheduler.Run(); err != nil {
				log.Printf("[scheduler] stopped: %v\n", err)
			}
		}()
	}

	// Metrics on a separate listener
	telemetry.Serve(cfg.MetricsAddr)

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "Slotscout",
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
		Registry: registry,
		Slots:    slotSvc,
		Tasks:    trackerSvc,
		Dispatch: dispatchSvc,
		Redis:    redisSvc,
		Postgres: pgSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	go func() {
		time.Sleep(5 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		if scheduler != nil {
			scheduler.Shutdown()
		}
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
