package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"larder/internal/api"
	"larder/internal/config"
	"larder/internal/consumption"
	"larder/internal/dietary"
	"larder/internal/freshness"
	"larder/internal/monitoring"
	"larder/internal/planner"
	"larder/internal/shopping"
	"larder/internal/store"
	"larder/internal/tools"
)

var (
	port        = flag.Int("port", 0, "API server port, overrides the config file")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port, overrides the config file")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort > 0 {
		cfg.Metrics.Port = *metricsPort
	}

	metrics := monitoring.NewMetricsCollector()
	runtime := monitoring.NewMonitor()

	recordStore, closeStore, err := initializeStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize record store: %v", err)
	}
	defer closeStore()
	instrumented := store.NewInstrumentedStore(recordStore, metrics)

	monitor := freshness.NewMonitor(instrumented)
	tracker := consumption.NewTracker(instrumented)
	generator := shopping.NewGenerator(instrumented, tracker, monitor)
	plan := planner.NewPlanner(instrumented)
	diet := dietary.NewManager(instrumented)

	if cfg.Freshness.RefreshOnStartup {
		stamped, err := monitor.RefreshFromPurchases()
		if err != nil {
			log.Printf("Expiry refresh from purchases failed: %v", err)
		} else if stamped > 0 {
			log.Printf("Stamped expiry dates on %d recently purchased items", stamped)
		}
	}

	registry := tools.NewRegistry(tools.Services{
		Monitor:   monitor,
		Tracker:   tracker,
		Generator: generator,
		Planner:   plan,
		Dietary:   diet,
	})

	larderAPI := api.NewLarderAPI(instrumented, monitor, tracker, generator, plan, diet, registry, runtime, metrics)

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, metrics)
	}
	if cfg.Freshness.SweepMinutes > 0 {
		go runExpirySweep(ctx, monitor, larderAPI.Hub, metrics, time.Duration(cfg.Freshness.SweepMinutes)*time.Minute)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: larderAPI.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}

		cancel()
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

// initializeStore builds the configured record store backend. The
// returned close function is a no-op for the JSON backend.
func initializeStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		s, err := store.NewSQLStore(cfg.Storage.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Printf("Closing record store: %v", err)
			}
		}, nil
	default:
		s, err := store.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		if err := s.InitCollections(); err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

func startMetricsServer(port int, metrics *monitoring.MetricsCollector) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(metrics.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}

// runExpirySweep periodically checks for items close to expiry,
// updates the gauge, and pushes an alert to WebSocket subscribers.
func runExpirySweep(ctx context.Context, monitor *freshness.Monitor, hub *api.EventHub, metrics *monitoring.MetricsCollector, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep := func() {
		expiring, err := monitor.ExpiringWithin(3)
		if err != nil {
			log.Printf("Expiry sweep failed: %v", err)
			return
		}
		metrics.SetExpiringItems(len(expiring))
		if len(expiring) > 0 {
			hub.Broadcast("expiring_items", expiring)
		}
	}

	sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
