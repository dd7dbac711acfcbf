package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockbook/internal/cache"
	"stockbook/internal/config"
	"stockbook/internal/httpapi"
	"stockbook/internal/report"
	"stockbook/internal/service"
	"stockbook/internal/store"
	"stockbook/internal/store/memory"
	pgstore "stockbook/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var ledger store.Ledger
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		ledger = pg
		closers = append(closers, pg.Close)
		log.Println("ledger: postgres")
	} else {
		ledger = memory.NewSeeded()
		log.Println("ledger: in-memory")
	}

	dashCache := cache.DashboardCache(cache.NoopDashboardCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisDashboardCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			dashCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	refreshInterval := time.Duration(cfg.RefreshIntervalSeconds) * time.Second
	engine := report.NewEngine(ledger, dashCache, refreshInterval, cfg.TrendWindowDays, cfg.TopNProducts)
	svc := service.New(ledger, dashCache)
	api := httpapi.New(svc, engine, cfg.AllowedOrigin)

	refresherCtx, stopRefresher := context.WithCancel(context.Background())
	defer stopRefresher()
	go report.NewRefresher(engine, refreshInterval).Run(refresherCtx)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("stockbook listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	stopRefresher()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}
