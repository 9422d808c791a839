package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"nearbasket/internal/infrastructure/realtime"
	"nearbasket/internal/usecase"
	"nearbasket/pkg/config"
	"nearbasket/pkg/logger"
)

const (
	realtimeHeartbeat = 30 * time.Second
	realtimeRetry     = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetDebug(cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start nearbasket: %v", err)
	}
	defer app.Close()

	app.Limiter.StartCleanupRoutine(ctx)

	logStartup(ctx, app, cfg)

	app.Sync.StartRefreshJob(ctx)

	if cfg.RealtimeEnabled {
		client, err := realtime.NewClient(cfg.BackendURL, cfg.BackendAnonKey, app.Sessions, realtimeHeartbeat)
		if err != nil {
			log.Fatalf("Failed to create realtime client: %v", err)
		}
		go listen(ctx, client, app.Sync)
	}

	logger.Info("nearbasket running (remote: %s, cache: %s)", cfg.RemoteDriver, cfg.CachePath)
	<-ctx.Done()
	logger.Info("Shutting down")
}

// logStartup reports where the client is shopping and who is signed in.
func logStartup(ctx context.Context, app *App, cfg *config.Config) {
	place := app.Location.CurrentPlace(ctx)
	if place.IsError() {
		logger.Warn("No location yet: %s", place.Message())
	} else {
		p := place.Data()
		logger.Info("Shopping near %s (%.4f, %.4f)", p.Address.Line, p.Coordinate.Latitude, p.Coordinate.Longitude)

		stores := app.Stores.NearbyStores(ctx, usecase.NearbyInput{
			Latitude:  p.Coordinate.Latitude,
			Longitude: p.Coordinate.Longitude,
			RadiusKm:  cfg.NearbyRadiusKm,
		})
		if stores.IsSuccess() {
			logger.Info("%d stores within %.1f km", len(stores.Data()), cfg.NearbyRadiusKm)
		} else {
			logger.Warn("Nearby stores unavailable: %s", stores.Message())
		}
	}

	if !app.Auth.IsSignedIn(ctx) {
		logger.Info("No customer signed in")
		return
	}
	if customer := app.Auth.CurrentCustomer(ctx); customer.IsSuccess() {
		logger.Info("Signed in as customer %s", customer.Data().ID)
	}
}

// listen feeds realtime changes to the sync use case. The client does not
// reconnect on its own, so a dropped feed is joined again after a pause.
func listen(ctx context.Context, client *realtime.Client, sync *usecase.SyncUseCase) {
	for {
		err := client.Listen(ctx, sync.Tables(), func(c realtime.Change) {
			if err := sync.HandleChange(ctx, c); err != nil {
				logger.LogSyncError(c.Table, "realtime", err)
			}
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("live updates stopped: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(realtimeRetry):
		}
	}
}
