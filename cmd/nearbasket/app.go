package main

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/firestore"

	"nearbasket/internal/adapter/repository"
	"nearbasket/internal/domain/service"
	"nearbasket/internal/infrastructure/cache"
	"nearbasket/internal/infrastructure/device"
	"nearbasket/internal/infrastructure/firebase"
	"nearbasket/internal/infrastructure/preferences"
	"nearbasket/internal/infrastructure/ratelimit"
	"nearbasket/internal/infrastructure/remote"
	"nearbasket/internal/infrastructure/secrets"
	"nearbasket/internal/infrastructure/session"
	"nearbasket/internal/infrastructure/storage"
	"nearbasket/internal/usecase"
	"nearbasket/pkg/config"
	"nearbasket/pkg/logger"
)

// App holds every use case of the client, wired against one cache and one
// backend.
type App struct {
	Auth      *usecase.AuthUseCase
	Stores    *usecase.StoreUseCase
	Products  *usecase.ProductUseCase
	Cart      *usecase.CartUseCase
	Orders    *usecase.OrderUseCase
	Addresses *usecase.AddressUseCase
	Reviews   *usecase.ReviewUseCase
	Location  *usecase.LocationUseCase
	Sync      *usecase.SyncUseCase

	Sessions *session.Manager
	Limiter  *ratelimit.RateLimiter

	closers []io.Closer
}

// Close releases the cache and the remote clients in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Error("close: %v", err)
		}
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	debug := cfg.IsDevelopment()

	db, err := cache.Open(cfg.CachePath, debug)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	app.closers = append(app.closers, db)

	prefs, err := preferences.New(db)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	// Phone auth always goes through the hosted backend, whatever serves the
	// tables.
	rest := remote.NewRestClient(cfg.BackendURL, cfg.BackendAnonKey, cfg.RemoteTimeout)
	sessions := session.NewManager(secrets.NewMemory(), rest)
	rest.SetTokenSource(sessions)
	app.Sessions = sessions

	tables, err := openTables(ctx, cfg, rest, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	gateway := remote.NewGateway(tables)

	objects, err := openStorage(ctx, cfg, sessions)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, objects)

	provider, err := device.ParseFixedLocation(cfg.DeviceLocation)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("DEVICE_LOCATION: %w", err)
	}

	limiter := ratelimit.NewRateLimiter(cfg.OTPCooldown)
	app.Limiter = limiter

	storeRepo := repository.NewStoreRepository(gateway, db)
	productRepo := repository.NewProductRepository(gateway, db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(gateway, db)
	addressRepo := repository.NewAddressRepository(gateway, db)
	reviewRepo := repository.NewReviewRepository(gateway, db)
	authRepo := repository.NewAuthRepository(rest, gateway, db, prefs, sessions, limiter, objects)

	validate := usecase.NewValidator()
	locationService := service.NewLocationService(provider, nil, prefs, cfg.LocationTimeout)

	app.Auth = usecase.NewAuthUseCase(authRepo, validate, cfg.DefaultCountryCode)
	app.Stores = usecase.NewStoreUseCase(storeRepo, validate, cfg.NearbyRadiusKm)
	app.Products = usecase.NewProductUseCase(productRepo)
	app.Cart = usecase.NewCartUseCase(cartRepo, productRepo, authRepo, validate)
	app.Orders = usecase.NewOrderUseCase(orderRepo, cartRepo, storeRepo, authRepo, validate)
	app.Addresses = usecase.NewAddressUseCase(addressRepo, authRepo, prefs, validate)
	app.Reviews = usecase.NewReviewUseCase(reviewRepo, authRepo, validate)
	app.Location = usecase.NewLocationUseCase(locationService)
	app.Sync = usecase.NewSyncUseCase(
		storeRepo,
		productRepo,
		orderRepo,
		addressRepo,
		reviewRepo,
		authRepo,
		prefs,
		limiter,
		cfg.NearbyRadiusKm,
		cfg.RefreshInterval,
	)

	return app, nil
}

func openTables(ctx context.Context, cfg *config.Config, rest *remote.RestClient, app *App) (remote.TableClient, error) {
	switch cfg.RemoteDriver {
	case config.RemoteDriverPostgres:
		db, err := remote.OpenPostgres(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("postgres handle: %w", err)
		}
		app.closers = append(app.closers, sqlDB)
		logger.Info("Serving tables from Postgres")
		return remote.WithTimeout(remote.NewSQLTables(db), cfg.RemoteTimeout), nil

	case config.RemoteDriverFirestore:
		client, err := firebase.NewFirestore(ctx, cfg.FirebaseProject, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, firestoreCloser{client})
		logger.Info("Serving tables from Firestore project %s", cfg.FirebaseProject)
		return remote.WithTimeout(firebase.NewFirestoreTables(client), cfg.RemoteTimeout), nil

	default:
		logger.Info("Serving tables from %s", cfg.BackendURL)
		return rest, nil
	}
}

type objectStorage interface {
	service.ObjectStorage
	io.Closer
}

func openStorage(ctx context.Context, cfg *config.Config, tokens remote.TokenSource) (objectStorage, error) {
	if cfg.StorageDriver == config.StorageDriverGCS {
		client, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("open cloud storage: %w", err)
		}
		return client, nil
	}
	return storage.NewRestStorage(cfg.BackendURL, cfg.BackendAnonKey, cfg.StorageBucket, tokens, cfg.RemoteTimeout), nil
}

type firestoreCloser struct {
	client *firestore.Client
}

func (c firestoreCloser) Close() error {
	return c.client.Close()
}
