// Package app wires the configured backends into the marketplace services.
// It is shared by the API server and the admin CLI.
package app

import (
	"context"
	"fmt"

	"github.com/redmonkez12/marketplace-api/internal/config"
	"github.com/redmonkez12/marketplace-api/internal/database"
	"github.com/redmonkez12/marketplace-api/internal/imagestore"
	"github.com/redmonkez12/marketplace-api/internal/logging"
	"github.com/redmonkez12/marketplace-api/internal/offer"
	"github.com/redmonkez12/marketplace-api/internal/user"
)

// App holds the repositories, image store and services built from config.
type App struct {
	Config *config.Config
	Logger *logging.Logger

	Users  user.Repository
	Offers offer.Repository
	Images imagestore.Store
	Layout imagestore.Layout

	UserService  *user.Service
	OfferService *offer.Service

	closers []func(context.Context) error
}

// New connects the persistence backend selected by DB_DRIVER, prepares its
// schema and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Layout: imagestore.NewLayout(cfg.Storage.RootFolder),
	}

	if err := a.openRepositories(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	images, err := NewImageStore(ctx, cfg.Storage)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}
	a.Images = images

	a.UserService = user.NewService(a.Users, a.Images, a.Layout, logger)
	a.OfferService = offer.NewService(a.Offers, a.Users, a.Images, a.Layout, logger, cfg.Auth.EnforceOwnership)

	return a, nil
}

func (a *App) openRepositories(ctx context.Context) error {
	cfg := a.Config.Database

	switch cfg.Driver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Disconnect)
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			return err
		}
		a.Users = user.NewMongoRepository(db)
		a.Offers = offer.NewMongoRepository(db)
		a.Logger.Info("connected to mongodb", "database", cfg.MongoDatabase)

	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		if err := database.Migrate(db.DB); err != nil {
			return err
		}
		a.Users = user.NewBunRepository(db)
		a.Offers = offer.NewBunRepository(db)
		a.Logger.Info("connected to postgres", "database", cfg.DBName)

	default:
		a.Logger.Warn("using in-memory storage, data is lost on restart")
		a.Users = user.NewMemoryRepository()
		a.Offers = offer.NewMemoryRepository()
	}

	return nil
}

// NewImageStore returns the store selected by IMAGE_STORE_DRIVER.
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (imagestore.Store, error) {
	if cfg.Driver == config.StorageMemory {
		return imagestore.NewMemoryStore(cfg.PublicURL()), nil
	}
	return imagestore.NewS3Store(ctx, cfg)
}

// Close releases the database connections in reverse opening order.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
