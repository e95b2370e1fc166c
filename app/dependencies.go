package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/upb/coffee-shop/auth0"
	"github.com/upb/coffee-shop/config"
	"github.com/upb/coffee-shop/middleware"
	"github.com/upb/coffee-shop/repositories"
	"github.com/upb/coffee-shop/repositories/postgres"
	"github.com/upb/coffee-shop/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Drinks    repositories.DrinkRepository
	TxManager repositories.TransactionManager

	// Auth
	KeyResolver    *auth0.KeyResolver
	Verifier       *auth0.Verifier
	AuthMiddleware *middleware.AuthMiddleware

	// Services
	DrinkService *services.DrinkService
}

// NewDependencies opens the database, creates the schema and wires everything else
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := factory.InitSchema(ctx); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	deps := NewDependenciesWithFactory(cfg, factory, logger)
	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewDependenciesWithFactory wires repositories, auth and services on an open database
func NewDependenciesWithFactory(cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) *Dependencies {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	deps.initRepositories()
	deps.initAuth(cfg)
	deps.DrinkService = services.NewDrinkService(deps.Drinks, deps.TxManager, logger)

	return deps
}

func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Drinks = repos.Drinks
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Debug("repositories initialized")
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	d.KeyResolver = auth0.NewKeyResolver(auth0.ResolverConfig{
		Domain:             cfg.Auth0.Domain,
		JWKSURL:            cfg.Auth0.JWKSURL,
		CacheTTL:           cfg.Auth0.JWKSCacheTTL,
		MinRefreshInterval: cfg.Auth0.JWKSMinRefresh,
		HTTPTimeout:        cfg.Auth0.HTTPTimeout,
	}, d.Logger)

	d.Verifier = auth0.NewVerifier(auth0.VerifierConfig{
		Domain:     cfg.Auth0.Domain,
		Audience:   cfg.Auth0.Audience,
		Algorithms: cfg.Auth0.Algorithms,
	}, d.KeyResolver)

	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Verifier, d.Logger)

	d.Logger.Info("auth initialized",
		zap.String("issuer", d.Verifier.Issuer()),
		zap.String("audience", cfg.Auth0.Audience),
		zap.String("jwks_url", d.KeyResolver.JWKSURL()))
}

// InvalidateKeysOn drops the cached signing keys each time sig fires, until ctx is done
func (d *Dependencies) InvalidateKeysOn(ctx context.Context, sig <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			d.KeyResolver.Invalidate()
			d.Logger.Info("signing key cache invalidated",
				zap.String("jwks_url", d.KeyResolver.JWKSURL()))
		}
	}
}

// SQLDB returns the underlying pool, or nil when no database is wired
func (d *Dependencies) SQLDB() *sql.DB {
	if d.DB == nil {
		return nil
	}
	return d.DB.DB
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
