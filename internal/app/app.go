package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"bakerybot/internal/cache"
	"bakerybot/internal/catalog"
	"bakerybot/internal/config"
	"bakerybot/internal/logger"
	"bakerybot/internal/oracle"
	"bakerybot/internal/repository"
	"bakerybot/internal/service"
	"bakerybot/internal/store"
)

// App holds the wired services shared by the API server and bakeryctl.
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Location  *time.Location
	Catalog   *catalog.Catalog
	Repo      repository.DocumentRepository
	Cache     cache.Cache
	Store     *store.Store
	Engine    *service.Engine
	Reporter  *service.Reporter
	Assistant *service.Assistant
	Oracle    oracle.Oracle

	closers []io.Closer
}

// New opens the configured backends and wires the services on top of them.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: log, Location: loc, Catalog: catalog.Default()}

	repo, err := OpenRepository(cfg.Store, log)
	if err != nil {
		return nil, err
	}
	a.Repo = repo
	a.closers = append(a.closers, repo)

	c, err := OpenCache(cfg.Cache, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c != nil {
		a.Cache = c
		a.closers = append(a.closers, c)
	}

	a.Store = store.New(repo, store.Options{
		Cache:      a.Cache,
		CacheTTL:   cfg.Cache.TTL,
		Categories: a.Catalog.Categories(),
		Logger:     log,
	})
	a.Engine = service.NewEngine(a.Store, a.Catalog, service.Options{
		Logger:       log,
		Location:     loc,
		HistoryLimit: cfg.App.HistoryLimit,
		TonightHour:  cfg.Reminder.TonightHour,
	})
	a.Reporter = service.NewReporter(a.Store, a.Catalog, loc)
	a.Oracle = OpenOracle(ctx, cfg.Oracle, a.Catalog, log)
	a.Assistant = service.NewAssistant(a.Oracle, a.Engine, a.Reporter, service.NewDailyCounter(loc), log)
	return a, nil
}

// OpenRepository selects the durable backend by STORE_TYPE.
func OpenRepository(cfg config.StoreConfig, log *logger.Logger) (repository.DocumentRepository, error) {
	switch cfg.Type {
	case "postgres", "postgresql":
		repo, err := repository.NewPostgresDocumentRepository(cfg.DSN(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return repo, nil
	case "mysql":
		repo, err := repository.NewMySQLDocumentRepository(cfg.DSN(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MySQL: %w", err)
		}
		return repo, nil
	case "memory":
		log.Warn("using in-memory document repository; nothing survives a restart")
		return repository.NewMemoryDocumentRepository(), nil
	case "sqlite", "":
		repo, err := repository.NewSQLiteDocumentRepository(cfg.Path, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown STORE_TYPE %q", cfg.Type)
}

// OpenCache builds the document cache. A nil cache with a nil error means
// caching is off. An unreachable Redis falls back to the memory cache.
func OpenCache(cfg config.CacheConfig, log *logger.Logger) (cache.Cache, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "memory":
		return cache.NewMemoryCache(time.Minute), nil
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.RedisAddress(),
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			log.Warn("Redis cache unavailable, using memory cache", "addr", cfg.RedisAddress(), "error", err)
			return cache.NewMemoryCache(time.Minute), nil
		}
		log.Info("Redis document cache initialized", "addr", cfg.RedisAddress())
		return rc, nil
	}
	return nil, fmt.Errorf("unknown CACHE_TYPE %q", cfg.Type)
}

// OpenOracle returns the configured oracle, or oracle.Disabled when none can
// be created. A disabled oracle keeps the bot silent rather than failing
// startup.
func OpenOracle(ctx context.Context, cfg config.OracleConfig, cat *catalog.Catalog, log *logger.Logger) oracle.Oracle {
	if cfg.Provider != "gemini" {
		log.Warn("oracle disabled", "provider", cfg.Provider)
		return oracle.Disabled{}
	}
	o, err := oracle.NewGeminiOracle(ctx, cfg.APIKey, cfg.Model, cfg.Timeout, cat)
	if err != nil {
		log.Warn("oracle disabled", "error", err)
		return oracle.Disabled{}
	}
	log.Info("oracle initialized", "name", o.Name())
	return o
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
