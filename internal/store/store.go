package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bakerybot/internal/cache"
	"bakerybot/internal/logger"
	"bakerybot/internal/model"
	"bakerybot/internal/repository"
)

// Document keys.
const (
	KeyInventory = "inventory"
	KeyPending   = "pending_actions"
)

// Store loads and saves the two documents. Reads go through the cache when
// one is configured; writes reach the repository before the cache is
// refreshed, so the cache never runs ahead of durable state.
type Store struct {
	repo       repository.DocumentRepository
	cache      cache.Cache
	ttl        time.Duration
	categories model.Categories
	log        *logger.Logger
}

// Options configures a Store.
type Options struct {
	// Cache is optional.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Categories seed a freshly created Inventory Document.
	Categories model.Categories
	Logger     *logger.Logger
}

// New wraps repo.
func New(repo repository.DocumentRepository, opts Options) *Store {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Store{
		repo:       repo,
		cache:      opts.Cache,
		ttl:        opts.CacheTTL,
		categories: opts.Categories,
		log:        opts.Logger,
	}
}

// LoadInventory returns the Inventory Document, or an empty one seeded with
// the catalog categories on first access.
func (s *Store) LoadInventory(ctx context.Context) (*model.InventoryDocument, error) {
	var doc model.InventoryDocument
	found, err := s.load(ctx, KeyInventory, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return model.NewInventoryDocument(s.categories), nil
	}
	doc.Normalize()
	if len(doc.Categories) == 0 {
		doc.Categories = s.categories
	}
	return &doc, nil
}

// SaveInventory persists doc.
func (s *Store) SaveInventory(ctx context.Context, doc *model.InventoryDocument) error {
	return s.save(ctx, KeyInventory, doc)
}

// LoadPending returns the Pending-Actions Document (empty when absent).
func (s *Store) LoadPending(ctx context.Context) (*model.PendingActions, error) {
	var doc model.PendingActions
	found, err := s.load(ctx, KeyPending, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return model.NewPendingActions(), nil
	}
	doc.Normalize()
	return &doc, nil
}

// SavePending persists doc.
func (s *Store) SavePending(ctx context.Context, doc *model.PendingActions) error {
	return s.save(ctx, KeyPending, doc)
}

// Stats exposes repository statistics.
func (s *Store) Stats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.Stats(ctx)
}

func (s *Store) load(ctx context.Context, key string, into interface{}) (bool, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			if jerr := json.Unmarshal(data, into); jerr == nil {
				return true, nil
			}
			s.log.Warn("dropping undecodable cached document", "key", key)
			_ = s.cache.Delete(ctx, key)
		case !errors.Is(err, cache.ErrCacheMiss):
			s.log.Warn("cache read failed", "key", key, "error", err)
		}
	}

	data, _, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.Warn("cache fill failed", "key", key, "error", err)
		}
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("cache invalidate failed", "key", key, "error", err)
		}
	}

	if err := s.repo.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.Warn("cache refresh failed", "key", key, "error", err)
		}
	}
	return nil
}
