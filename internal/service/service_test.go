package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bakerybot/internal/catalog"
	"bakerybot/internal/model"
	"bakerybot/internal/repository"
	"bakerybot/internal/store"
)

// fixture wires the services over an in-memory repository with a movable clock.
type fixture struct {
	repo     *repository.MemoryDocumentRepository
	store    *store.Store
	catalog  *catalog.Catalog
	engine   *Engine
	reporter *Reporter
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    repository.NewMemoryDocumentRepository(),
		catalog: catalog.Default(),
		now:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.store = store.New(f.repo, store.Options{Categories: f.catalog.Categories()})
	f.engine = NewEngine(f.store, f.catalog, Options{Location: time.UTC})
	f.engine.Now = func() time.Time { return f.now }
	f.reporter = NewReporter(f.store, f.catalog, time.UTC)
	f.reporter.Now = func() time.Time { return f.now }
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) apply(t *testing.T, requester string, updates ...model.ItemUpdate) *ReconcileResult {
	t.Helper()
	res, err := f.engine.ApplyIntent(context.Background(), &model.Intent{Kind: model.IntentUpdate, Updates: updates}, requester)
	require.NoError(t, err)
	return res
}

func (f *fixture) inventory(t *testing.T) *model.InventoryDocument {
	t.Helper()
	doc, err := f.store.LoadInventory(context.Background())
	require.NoError(t, err)
	return doc
}

func (f *fixture) pending(t *testing.T) *model.PendingActions {
	t.Helper()
	p, err := f.store.LoadPending(context.Background())
	require.NoError(t, err)
	return p
}

func upd(item string, status model.Status) model.ItemUpdate {
	return model.ItemUpdate{Item: item, Status: status}
}

func ptr[T any](v T) *T { return &v }
