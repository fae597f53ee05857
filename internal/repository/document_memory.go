package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryDocumentRepository keeps documents in process memory. It backs
// STORE_TYPE=memory and tests; SetFailPuts and SetFailPutsFor simulate a
// broken backend.
type MemoryDocumentRepository struct {
	mu       sync.RWMutex
	docs     map[string]memoryDocument
	failPuts error
	failKeys map[string]error
}

type memoryDocument struct {
	body      []byte
	updatedAt time.Time
}

// NewMemoryDocumentRepository returns an empty repository.
func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{
		docs:     make(map[string]memoryDocument),
		failKeys: make(map[string]error),
	}
}

// Get retrieves a copy of the stored document.
func (r *MemoryDocumentRepository) Get(ctx context.Context, key string) ([]byte, *time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[key]
	if !ok {
		return nil, nil, nil
	}
	body := make([]byte, len(doc.body))
	copy(body, doc.body)
	updatedAt := doc.updatedAt
	return body, &updatedAt, nil
}

// Put stores a copy of body.
func (r *MemoryDocumentRepository) Put(ctx context.Context, key string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failPuts != nil {
		return r.failPuts
	}
	if err := r.failKeys[key]; err != nil {
		return err
	}
	stored := make([]byte, len(body))
	copy(stored, body)
	r.docs[key] = memoryDocument{body: stored, updatedAt: time.Now().UTC()}
	return nil
}

// SetFailPuts makes subsequent Puts return err (nil restores normal writes).
func (r *MemoryDocumentRepository) SetFailPuts(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failPuts = err
}

// SetFailPutsFor makes Puts of key alone return err (nil clears it).
func (r *MemoryDocumentRepository) SetFailPutsFor(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failKeys, key)
		return
	}
	r.failKeys[key] = err
}

// Stats reports the number of stored documents.
func (r *MemoryDocumentRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string]interface{}{"documents": int64(len(r.docs))}, nil
}

// Close is a no-op.
func (r *MemoryDocumentRepository) Close() error {
	return nil
}

var _ DocumentRepository = (*MemoryDocumentRepository)(nil)
