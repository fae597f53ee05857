package repository

import (
	"context"
	"time"
)

// DocumentRepository is a durable key-value store of whole JSON documents.
// Each Put replaces the stored document atomically; there is no cross-key
// transaction.
type DocumentRepository interface {
	// Get returns the document body and its last write time. A missing key
	// yields nil data and a nil error.
	Get(ctx context.Context, key string) ([]byte, *time.Time, error)

	// Put inserts or replaces the document stored under key.
	Put(ctx context.Context, key string, body []byte) error

	// Stats returns backend statistics for the admin endpoint.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close releases the underlying connection.
	Close() error
}

const documentsTable = "bakery_documents"
