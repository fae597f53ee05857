package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bakerybot/internal/logger"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteDocumentRepository implements DocumentRepository using SQLite.
type SQLiteDocumentRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteDocumentRepository opens (and creates if needed) the database at dbPath.
func NewSQLiteDocumentRepository(dbPath string, log *logger.Logger) (*SQLiteDocumentRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Info("sqlite document repository initialized", "path", dbPath)
	return &SQLiteDocumentRepository{db: db}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS ` + documentsTable + ` (
		doc_key TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := db.Exec(query)
	return err
}

// Get retrieves a document by key.
func (r *SQLiteDocumentRepository) Get(ctx context.Context, key string) ([]byte, *time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT body, updated_at FROM ` + documentsTable + ` WHERE doc_key = ?`

	var body, updated string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&body, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, nil, fmt.Errorf("document %s has bad timestamp %q: %w", key, updated, err)
	}
	return []byte(body), &updatedAt, nil
}

// Put inserts or replaces a document.
func (r *SQLiteDocumentRepository) Put(ctx context.Context, key string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO ` + documentsTable + ` (doc_key, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(doc_key) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, key, string(body), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to put document %s: %w", key, err)
	}
	return nil
}

// Stats returns statistics about the document database.
func (r *SQLiteDocumentRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+documentsTable).Scan(&count); err != nil {
		return nil, err
	}
	stats["documents"] = count

	var lastWrite sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM "+documentsTable).Scan(&lastWrite); err == nil && lastWrite.Valid {
		stats["last_write"] = lastWrite.String
	}

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteDocumentRepository) Close() error {
	return r.db.Close()
}

var _ DocumentRepository = (*SQLiteDocumentRepository)(nil)
