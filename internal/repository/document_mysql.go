package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bakerybot/internal/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLDocumentRepository implements DocumentRepository using MySQL.
// MEDIUMTEXT is used instead of the JSON type, which reorders object keys.
type MySQLDocumentRepository struct {
	db *sql.DB
}

// NewMySQLDocumentRepository connects using a go-sql-driver DSN
// ("user:pass@tcp(host:port)/db?parseTime=true").
func NewMySQLDocumentRepository(dsn string, log *logger.Logger) (*MySQLDocumentRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS ` + documentsTable + ` (
		doc_key VARCHAR(64) NOT NULL PRIMARY KEY,
		body MEDIUMTEXT NOT NULL,
		updated_at DATETIME(6) NOT NULL
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Info("mysql document repository initialized")
	return &MySQLDocumentRepository{db: db}, nil
}

// Get retrieves a document by key.
func (r *MySQLDocumentRepository) Get(ctx context.Context, key string) ([]byte, *time.Time, error) {
	query := `SELECT body, updated_at FROM ` + documentsTable + ` WHERE doc_key = ? LIMIT 1`

	var body []byte
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, key).Scan(&body, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}

	return body, &updatedAt, nil
}

// Put inserts or replaces a document.
func (r *MySQLDocumentRepository) Put(ctx context.Context, key string, body []byte) error {
	query := `
		INSERT INTO ` + documentsTable + ` (doc_key, body, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = VALUES(updated_at)`

	if _, err := r.db.ExecContext(ctx, query, key, string(body), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to put document %s: %w", key, err)
	}
	return nil
}

// Stats returns statistics about the document table.
func (r *MySQLDocumentRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+documentsTable).Scan(&count); err != nil {
		return nil, err
	}
	stats["documents"] = count

	var lastWrite sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM "+documentsTable).Scan(&lastWrite); err == nil && lastWrite.Valid {
		stats["last_write"] = lastWrite.Time
	}

	dbStats := r.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":   dbStats.OpenConnections,
		"in_use": dbStats.InUse,
		"idle":   dbStats.Idle,
	}

	return stats, nil
}

// Close closes the database connection pool.
func (r *MySQLDocumentRepository) Close() error {
	return r.db.Close()
}

var _ DocumentRepository = (*MySQLDocumentRepository)(nil)
