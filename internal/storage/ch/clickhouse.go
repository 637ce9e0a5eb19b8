package ch

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookshop/internal/storage"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseBackend keeps every saved version of the document as a row of the documents table.
// The newest version wins on load.
type ClickHouseBackend struct {
	conn    clickhouse.Conn
	docName string

	mu          sync.Mutex
	lastVersion uint64
}

// NewClickHouseBackend creates a new ClickHouse connection for the named document
func NewClickHouseBackend(host string, port int, database, user, password string, useTLS bool, docName string) (*ClickHouseBackend, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseBackend{conn: conn, docName: docName}, nil
}

func (db *ClickHouseBackend) Name() string { return "clickhouse:" + db.docName }

// Load returns the body of the newest version. The documents table is managed via migrations.
func (db *ClickHouseBackend) Load(ctx context.Context) ([]byte, error) {
	var (
		body    string
		version uint64
	)
	row := db.conn.QueryRow(ctx,
		`SELECT body, version FROM documents WHERE name = ? ORDER BY version DESC LIMIT 1`, db.docName)
	if err := row.Scan(&body, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	db.mu.Lock()
	if version > db.lastVersion {
		db.lastVersion = version
	}
	db.mu.Unlock()

	return []byte(body), nil
}

// Save inserts a new version of the document
func (db *ClickHouseBackend) Save(ctx context.Context, data []byte) error {
	now := time.Now()

	db.mu.Lock()
	version := uint64(now.UnixNano())
	if version <= db.lastVersion {
		version = db.lastVersion + 1
	}
	db.lastVersion = version
	db.mu.Unlock()

	err := db.conn.Exec(ctx, `INSERT INTO documents (name, version, body, saved_at) VALUES (?, ?, ?, ?)`,
		db.docName, version, string(data), now)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *ClickHouseBackend) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
