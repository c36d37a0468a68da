package sqlite

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/glebarez/go-sqlite"
	"github.com/picfetch/picfetch/cache"
)

// Provider implements a persistent sqlite-backed cache
type Provider struct {
	db         *sql.DB
	writeMutex sync.Mutex
}

// New returns a new Provider instance backed by the database file at path
func New(path string) (*Provider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS cache (key TEXT PRIMARY KEY, stored_at INTEGER, bytes BLOB)"); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	return &Provider{
		db: db,
	}, nil
}

// Get returns an object from the cache if it exists
func (p *Provider) Get(ctx context.Context, key string) (data []byte, err error) {
	err = p.db.QueryRowContext(ctx, "SELECT bytes FROM cache WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, cache.ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return data, nil
}

// Set adds an object to the cache, replacing any existing object
func (p *Provider) Set(ctx context.Context, key string, data []byte) (err error) {
	p.writeMutex.Lock()
	defer p.writeMutex.Unlock()

	_, err = p.db.ExecContext(ctx, "INSERT OR REPLACE INTO cache (key, stored_at, bytes) VALUES (?, strftime('%s', 'now'), ?)", key, data)
	return err
}

// Delete removes an object from the cache
func (p *Provider) Delete(ctx context.Context, key string) (err error) {
	p.writeMutex.Lock()
	defer p.writeMutex.Unlock()

	_, err = p.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key)
	return err
}

// Shutdown shuts down the cache
func (p *Provider) Shutdown() {
	p.db.Close()
}
