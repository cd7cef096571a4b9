package bundle

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed diskcache_schema.sql
var diskCacheSchema string

// diskCacheSchemaVersion is bumped when the cache layout changes. A mismatch
// is not migrated; the cache is transient and users clear it instead.
const diskCacheSchemaVersion = 1

// freeSpaceFloor is the minimum free-space ratio we allow before pruning
// harder than the configured budget (e.g. 0.10 => filesystem 90% full).
const freeSpaceFloor = 0.10

// ErrSchemaMismatch indicates the cache database was written by an
// incompatible version.
var ErrSchemaMismatch = errors.New("bundle: cache schema version mismatch")

// ErrCacheLocked indicates another run holds the cache directory.
var ErrCacheLocked = errors.New("bundle: cache directory locked by another run")

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (total uint64, free uint64, err error)

// DiskCache persists fetched bundle files in a SQLite database so repeated
// runs skip the network. Entries are pruned oldest-first once the configured
// byte budget (or the filesystem free-space floor) is exceeded.
type DiskCache struct {
	db       *sql.DB
	dir      string
	maxBytes int64
	lock     *flock.Flock
	statfs   statfsFunc
}

// OpenDiskCache initializes or connects to the cache database in dir and
// takes an exclusive lock on the directory.
func OpenDiskCache(dir string, maxBytes int64) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, ".lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock cache directory: %w", err)
	}
	if !held {
		return nil, fmt.Errorf("%w: %s", ErrCacheLocked, dir)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "bundle_cache.db"))
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &DiskCache{
		db:       db,
		dir:      dir,
		maxBytes: maxBytes,
		lock:     lock,
		statfs:   realStatfs,
	}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return cache, nil
}

// Close releases the database and the directory lock.
func (c *DiskCache) Close() error {
	if c == nil {
		return nil
	}
	var err error
	if c.db != nil {
		err = c.db.Close()
	}
	if c.lock != nil {
		if unlockErr := c.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

func (c *DiskCache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='cache_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check cache_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := c.db.ExecContext(ctx, diskCacheSchema); err != nil {
			return fmt.Errorf("create cache schema: %w", err)
		}
		if _, err := c.db.ExecContext(ctx,
			"INSERT INTO cache_version (version) VALUES (?)", diskCacheSchemaVersion,
		); err != nil {
			return fmt.Errorf("record cache schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := c.db.QueryRowContext(ctx, "SELECT version FROM cache_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read cache schema version: %w", err)
	}
	if version != diskCacheSchemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, diskCacheSchemaVersion, c.dir)
	}
	return nil
}

func (c *DiskCache) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, "SELECT data FROM files WHERE path = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", name, err)
	}
	return data, true, nil
}

func (c *DiskCache) Put(ctx context.Context, name string, data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO files (path, data, size, stored_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET data = excluded.data, size = excluded.size, stored_at = excluded.stored_at`,
		name, data, len(data), now,
	)
	if err != nil {
		return fmt.Errorf("cache put %s: %w", name, err)
	}
	return c.prune(ctx)
}

// Stats describes current cache usage.
type Stats struct {
	Entries    int
	TotalBytes int64
}

// Stats reports the number of cached files and their combined size.
func (c *DiskCache) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COALESCE(SUM(size), 0) FROM files",
	).Scan(&stats.Entries, &stats.TotalBytes)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// prune removes oldest entries until the cache fits its budget. When the
// filesystem free-space ratio drops below freeSpaceFloor, the budget is
// halved for this round so the cache backs off instead of filling the disk.
func (c *DiskCache) prune(ctx context.Context) error {
	budget := c.maxBytes
	if budget <= 0 {
		return nil
	}
	if total, free, err := c.statfs(c.dir); err == nil && total > 0 {
		if float64(free)/float64(total) < freeSpaceFloor {
			budget /= 2
		}
	}

	for {
		stats, err := c.Stats(ctx)
		if err != nil {
			return err
		}
		if stats.TotalBytes <= budget || stats.Entries == 0 {
			return nil
		}
		if _, err := c.db.ExecContext(ctx,
			"DELETE FROM files WHERE path = (SELECT path FROM files ORDER BY stored_at ASC, path ASC LIMIT 1)",
		); err != nil {
			return fmt.Errorf("cache prune: %w", err)
		}
	}
}
