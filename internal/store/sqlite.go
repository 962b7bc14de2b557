package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SqliteStore keeps every collection in a single documents table with
// JSON bodies, zstd-compressed beyond compressMin bytes.
type SqliteStore struct {
	db          *sql.DB
	compressor  CompressorInterface
	compressMin int
}

// OpenSqlite opens (or creates) the database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database
// (used by tests). compressMin <= 0 disables compression.
func OpenSqlite(dataDir string, compressor CompressorInterface, compressMin int) (*SqliteStore, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "widt.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &SqliteStore{db: db, compressor: compressor, compressMin: compressMin}
	if err = s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err = s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", version, err)
		}
		if _, err = tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err = tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(name string) (int, error) {
	idx := strings.IndexByte(name, '_')
	if idx < 0 {
		return 0, fmt.Errorf("migration %s: missing version prefix", name)
	}
	version, err := strconv.Atoi(name[:idx])
	if err != nil {
		return 0, fmt.Errorf("migration %s: %w", name, err)
	}
	return version, nil
}

func (s *SqliteStore) encode(doc map[string]interface{}) ([]byte, bool, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, false, fmt.Errorf("encoding document: %w", err)
	}
	if s.compressor == nil || s.compressMin <= 0 || len(body) < s.compressMin {
		return body, false, nil
	}
	compressed, err := s.compressor.Compress(body)
	if err != nil {
		return nil, false, fmt.Errorf("compressing document: %w", err)
	}
	return compressed, true, nil
}

func (s *SqliteStore) decode(body []byte, compressed bool) (map[string]interface{}, error) {
	if compressed {
		if s.compressor == nil {
			return nil, fmt.Errorf("compressed document but no compressor configured")
		}
		plain, err := s.compressor.Decompress(body)
		if err != nil {
			return nil, fmt.Errorf("decompressing document: %w", err)
		}
		body = plain
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}

func (s *SqliteStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, bool, error) {
	var body []byte
	var compressed bool
	err := s.db.QueryRowContext(ctx,
		"SELECT body, compressed FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&body, &compressed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetching %s/%s: %w", collection, id, err)
	}
	doc, err := s.decode(body, compressed)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *SqliteStore) write(ctx context.Context, collection, id string, doc map[string]interface{}) error {
	body, compressed, err := s.encode(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, compressed, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (collection, id) DO UPDATE SET
		   body = excluded.body,
		   compressed = excluded.compressed,
		   updated_at = excluded.updated_at`,
		collection, id, body, compressed,
	)
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SqliteStore) SetMerge(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	doc, ok, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		doc = make(map[string]interface{}, len(fields))
	}
	mergeFields(doc, fields)
	return s.write(ctx, collection, id, doc)
}

func (s *SqliteStore) UpdateField(ctx context.Context, collection, id, field string, value interface{}) error {
	doc, ok, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("updating %s/%s: document does not exist", collection, id)
	}
	doc[field] = value
	return s.write(ctx, collection, id, doc)
}

func (s *SqliteStore) DeleteField(ctx context.Context, collection, id, field string) error {
	doc, ok, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("deleting field of %s/%s: document does not exist", collection, id)
	}
	delete(doc, field)
	return s.write(ctx, collection, id, doc)
}

func (s *SqliteStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SqliteStore) Scan(ctx context.Context, collection string, fn func(id string, doc map[string]interface{}) error) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, body, compressed FROM documents WHERE collection = ? ORDER BY id",
		collection,
	)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", collection, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var body []byte
		var compressed bool
		if err = rows.Scan(&id, &body, &compressed); err != nil {
			return fmt.Errorf("scanning %s row: %w", collection, err)
		}
		doc, err := s.decode(body, compressed)
		if err != nil {
			return err
		}
		if err = fn(id, doc); err != nil {
			return err
		}
	}
	return rows.Err()
}
