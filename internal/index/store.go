package index

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Index wraps a SQLite database of embedded entries together with the
// embedder that vectorizes content on write and queries on read.
type Index struct {
	db       *sql.DB
	embedder Embedder
}

// Open opens (or creates) the index database in dir and runs pending
// migrations. Pass ":memory:" as dir for an in-memory index (used by tests).
func Open(dir string, embedder Embedder) (*Index, error) {
	var dsn string
	if dir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
		dsn = filepath.Join(dir, "index.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	idx := &Index{db: db, embedder: embedder}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return idx, nil
}

// Close closes the underlying database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (x *Index) migrate() error {
	if _, err := x.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := x.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := x.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

// Add embeds the entries' contents and inserts them in one transaction.
func (x *Index) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Content
	}
	vectors, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding entries: %w", err)
	}

	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entries (id, source, kind, content, processed, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		blob := encodeFloat32s(vectors[i])
		if _, err := stmt.Exec(e.ID, e.Source, e.Kind, e.Content, boolToInt(e.Processed), blob, createdAt.Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Get returns the entry with the given id.
func (x *Index) Get(id string) (Entry, error) {
	var e Entry
	var processed int
	var createdAt string
	err := x.db.QueryRow(`
		SELECT id, source, kind, content, processed, created_at
		FROM entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.Source, &e.Kind, &e.Content, &processed, &createdAt)
	if err == sql.ErrNoRows {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	e.Processed = processed != 0
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing created_at: %w", err)
	}
	e.CreatedAt = t
	return e, nil
}

// UpdateDescription replaces an image entry's content with the vision-derived
// description, marks it processed, and re-embeds the new content. Source and
// kind are preserved.
func (x *Index) UpdateDescription(ctx context.Context, id, description string) error {
	vec, err := x.embedder.Embed(ctx, description)
	if err != nil {
		return fmt.Errorf("embedding description: %w", err)
	}

	res, err := x.db.Exec(`UPDATE entries SET content = ?, processed = 1, embedding = ? WHERE id = ?`,
		description, encodeFloat32s(vec), id)
	if err != nil {
		return fmt.Errorf("updating entry %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasSource reports whether any entry belongs to the given source document.
func (x *Index) HasSource(source string) (bool, error) {
	var count int
	if err := x.db.QueryRow("SELECT COUNT(*) FROM entries WHERE source = ?", source).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Sources returns the deduplicated set of ingested source names, sorted.
func (x *Index) Sources() ([]string, error) {
	rows, err := x.db.Query("SELECT DISTINCT source FROM entries ORDER BY source ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// ImageCounts returns the total number of image entries and how many of them
// are processed.
func (x *Index) ImageCounts() (total, processed int, err error) {
	err = x.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(processed), 0)
		FROM entries WHERE kind = ?`, KindImage,
	).Scan(&total, &processed)
	return total, processed, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
