package seen

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the database-backed alternative to FileStore for
// deployments that already run several sources against one state database.
// Each source gets its own table; rows are (keyword, id) pairs.
//
// Keyword sets are cached in memory after first access so the detection
// engine sees the same Set instance across a pass, matching FileStore.
type SQLiteStore struct {
	db         *sql.DB
	table      string
	tableIdent string
	logger     *slog.Logger

	mu   sync.Mutex
	sets map[string]Set
}

var sqliteIdentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func NewSQLiteStore(dsn, table string, logger *slog.Logger) (*SQLiteStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn is required")
	}
	if table == "" {
		return nil, fmt.Errorf("sqlite table name is required")
	}
	if !sqliteIdentPattern.MatchString(table) {
		return nil, fmt.Errorf("sqlite table name %q must match %s", table, sqliteIdentPattern.String())
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := ensureSQLiteDir(dsn); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{
		db:         db,
		table:      table,
		tableIdent: `"` + table + `"`,
		logger:     logger,
		sets:       map[string]Set{},
	}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		keyword TEXT NOT NULL,
		id TEXT NOT NULL,
		seen_at TIMESTAMP NOT NULL,
		PRIMARY KEY (keyword, id)
	)`, s.tableIdent)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create seen table: %w", err)
	}
	return nil
}

// Keyword loads kw's recorded ids on first access. A query failure degrades
// to the empty set, the same never-crash tradeoff FileStore makes; the
// keyword re-bootstraps and the failure is logged loudly.
func (s *SQLiteStore) Keyword(kw string) Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.sets[kw]; ok {
		return set
	}

	set := Set{}
	query := fmt.Sprintf("SELECT id FROM %s WHERE keyword = ?", s.tableIdent)
	rows, err := s.db.Query(query, kw)
	if err != nil {
		s.logger.Error("seen state query failed, starting keyword empty; it will re-bootstrap without notifying",
			"table", s.table, "keyword", kw, "error", err)
		s.sets[kw] = set
		return set
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.logger.Error("seen state scan failed", "table", s.table, "keyword", kw, "error", err)
			break
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("seen state read incomplete", "table", s.table, "keyword", kw, "error", err)
	}
	s.sets[kw] = set
	return set
}

// Save upserts every cached id inside one transaction. Membership never
// shrinks, so inserting the full cached mapping is equivalent to writing the
// complete state.
func (s *SQLiteStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seen save: %w", err)
	}
	stmt, err := tx.Prepare(
		fmt.Sprintf("INSERT INTO %s (keyword, id, seen_at) VALUES (?, ?, ?) ON CONFLICT(keyword, id) DO NOTHING", s.tableIdent),
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare seen save: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for kw, set := range s.sets {
		for _, id := range set.IDs() {
			if _, err := stmt.Exec(kw, id, now); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("save seen id: %w", err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureSQLiteDir(dsn string) error {
	if strings.HasPrefix(dsn, "file:") {
		dsn = strings.TrimPrefix(dsn, "file:")
		if idx := strings.IndexRune(dsn, '?'); idx >= 0 {
			dsn = dsn[:idx]
		}
	}
	if dsn == "" || dsn == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
