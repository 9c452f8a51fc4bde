package store

import (
	"container/list"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Store executes lowered WHERE clauses against a SQLite database.
// Uses SQLite with WAL mode for concurrent read access.
//
// Prepared statements are cached by query text, at most maxStmts of them.
// The least recently used statement is evicted first and closed once no
// query is using it. The mutex must be held when accessing stmts and lru.
type Store struct {
	db *sql.DB

	mu       sync.Mutex
	stmts    map[string]*list.Element
	lru      *list.List // of *cachedStmt, most recently used first
	maxStmts int
}

// StatementCacheSize is the number of prepared statements a Store keeps.
const StatementCacheSize = 128

type cachedStmt struct {
	query   string
	stmt    *sql.Stmt
	users   int
	evicted bool
}

// Open creates or opens a SQLite database at the given path.
// Use ":memory:" for a private in-memory database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*Store, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// This also keeps ":memory:" databases on a single shared connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{
		db:       db,
		stmts:    make(map[string]*list.Element),
		lru:      list.New(),
		maxStmts: StatementCacheSize,
	}, nil
}

// Close closes cached statements and the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	var errs []error
	for el := s.lru.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*cachedStmt)
		entry.evicted = true
		if err := entry.stmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close statement %q: %w", entry.query, err))
		}
	}
	s.stmts = make(map[string]*list.Element)
	s.lru.Init()
	s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Exec runs a statement that returns no rows, such as DDL or an INSERT used
// to seed a table.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec %q: %w", query, err)
	}
	return res, nil
}

// ExecAll runs statements in order, stopping at the first failure.
func (s *Store) ExecAll(ctx context.Context, queries []string) error {
	for i, query := range queries {
		if _, err := s.Exec(ctx, query); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// prepare returns the cached statement for query, preparing it on first use.
// The caller must call release when done with the statement.
func (s *Store) prepare(ctx context.Context, query string) (stmt *sql.Stmt, release func(), err error) {
	s.mu.Lock()

	if el, ok := s.stmts[query]; ok {
		s.lru.MoveToFront(el)
		entry := el.Value.(*cachedStmt)
		entry.users++
		s.mu.Unlock()
		return entry.stmt, func() { s.release(entry) }, nil
	}

	stmt, err = s.db.PrepareContext(ctx, query)
	if err != nil {
		s.mu.Unlock()
		return nil, nil, fmt.Errorf("prepare %q: %w", query, err)
	}
	entry := &cachedStmt{query: query, stmt: stmt, users: 1}
	s.stmts[query] = s.lru.PushFront(entry)

	var idle []*cachedStmt
	for s.lru.Len() > s.maxStmts {
		oldest := s.lru.Remove(s.lru.Back()).(*cachedStmt)
		delete(s.stmts, oldest.query)
		oldest.evicted = true
		if oldest.users == 0 {
			idle = append(idle, oldest)
		}
	}
	s.mu.Unlock()

	for _, old := range idle {
		closeEvicted(old)
	}
	return stmt, func() { s.release(entry) }, nil
}

// release marks one use of entry as finished, closing it if it was evicted
// in the meantime.
func (s *Store) release(entry *cachedStmt) {
	s.mu.Lock()
	entry.users--
	closeNow := entry.evicted && entry.users == 0
	s.mu.Unlock()

	if closeNow {
		closeEvicted(entry)
	}
}

func closeEvicted(entry *cachedStmt) {
	if err := entry.stmt.Close(); err != nil {
		slog.Warn("close evicted statement", "query", entry.query, "error", err)
	}
}

// cachedStatements returns the number of prepared statements held.
func (s *Store) cachedStatements() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
