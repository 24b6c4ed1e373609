// SQLite-backed keyword retriever.
//
// Information Hiding:
// - Schema and connection management hidden behind Retriever
// - Keyword scoring encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteRetriever stores snippets per scope and serves keyword search
// ranked by term overlap with recency as a tiebreaker.
type SqliteRetriever struct {
	db *sql.DB
}

// OpenSqlite opens or creates a snippet database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteRetriever, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	r := &SqliteRetriever{db: db}
	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return r, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteRetriever, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	r := &SqliteRetriever{db: db}
	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return r, nil
}

// Close closes the database connection.
func (r *SqliteRetriever) Close() error {
	return r.db.Close()
}

func (r *SqliteRetriever) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS snippets (
			id TEXT PRIMARY KEY,
			scope TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_snippets_scope
		ON snippets(scope, created_at DESC);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Store saves one snippet under a scope.
func (r *SqliteRetriever) Store(ctx context.Context, scope, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO snippets (id, scope, content, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), scope, content, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store snippet: %w", err)
	}
	return nil
}

// Search returns up to limit snippets from the scope ranked by the
// fraction of query terms they contain, most recent first on ties.
func (r *SqliteRetriever) Search(ctx context.Context, query, scope string, limit int) ([]Snippet, error) {
	terms := queryTerms(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT content, created_at FROM snippets WHERE scope = ? ORDER BY created_at DESC LIMIT 500`,
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snippets: %w", err)
	}
	defer rows.Close()

	var results []Snippet
	for rows.Next() {
		var content string
		var createdAt int64
		if err := rows.Scan(&content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snippet: %w", err)
		}

		score := overlapScore(content, terms)
		if score == 0 {
			continue
		}
		results = append(results, Snippet{
			Content:   content,
			Score:     score,
			CreatedAt: time.Unix(createdAt, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snippets: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// queryTerms lowercases and splits the query, dropping short tokens
// that would match almost anything.
func queryTerms(query string) []string {
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		f = strings.Trim(f, ".,!?:;\"'")
		if len(f) >= 3 {
			terms = append(terms, f)
		}
	}
	return terms
}

func overlapScore(content string, terms []string) float64 {
	lower := strings.ToLower(content)
	matched := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// Verify SqliteRetriever implements Retriever
var _ Retriever = (*SqliteRetriever)(nil)
