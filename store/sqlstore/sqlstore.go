// Package sqlstore is the sqlite-backed graph store, used when the exchange
// needs its graph to survive restarts without replaying the event stream.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/store"
)

//go:embed schema.sql
var schemaSQL string

// Store persists quads in a single sqlite table. The sqlite driver serializes
// writers itself; no additional locking is needed here.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapFatal(err, "sqlstore", "open", "opening sqlite database")
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.WrapFatal(err, "sqlstore", "open", "applying schema")
	}
	return &Store{db: db}, nil
}

// Upsert adds triples to the named graph, skipping exact duplicates.
func (s *Store) Upsert(ctx context.Context, graphID string, triples []store.Triple) error {
	if len(triples) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapTransient(err, "sqlstore", "upsert", "beginning transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO quads (graph_id, subject, predicate, object_kind, object_lex) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.WrapTransient(err, "sqlstore", "upsert", "preparing insert")
	}
	defer stmt.Close()

	for _, t := range triples {
		if _, err := stmt.ExecContext(ctx, graphID, t.Subject, t.Predicate, string(t.Object.Kind), t.Object.Lexical()); err != nil {
			return errors.WrapTransient(err, "sqlstore", "upsert", "inserting quad")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.WrapTransient(err, "sqlstore", "upsert", "committing transaction")
	}
	return nil
}

// Delete removes every triple in the named graph matching the pattern.
func (s *Store) Delete(ctx context.Context, graphID string, pattern store.Pattern) error {
	where, args := patternClause(pattern)
	query := "DELETE FROM quads WHERE graph_id = ?" + where
	if _, err := s.db.ExecContext(ctx, query, append([]any{graphID}, args...)...); err != nil {
		return errors.WrapTransient(err, "sqlstore", "delete", "deleting quads")
	}
	return nil
}

// Query returns every triple matching the pattern across the given graphs.
func (s *Store) Query(ctx context.Context, pattern store.Pattern, graphs ...string) ([]store.Triple, error) {
	return s.selectTriples(ctx, pattern, graphs)
}

// Ask reports whether at least one triple matches the pattern.
func (s *Store) Ask(ctx context.Context, pattern store.Pattern, graphs ...string) (bool, error) {
	where, args := patternClause(pattern)
	query := "SELECT 1 FROM quads WHERE 1=1" + graphClause(graphs, &args) + where + " LIMIT 1"

	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapTransient(err, "sqlstore", "ask", "probing quads")
	}
	return true, nil
}

// Construct assembles the subgraph reachable from the pattern, expanding IRI
// objects as subjects one frontier at a time.
func (s *Store) Construct(ctx context.Context, pattern store.Pattern, graphs ...string) ([]store.Triple, error) {
	out, err := s.selectTriples(ctx, pattern, graphs)
	if err != nil {
		return nil, err
	}
	visited := make(map[string]bool)
	var frontier []string
	for _, t := range out {
		visited[t.Subject] = true
		if t.Object.IsIRI() {
			frontier = append(frontier, t.Object.Str)
		}
	}
	for len(frontier) > 0 {
		subj := frontier[0]
		frontier = frontier[1:]
		if visited[subj] {
			continue
		}
		visited[subj] = true
		more, err := s.selectTriples(ctx, store.Pattern{Subject: subj}, graphs)
		if err != nil {
			return nil, err
		}
		for _, t := range more {
			out = append(out, t)
			if t.Object.IsIRI() && !visited[t.Object.Str] {
				frontier = append(frontier, t.Object.Str)
			}
		}
	}
	return out, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) selectTriples(ctx context.Context, pattern store.Pattern, graphs []string) ([]store.Triple, error) {
	where, args := patternClause(pattern)
	query := "SELECT subject, predicate, object_kind, object_lex FROM quads WHERE 1=1" +
		graphClause(graphs, &args) + where

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapTransient(err, "sqlstore", "query", "selecting quads")
	}
	defer rows.Close()

	var out []store.Triple
	for rows.Next() {
		var subject, predicate, kind, lex string
		if err := rows.Scan(&subject, &predicate, &kind, &lex); err != nil {
			return nil, errors.WrapTransient(err, "sqlstore", "query", "scanning quad")
		}
		obj, err := store.TermFromLexical(store.TermKind(kind), lex)
		if err != nil {
			return nil, errors.WrapInvalid(err, "sqlstore", "query", "decoding stored term")
		}
		out = append(out, store.Triple{Subject: subject, Predicate: predicate, Object: obj})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapTransient(err, "sqlstore", "query", "iterating quads")
	}
	return out, nil
}

// patternClause renders the bound positions of a pattern as SQL conditions.
func patternClause(pattern store.Pattern) (string, []any) {
	var sb strings.Builder
	var args []any
	if pattern.Subject != "" {
		sb.WriteString(" AND subject = ?")
		args = append(args, pattern.Subject)
	}
	if pattern.Predicate != "" {
		sb.WriteString(" AND predicate = ?")
		args = append(args, pattern.Predicate)
	}
	if pattern.Object != nil {
		sb.WriteString(" AND object_kind = ? AND object_lex = ?")
		args = append(args, string(pattern.Object.Kind), pattern.Object.Lexical())
	}
	return sb.String(), args
}

// graphClause restricts the scan to the named graphs; no graphs means all.
// The clause precedes the pattern clause in query text, so its placeholders
// are prepended to the collected pattern arguments.
func graphClause(graphs []string, args *[]any) string {
	if len(graphs) == 0 {
		return ""
	}
	placeholders := strings.Repeat("?, ", len(graphs))
	clause := " AND graph_id IN (" + placeholders[:len(placeholders)-2] + ")"
	graphArgs := make([]any, len(graphs))
	for i, g := range graphs {
		graphArgs[i] = g
	}
	*args = append(graphArgs, *args...)
	return clause
}
