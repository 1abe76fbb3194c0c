package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jward/opimpact/internal/graph"
)

const (
	metaSource   = "source"
	metaLoadedAt = "loaded_at"
)

// WriteGraph replaces the stored snapshot with g in a single transaction.
func (s *Store) WriteGraph(g *graph.Graph, source string, loadedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("write graph: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM dependencies",
		"DELETE FROM operators",
		"DELETE FROM categories",
		"DELETE FROM snapshot_meta",
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("write graph: clear: %w", err)
		}
	}

	categoryIDs := make(map[string]int64)
	for _, c := range g.Categories() {
		res, err := tx.Exec("INSERT INTO categories (name) VALUES (?)", c)
		if err != nil {
			return fmt.Errorf("write graph: category %q: %w", c, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		categoryIDs[c] = id
	}

	for _, op := range g.Operators() {
		if _, err := tx.Exec(
			"INSERT INTO operators (name, category_id, local_name, compute_units) VALUES (?, ?, ?, ?)",
			op.Name(), categoryIDs[op.ID.Category], op.ID.Local, marshalUnits(op.ComputeUnits),
		); err != nil {
			return fmt.Errorf("write graph: operator %q: %w", op.Name(), err)
		}
	}

	for _, e := range g.Edges() {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO dependencies (from_name, to_name) VALUES (?, ?)", e.From, e.To,
		); err != nil {
			return fmt.Errorf("write graph: edge %s -> %s: %w", e.From, e.To, err)
		}
	}

	for k, v := range map[string]string{
		metaSource:   source,
		metaLoadedAt: loadedAt.UTC().Format(time.RFC3339),
	} {
		if _, err := tx.Exec("INSERT INTO snapshot_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("write graph: meta %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// Snapshot returns the snapshot metadata, or nil when nothing was written yet.
func (s *Store) Snapshot() (*Snapshot, error) {
	rows, err := s.db.Query("SELECT key, value FROM snapshot_meta")
	if err != nil {
		return nil, fmt.Errorf("snapshot meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan snapshot meta: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, nil
	}

	snap := &Snapshot{Source: meta[metaSource]}
	if ts, ok := meta[metaLoadedAt]; ok {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse loaded_at: %w", err)
		}
		snap.LoadedAt = t
	}
	return snap, nil
}

const operatorColumns = `o.id, o.name, c.name, o.local_name, o.compute_units`

func scanOperators(rows *sql.Rows) ([]*Operator, error) {
	defer rows.Close()
	var ops []*Operator
	for rows.Next() {
		op := &Operator{}
		var units string
		if err := rows.Scan(&op.ID, &op.Name, &op.Category, &op.LocalName, &units); err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		op.ComputeUnits = unmarshalUnits(units)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// AllOperators returns every stored operator in insertion order.
func (s *Store) AllOperators() ([]*Operator, error) {
	rows, err := s.db.Query(`SELECT ` + operatorColumns + `
		FROM operators o JOIN categories c ON c.id = o.category_id
		ORDER BY o.id`)
	if err != nil {
		return nil, fmt.Errorf("all operators: %w", err)
	}
	return scanOperators(rows)
}

// OperatorsByCategory returns the operators of one category in insertion order.
func (s *Store) OperatorsByCategory(category string) ([]*Operator, error) {
	rows, err := s.db.Query(`SELECT `+operatorColumns+`
		FROM operators o JOIN categories c ON c.id = o.category_id
		WHERE c.name = ? ORDER BY o.id`, category)
	if err != nil {
		return nil, fmt.Errorf("operators by category: %w", err)
	}
	return scanOperators(rows)
}

// OperatorsByName returns the stored operators among names, in insertion order.
// Unknown names are omitted.
func (s *Store) OperatorsByName(names []string) ([]*Operator, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT `+operatorColumns+`
		FROM operators o JOIN categories c ON c.id = o.category_id
		WHERE o.name IN (`+placeholderList(len(names))+`) ORDER BY o.id`, stringsToArgs(names)...)
	if err != nil {
		return nil, fmt.Errorf("operators by name: %w", err)
	}
	return scanOperators(rows)
}

// Categories returns stored category names in insertion order.
func (s *Store) Categories() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// AllDependencies returns every stored edge in insertion order.
func (s *Store) AllDependencies() ([]*Dependency, error) {
	rows, err := s.db.Query("SELECT id, from_name, to_name FROM dependencies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("all dependencies: %w", err)
	}
	defer rows.Close()
	var deps []*Dependency
	for rows.Next() {
		d := &Dependency{}
		if err := rows.Scan(&d.ID, &d.From, &d.To); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

// LoadGraph rebuilds a graph.Graph from the stored snapshot.
func (s *Store) LoadGraph() (*graph.Graph, error) {
	rows, err := s.AllOperators()
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	deps, err := s.AllDependencies()
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	ops := make([]*graph.Operator, len(rows))
	for i, r := range rows {
		ops[i] = &graph.Operator{
			ID:           graph.NormalizeID(r.Category, r.LocalName),
			ComputeUnits: r.ComputeUnits,
		}
	}
	edges := make([]graph.Edge, len(deps))
	for i, d := range deps {
		edges[i] = graph.Edge{From: d.From, To: d.To}
	}
	return graph.Build(ops, edges), nil
}
