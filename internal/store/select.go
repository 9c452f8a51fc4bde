package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/mitranim/sqlb"

	"github.com/roach88/sqlwhere/internal/where"
)

// Row is a single result row keyed by column name.
// TEXT and BLOB columns are returned as string.
type Row map[string]any

// tableName matches the identifiers Select accepts as a table.
var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SelectExpr returns the query Select runs for table and clause, as a sqlb
// expression with the clause embedded:
//
//	SELECT * FROM "person" WHERE name = $1 ORDER BY rowid
//
// Rows come back in insertion order so results are deterministic. The table
// must already be a valid name; see Select.
func SelectExpr(table string, clause where.Clause) sqlb.Expr {
	return selectExpr{table: table, clause: clause}
}

type selectExpr struct {
	table  string
	clause where.Clause
}

func (e selectExpr) AppendExpr(text []byte, args []interface{}) ([]byte, []interface{}) {
	bui := sqlb.Bui{Text: text, Args: args}
	bui.Str(`SELECT * FROM`)
	bui.Set(sqlb.Ident(e.table).AppendExpr(bui.Get()))
	bui.Str(`WHERE`)
	bui.Set(e.clause.AppendExpr(bui.Get()))
	bui.Str(`ORDER BY rowid`)
	return bui.Get()
}

// SelectSQL returns the SQL text of SelectExpr(table, clause).
func SelectSQL(table string, clause where.Clause) string {
	text, _ := sqlb.Reify(SelectExpr(table, clause))
	return text
}

// Select returns every row of table matching clause.
//
// The clause placeholder invariant is checked before anything reaches the
// database; its parameters are bound positionally, never interpolated.
func (s *Store) Select(ctx context.Context, table string, clause where.Clause) ([]Row, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("select: invalid table name %q", table)
	}
	if err := clause.Check(); err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	result, err := s.SelectQuery(ctx, SelectExpr(table, clause))
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	slog.Debug("select executed",
		"table", table,
		"where", clause.Text,
		"params", len(clause.Params),
		"rows", len(result),
	)
	return result, nil
}

// SelectQuery runs a query assembled with sqlb, typically one embedding a
// where.Clause:
//
//	query := sqlb.ListQ(`SELECT name FROM person WHERE $1 ORDER BY rowid`, clause)
//	rows, err := s.SelectQuery(ctx, query)
//
// Statements are cached by rendered text. Ordinal "$N" parameters bind
// positionally, which holds as long as they first appear in the text in
// increasing order, as sqlb renders them. A clause that violates its
// invariant is returned as an error.
func (s *Store) SelectQuery(ctx context.Context, query sqlb.Expr) ([]Row, error) {
	var bui sqlb.Bui
	if err := bui.TryExprs(query); err != nil {
		return nil, fmt.Errorf("render query: %w", err)
	}
	text, args := bui.Reify()

	stmt, release, err := s.prepare(ctx, text)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", text, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Columns returns the column names of table, for checking filter
// properties against the schema. An unknown table is an error.
func (s *Store) Columns(ctx context.Context, table string) (map[string]bool, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("columns: invalid table name %q", table)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("columns of %s: %w", table, err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("columns of %s: no such table", table)
	}
	return cols, nil
}

// scanRows reads all rows into maps keyed by column name.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}
