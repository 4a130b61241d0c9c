package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	tinysql "github.com/SimonWaldherr/tinySQL"

	"github.com/automentor/automentor/pkg/log"
)

// Context owns the loaded vehicle-listing table and its derived
// metadata. The table is immutable for the lifetime of a session: no
// mutating operation is exposed, so it may be shared across sessions
// without locking.
type Context struct {
	db      *tinysql.DB
	columns []string
	numeric map[string]bool
	meta    Metadata
}

// Load reads the delimited listings file once and materializes it as an
// in-memory SQL table. Returns a *LoadError if the source is missing,
// malformed, or lacks a required column.
func Load(path string) (*Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "cannot open source file", Cause: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Message: "malformed delimited file", Cause: err}
	}
	if len(records) < 1 {
		return nil, &LoadError{Path: path, Message: "source file has no header row"}
	}

	header := records[0]
	body := records[1:]

	// Exported datasets often carry an unnamed leading index column;
	// drop it rather than surface a blank column name to the model.
	if len(header) > 0 && strings.TrimSpace(header[0]) == "" {
		header = header[1:]
		trimmed := make([][]string, len(body))
		for i, rec := range body {
			if len(rec) > 0 {
				trimmed[i] = rec[1:]
			}
		}
		body = trimmed
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	if err := checkRequired(columns); err != nil {
		return nil, &LoadError{Path: path, Message: "missing required column", Cause: err}
	}

	numeric := classifyNumeric(columns, body)

	db := tinysql.NewDB()
	if err := createTable(db, columns, numeric); err != nil {
		return nil, &LoadError{Path: path, Message: "cannot create listings table", Cause: err}
	}
	if err := insertRows(db, columns, numeric, body); err != nil {
		return nil, &LoadError{Path: path, Message: "cannot populate listings table", Cause: err}
	}

	meta := Metadata{
		Columns:    columns,
		Categories: collectCategories(columns, body),
		Rows:       len(body),
	}

	log.Info("dataset loaded: %d listings, %d columns from %s", meta.Rows, len(columns), path)

	return &Context{
		db:      db,
		columns: columns,
		numeric: numeric,
		meta:    meta,
	}, nil
}

// Metadata returns the dataset-derived prompt metadata.
func (c *Context) Metadata() Metadata {
	return c.meta
}

// Columns returns the column list in source order.
func (c *Context) Columns() []string {
	out := make([]string, len(c.columns))
	copy(out, c.columns)
	return out
}

// CategoryValues returns the distinct values of one categorical column.
func (c *Context) CategoryValues(column string) []string {
	vals := c.meta.Categories[column]
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// RowCount returns the number of listings loaded.
func (c *Context) RowCount() int {
	return c.meta.Rows
}

// Select executes a read-only SQL statement against the listings table
// and projects the named output columns from each result row. Values
// that a row does not carry render as NULL. The caller is responsible
// for restricting the statement to a safe SELECT; Select itself only
// parses and executes.
func (c *Context) Select(ctx context.Context, query string, cols []string) ([][]string, error) {
	stmt, err := tinysql.ParseSQL(query)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}

	rs, err := tinysql.Execute(ctx, c.db, "default", stmt)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	if rs == nil {
		return nil, nil
	}

	out := make([][]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rendered := make([]string, len(cols))
		for i, name := range cols {
			v, ok := tinysql.GetVal(row, name)
			if !ok || v == nil {
				rendered[i] = "NULL"
				continue
			}
			rendered[i] = renderValue(v)
		}
		out = append(out, rendered)
	}
	return out, nil
}

// checkRequired verifies every required column is present.
func checkRequired(columns []string) error {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	for _, req := range requiredColumns {
		if !have[req] {
			return fmt.Errorf("column %q not found in header", req)
		}
	}
	return nil
}

// classifyNumeric marks a column numeric when every non-empty value in
// it parses as an integer. Everything else is stored as text.
func classifyNumeric(columns []string, body [][]string) map[string]bool {
	numeric := make(map[string]bool, len(columns))
	for i, col := range columns {
		isNum := true
		seen := false
		for _, rec := range body {
			if i >= len(rec) {
				continue
			}
			val := strings.TrimSpace(rec[i])
			if val == "" {
				continue
			}
			seen = true
			if _, err := strconv.Atoi(val); err != nil {
				isNum = false
				break
			}
		}
		numeric[col] = seen && isNum
	}
	return numeric
}

func createTable(db *tinysql.DB, columns []string, numeric map[string]bool) error {
	defs := make([]string, len(columns))
	for i, col := range columns {
		typ := "TEXT"
		if numeric[col] {
			typ = "INT"
		}
		defs[i] = fmt.Sprintf("%s %s", col, typ)
	}
	q := fmt.Sprintf("CREATE TABLE %s (%s)", TableName, strings.Join(defs, ", "))
	stmt, err := tinysql.ParseSQL(q)
	if err != nil {
		return err
	}
	_, err = tinysql.Execute(context.Background(), db, "default", stmt)
	return err
}

func insertRows(db *tinysql.DB, columns []string, numeric map[string]bool, body [][]string) error {
	for n, rec := range body {
		vals := make([]string, len(columns))
		for i, col := range columns {
			raw := ""
			if i < len(rec) {
				raw = strings.TrimSpace(rec[i])
			}
			if numeric[col] {
				if raw == "" {
					raw = "0"
				}
				vals[i] = raw
			} else {
				vals[i] = fmt.Sprintf("'%s'", escapeSQ(raw))
			}
		}
		q := fmt.Sprintf("INSERT INTO %s VALUES (%s)", TableName, strings.Join(vals, ", "))
		stmt, err := tinysql.ParseSQL(q)
		if err != nil {
			return fmt.Errorf("row %d: %w", n+1, err)
		}
		if _, err := tinysql.Execute(context.Background(), db, "default", stmt); err != nil {
			return fmt.Errorf("row %d: %w", n+1, err)
		}
	}
	return nil
}

// collectCategories gathers distinct values of the fixed categorical
// columns in first-seen order.
func collectCategories(columns []string, body [][]string) map[string][]string {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	categories := make(map[string][]string, len(CategoricalColumns))
	for _, col := range CategoricalColumns {
		i, ok := index[col]
		if !ok {
			continue
		}
		seen := make(map[string]bool)
		var vals []string
		for _, rec := range body {
			if i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			vals = append(vals, v)
		}
		categories[col] = vals
	}
	return categories
}

// renderValue formats one SQL value for textual tool output.
func renderValue(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// escapeSQ escapes single quotes for safe SQL insertion.
func escapeSQ(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
