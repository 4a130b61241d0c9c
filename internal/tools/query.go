package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/automentor/automentor/internal/dataset"
	"github.com/automentor/automentor/pkg/log"
)

// maxResultRows bounds how many rows are rendered back to the model.
const maxResultRows = 20

// QueryTool evaluates a restricted SQL SELECT against the listings
// table. Only a single non-mutating SELECT statement is accepted; there
// is no statement execution, no filesystem or network access, and no
// way to write to the dataset.
type QueryTool struct {
	ds *dataset.Context
}

// NewQueryTool creates a query tool bound to the loaded dataset.
func NewQueryTool(ds *dataset.Context) *QueryTool {
	return &QueryTool{ds: ds}
}

type queryArgs struct {
	Query *string `json:"query"`
}

func (t *QueryTool) Name() string {
	return "car_dataset_query"
}

func (t *QueryTool) Description() string {
	return `Run a single SQL SELECT statement against the "listings" table of vehicle listings and return the result as text.
Only SELECT is allowed; the dataset is read-only. Give every computed column an AS alias, e.g.:
SELECT AVG(Price) AS avg_price FROM listings WHERE Fuel = 'Diesel'`
}

func (t *QueryTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "A single SQL SELECT statement over the listings table. Computed columns must have an AS alias."
			}
		},
		"required": ["query"]
	}`)
}

func (t *QueryTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var qa queryArgs
	if err := json.Unmarshal(args, &qa); err != nil {
		return errResult(&ExecutionError{Tool: t.Name(), Input: string(args), Cause: fmt.Errorf("cannot parse arguments: %w", err)}), nil
	}
	if qa.Query == nil || strings.TrimSpace(*qa.Query) == "" {
		return errResult(&InputError{Tool: t.Name(), Field: "query", Reason: "is required"}), nil
	}

	query, err := sanitizeSelect(*qa.Query)
	if err != nil {
		return errResult(&ExecutionError{Tool: t.Name(), Input: *qa.Query, Cause: err}), nil
	}

	cols := outputColumns(query, t.ds.Columns())
	rows, err := t.ds.Select(ctx, query, cols)
	if err != nil {
		return errResult(&ExecutionError{Tool: t.Name(), Input: query, Cause: err}), nil
	}

	log.Debug("query tool: %q returned %d rows", query, len(rows))
	return ToolResult{Content: formatTable(cols, rows)}, nil
}

var forbiddenRe = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|create|alter|truncate|attach|pragma|grant|set|into)\b`)

// sanitizeSelect enforces the safe expression subset: exactly one
// statement, starting with SELECT, with no mutating or administrative
// keywords anywhere.
func sanitizeSelect(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	q = strings.TrimSuffix(q, ";")
	if strings.Contains(q, ";") {
		return "", fmt.Errorf("only a single statement is allowed")
	}
	if !hasPrefixWord(q, "SELECT") {
		return "", fmt.Errorf("only SELECT statements are allowed")
	}
	if m := forbiddenRe.FindString(q); m != "" {
		return "", fmt.Errorf("disallowed keyword %q in query", strings.ToUpper(m))
	}
	return q, nil
}

func hasPrefixWord(s, word string) bool {
	if len(s) < len(word) {
		return false
	}
	if !strings.EqualFold(s[:len(word)], word) {
		return false
	}
	rest := s[len(word):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n'
}

// outputColumns derives the result column names from the SELECT list so
// rows can be projected without engine-side column metadata. `*`
// expands to the dataset's columns; aliased expressions use their
// alias; bare identifiers use themselves.
func outputColumns(query string, datasetCols []string) []string {
	projection := selectList(query)
	if strings.TrimSpace(projection) == "*" {
		return datasetCols
	}

	items := splitTopLevel(projection, ',')
	cols := make([]string, 0, len(items))
	for _, item := range items {
		cols = append(cols, columnName(item))
	}
	return cols
}

// selectList extracts the text between SELECT and the top-level FROM.
func selectList(query string) string {
	body := strings.TrimSpace(query)
	body = body[len("SELECT"):]
	if rest, ok := trimLeadingWord(body, "DISTINCT"); ok {
		body = rest
	}

	depth := 0
	upper := strings.ToUpper(body)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && strings.HasPrefix(upper[i:], "FROM") && isWordBoundary(body, i, i+4) {
			return strings.TrimSpace(body[:i])
		}
	}
	return strings.TrimSpace(body)
}

func trimLeadingWord(s, word string) (string, bool) {
	t := strings.TrimSpace(s)
	if len(t) > len(word) && strings.EqualFold(t[:len(word)], word) && t[len(word)] == ' ' {
		return t[len(word):], true
	}
	return s, false
}

func isWordBoundary(s string, start, end int) bool {
	if start > 0 && isWordChar(s[start-1]) {
		return false
	}
	if end < len(s) && isWordChar(s[end]) {
		return false
	}
	return true
}

func isWordChar(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// splitTopLevel splits on sep outside of parentheses and quotes.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	inQuote := false
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
			}
		case sep:
			if depth == 0 && !inQuote {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	out = append(out, s[last:])
	return out
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// columnName resolves one SELECT-list item to its output column name.
func columnName(item string) string {
	it := strings.TrimSpace(item)

	upper := strings.ToUpper(it)
	if idx := strings.LastIndex(upper, " AS "); idx >= 0 {
		alias := strings.TrimSpace(it[idx+4:])
		return strings.Trim(alias, `"`)
	}
	if identRe.MatchString(it) {
		return it
	}
	// Unaliased expression: pass the expression text through and let
	// the engine resolve it or render NULL.
	return it
}

// formatTable renders result rows as an aligned text table, capped at
// maxResultRows.
func formatTable(cols []string, rows [][]string) string {
	if len(rows) == 0 {
		return "(no rows)"
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	shown := rows
	if len(shown) > maxResultRows {
		shown = shown[:maxResultRows]
	}
	for _, row := range shown {
		for i := range cols {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range cols {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
		}
		sb.WriteString("\n")
	}

	writeRow(cols)
	for _, row := range shown {
		writeRow(row)
	}
	if len(rows) > maxResultRows {
		sb.WriteString(fmt.Sprintf("(showing first %d of %d rows)\n", maxResultRows, len(rows)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func errResult(err error) ToolResult {
	return ToolResult{Content: err.Error(), IsError: true}
}
