package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automentor/automentor/internal/dataset"
)

const listingsCSV = `,Advertiser,Brand,Fuel,Segment,Color,Gear_Type,Condition,Compared_Price,Price
0,Dealer,BMW,Diesel,Sedan,Black,Automatic,Used,Above,25000
1,Private,Audi,Petrol,SUV,White,Manual,Used,Below,18000
2,Dealer,BMW,Diesel,Sedan,Blue,Automatic,New,Average,42000
`

func loadListings(t *testing.T) *dataset.Context {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cars.csv")
	require.NoError(t, os.WriteFile(path, []byte(listingsCSV), 0o644))
	ds, err := dataset.Load(path)
	require.NoError(t, err)
	return ds
}

func queryJSON(q string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"query": q})
	return b
}

func TestQueryTool_Count(t *testing.T) {
	t.Parallel()

	tool := NewQueryTool(loadListings(t))

	res, err := tool.Execute(context.Background(), queryJSON("SELECT COUNT(*) AS n FROM listings"))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content, "n")
	assert.Contains(t, res.Content, "3")
}

func TestQueryTool_FilterAndProject(t *testing.T) {
	t.Parallel()

	tool := NewQueryTool(loadListings(t))

	res, err := tool.Execute(context.Background(),
		queryJSON("SELECT Brand, Price FROM listings WHERE Fuel = 'Diesel' ORDER BY Price DESC"))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content, "Brand")
	assert.Contains(t, res.Content, "42000")
	assert.Contains(t, res.Content, "25000")
	assert.NotContains(t, res.Content, "18000")
}

func TestQueryTool_RejectsMutations(t *testing.T) {
	t.Parallel()

	tool := NewQueryTool(loadListings(t))
	for _, q := range []string{
		"INSERT INTO listings VALUES (1)",
		"DROP TABLE listings",
		"DELETE FROM listings",
		"SELECT Price FROM listings; DROP TABLE listings",
		"UPDATE listings SET Price = 0",
	} {
		res, err := tool.Execute(context.Background(), queryJSON(q))
		require.NoError(t, err, q)
		assert.True(t, res.IsError, q)
	}
}

func TestQueryTool_MissingQuery(t *testing.T) {
	t.Parallel()

	tool := NewQueryTool(loadListings(t))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "query")
}

func TestQueryTool_TrailingSemicolonAccepted(t *testing.T) {
	t.Parallel()

	tool := NewQueryTool(loadListings(t))

	res, err := tool.Execute(context.Background(), queryJSON("SELECT COUNT(*) AS n FROM listings;"))
	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestOutputColumns(t *testing.T) {
	t.Parallel()

	datasetCols := []string{"Brand", "Fuel", "Price"}

	tests := []struct {
		query string
		want  []string
	}{
		{"SELECT * FROM listings", []string{"Brand", "Fuel", "Price"}},
		{"SELECT Brand, Price FROM listings", []string{"Brand", "Price"}},
		{"SELECT COUNT(*) AS n FROM listings", []string{"n"}},
		{"SELECT Brand, MAX(Price) AS top FROM listings GROUP BY Brand", []string{"Brand", "top"}},
		{"SELECT DISTINCT Brand FROM listings", []string{"Brand"}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, outputColumns(tc.query, datasetCols), tc.query)
	}
}

func TestFormatTable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(no rows)", formatTable([]string{"a"}, nil))

	out := formatTable([]string{"Brand", "Price"}, [][]string{
		{"BMW", "42000"},
		{"Audi", "18000"},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Brand")
	assert.Contains(t, lines[1], "BMW")
}

func TestFormatTable_CapsRows(t *testing.T) {
	t.Parallel()

	rows := make([][]string, 25)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("row%d", i)}
	}
	out := formatTable([]string{"col"}, rows)
	assert.Contains(t, out, "(showing first 20 of 25 rows)")
	assert.NotContains(t, out, "row24")
}
