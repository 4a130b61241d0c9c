package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCorpus(t *testing.T) {
	t.Parallel()

	docs, err := LoadCorpus(writeCorpus(t, `
facts:
  - brand: "Alfa Romeo"
    content: "  Founded in Milan in 1910.  "
  - brand: BMW
    content: Started with aircraft engines.
`))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Alfa Romeo", docs[0].Brand)
	assert.Equal(t, "Founded in Milan in 1910.", docs[0].Content)
	assert.Equal(t, "BMW", docs[1].Brand)
}

func TestLoadCorpus_EmptyContent(t *testing.T) {
	t.Parallel()

	_, err := LoadCorpus(writeCorpus(t, `
facts:
  - brand: BMW
    content: "   "
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no content")
}

func TestLoadCorpus_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCorpus(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
