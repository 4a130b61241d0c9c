// Package knowledge holds the precomputed embedding index of
// brand-related facts and its top-k semantic search. The index is built
// offline (cmd/indexbuilder) and loaded read-only at startup.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tinysql "github.com/SimonWaldherr/tinySQL"

	"github.com/automentor/automentor/pkg/log"
)

const factsTable = "brand_facts"

const embedBatchSize = 16

// Embedder turns texts into embedding vectors. Satisfied by *llm.Client.
type Embedder interface {
	Embeddings(ctx context.Context, texts []string) ([][]float64, error)
}

// RetrievalError reports an unavailable or failing knowledge index.
type RetrievalError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RetrievalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("knowledge retrieval failed (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("knowledge retrieval failed (%s): %s", e.Path, e.Message)
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// Index is the loaded brand-knowledge index. Queries are embedded with
// the same embedder the passages were indexed with, then matched by
// cosine similarity. k is fixed at construction, not per call.
type Index struct {
	db       *tinysql.DB
	path     string
	embedder Embedder
	topK     int
}

// OpenIndex loads a previously built index file read-only.
func OpenIndex(path string, embedder Embedder, topK int) (*Index, error) {
	if topK <= 0 {
		topK = 3
	}

	db, err := tinysql.LoadFromFile(path)
	if err != nil {
		return nil, &RetrievalError{Path: path, Message: "index unavailable", Cause: err}
	}

	log.Info("knowledge index loaded from %s (top-k=%d)", path, topK)
	return &Index{db: db, path: path, embedder: embedder, topK: topK}, nil
}

// BuildIndex embeds the corpus documents and persists them as an index
// file that OpenIndex can load.
func BuildIndex(ctx context.Context, path string, docs []Document, embedder Embedder) error {
	if len(docs) == 0 {
		return fmt.Errorf("empty corpus, nothing to index")
	}

	db := tinysql.NewDB()
	q := fmt.Sprintf("CREATE TABLE %s (id INT, brand TEXT, content TEXT, embedding VECTOR)", factsTable)
	stmt, err := tinysql.ParseSQL(q)
	if err != nil {
		return fmt.Errorf("create facts table: %w", err)
	}
	if _, err := tinysql.Execute(ctx, db, "default", stmt); err != nil {
		return fmt.Errorf("create facts table: %w", err)
	}

	for start := 0; start < len(docs); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Content
		}
		vecs, err := embedder.Embeddings(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch starting at %d: %w", start, err)
		}

		for i, vec := range vecs {
			doc := batch[i]
			insert := fmt.Sprintf(
				"INSERT INTO %s VALUES (%d, '%s', '%s', VEC_FROM_JSON('%s'))",
				factsTable, start+i, escapeSQ(doc.Brand), escapeSQ(doc.Content), vecJSON(vec),
			)
			st, err := tinysql.ParseSQL(insert)
			if err != nil {
				return fmt.Errorf("insert fact %d: %w", start+i, err)
			}
			if _, err := tinysql.Execute(ctx, db, "default", st); err != nil {
				return fmt.Errorf("insert fact %d: %w", start+i, err)
			}
		}
		log.Info("indexed %d/%d brand facts", end, len(docs))
	}

	if err := tinysql.SaveToFile(db, path); err != nil {
		return fmt.Errorf("persist index to %s: %w", path, err)
	}
	return nil
}

// Search embeds the query and returns the concatenated text of the
// top-k most similar passages.
func (ix *Index) Search(ctx context.Context, query string) (string, error) {
	vecs, err := ix.embedder.Embeddings(ctx, []string{query})
	if err != nil {
		return "", &RetrievalError{Path: ix.path, Message: "cannot embed query", Cause: err}
	}
	if len(vecs) == 0 {
		return "", &RetrievalError{Path: ix.path, Message: "embedder returned no vector"}
	}

	q := fmt.Sprintf(
		"SELECT content, brand, VEC_COSINE_SIMILARITY(embedding, VEC_FROM_JSON('%s')) AS score FROM %s ORDER BY score DESC LIMIT %d",
		vecJSON(vecs[0]), factsTable, ix.topK,
	)
	stmt, err := tinysql.ParseSQL(q)
	if err != nil {
		return "", &RetrievalError{Path: ix.path, Message: "cannot parse search query", Cause: err}
	}

	rs, err := tinysql.Execute(ctx, ix.db, "default", stmt)
	if err != nil {
		return "", &RetrievalError{Path: ix.path, Message: "search failed", Cause: err}
	}
	if rs == nil || len(rs.Rows) == 0 {
		return "No brand information found.", nil
	}

	var passages []string
	for _, row := range rs.Rows {
		content, ok := tinysql.GetVal(row, "content")
		if !ok || content == nil {
			continue
		}
		passages = append(passages, fmt.Sprint(content))
	}
	if len(passages) == 0 {
		return "No brand information found.", nil
	}
	return strings.Join(passages, "\n\n"), nil
}

// vecJSON marshals an embedding vector into a JSON string for SQL usage.
func vecJSON(v []float64) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.Warn("failed to marshal vector: %v", err)
		return "[]"
	}
	return string(b)
}

// escapeSQ escapes single quotes for safe SQL insertion.
func escapeSQ(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
