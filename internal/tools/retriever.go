package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/automentor/automentor/internal/knowledge"
	"github.com/automentor/automentor/pkg/log"
)

// RetrieverTool searches the precomputed brand-knowledge index for
// passages semantically similar to a free-text query. The number of
// passages returned is fixed at startup.
type RetrieverTool struct {
	index *knowledge.Index
}

// NewRetrieverTool creates a retriever tool over the loaded index.
func NewRetrieverTool(index *knowledge.Index) *RetrieverTool {
	return &RetrieverTool{index: index}
}

type retrieverArgs struct {
	Query *string `json:"query"`
}

func (t *RetrieverTool) Name() string {
	return "brand_info_search"
}

func (t *RetrieverTool) Description() string {
	return "Search for information about a car brand: history, reputation, and curiosities."
}

func (t *RetrieverTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "What to look up, e.g. 'history of Alfa Romeo'"
			}
		},
		"required": ["query"]
	}`)
}

func (t *RetrieverTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var ra retrieverArgs
	if err := json.Unmarshal(args, &ra); err != nil {
		return errResult(&InputError{Tool: t.Name(), Field: "arguments", Reason: "cannot be parsed: " + err.Error()}), nil
	}
	if ra.Query == nil || strings.TrimSpace(*ra.Query) == "" {
		return errResult(&InputError{Tool: t.Name(), Field: "query", Reason: "is required"}), nil
	}

	passages, err := t.index.Search(ctx, *ra.Query)
	if err != nil {
		return errResult(err), nil
	}

	log.Debug("retriever tool: %q -> %d bytes", *ra.Query, len(passages))
	return ToolResult{Content: passages}, nil
}
