package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) *Config {
	return &Config{
		APIKey:      "test-key",
		APIURL:      url,
		Model:       "test-model",
		EmbedModel:  "test-embed",
		MaxTokens:   256,
		Temperature: 0.2,
		Timeout:     10,
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := NewClient(&Config{APIURL: "https://example.com", Model: "m", MaxTokens: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestChatCompletion_PrependsSystemPrompt(t *testing.T) {
	t.Parallel()

	var captured ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hi"}}]
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	opts := NewChatCompletionOptions().WithSystemPrompt("be terse")
	resp, err := client.ChatCompletion(context.Background(),
		[]Message{{Role: "user", Content: "hello"}}, opts)
	require.NoError(t, err)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "be terse", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "test-model", captured.Model)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hi", resp.Choices[0].Message.Content)
}

func TestChatCompletionWithTools_SendsDefinitions(t *testing.T) {
	t.Parallel()

	var captured ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	defs := []ToolDefinition{{
		Type: "function",
		Function: Function{
			Name:        "car_dataset_query",
			Description: "query the listings",
			Parameters:  json.RawMessage(`{"type":"object"}`),
		},
	}}
	_, err = client.ChatCompletionWithTools(context.Background(),
		[]Message{{Role: "user", Content: "count cars"}}, defs, nil)
	require.NoError(t, err)

	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "car_dataset_query", captured.Tools[0].Function.Name)
}

func TestChatCompletion_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(),
		[]Message{{Role: "user", Content: "hello"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestChatCompletion_HTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(),
		[]Message{{Role: "user", Content: "hello"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestEmbeddings(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		var req EmbeddingRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "test-embed", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data":[
				{"index":0,"embedding":[0.1,0.2]},
				{"index":1,"embedding":[0.3,0.4]}
			]
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	vecs, err := client.Embeddings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float64{0.1, 0.2}, vecs[0])
}

func TestEmbeddings_CountMismatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1]}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Embeddings(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 inputs")
}
