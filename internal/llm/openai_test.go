package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(nil, "  ")
	assert.Error(t, err)
}

func TestNewClient_OpenAIProvider(t *testing.T) {
	client, err := NewClient(context.Background(), DefaultOpenAIConfig(), "sk-test")
	require.NoError(t, err)
	defer client.Close()

	_, ok := client.(*OpenAIClient)
	assert.True(t, ok)
	assert.Equal(t, "gpt-4.1", client.GetModel(TierStandard))
}

func TestOpenAIClient_GenerateContent(t *testing.T) {
	var got responsesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"output": [
				{"type": "reasoning", "content": []},
				{"type": "message", "content": [
					{"type": "output_text", "text": "{\"industry\":"},
					{"type": "output_text", "text": "\"IT\"}"}
				]}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(DefaultOpenAIConfig(), "sk-test")
	require.NoError(t, err)
	client.WithEndpoint(srv.URL)

	text, err := client.GenerateContent(context.Background(), "extract please", TierStandard)
	require.NoError(t, err)

	assert.Equal(t, `{"industry":"IT"}`, text)
	assert.Equal(t, "gpt-4.1", got.Model)
	assert.Equal(t, "extract please", got.Input)
}

func TestOpenAIClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(nil, "sk-test")
	require.NoError(t, err)
	client.WithEndpoint(srv.URL)

	_, err = client.GenerateContent(context.Background(), "p", TierStandard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestOpenAIClient_EmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"output": []}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(nil, "sk-test")
	require.NoError(t, err)
	client.WithEndpoint(srv.URL)

	text, err := client.GenerateContent(context.Background(), "p", TierStandard)
	require.NoError(t, err)
	assert.Empty(t, text)
}
