package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/freelance/pkg/llm"
)

func TestAskSendsOptions(t *testing.T) {
	var got chatCompletionsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "freelance", r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Buen encaje."}}]}`))
	}))
	defer srv.Close()

	c := New("key", srv.URL, "", "", "freelance", "")
	out, err := c.Ask(context.Background(), "sys", "user", llm.WithTemperature(0.7), llm.WithMaxTokens(150))
	require.NoError(t, err)
	assert.Equal(t, "Buen encaje.", out)

	assert.Equal(t, defaultChatModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.7, *got.Temperature, 1e-6)
	assert.Equal(t, 150, got.MaxTokens)
}

func TestAskNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := New("key", srv.URL, "m", "", "", "").Ask(context.Background(), "s", "u")
	require.ErrorIs(t, err, llm.ErrProvider)
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "custom-embed", req.Model)
		assert.Equal(t, "go developer", req.Input)
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	vec, err := New("key", srv.URL, "", "custom-embed", "", "").Embed(context.Background(), "go developer")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	_, err := New("key", srv.URL, "", "", "", "").Embed(context.Background(), "x")
	require.ErrorIs(t, err, llm.ErrProvider)
	assert.Contains(t, err.Error(), "429")

	_, err = New("", srv.URL, "", "", "", "").Embed(context.Background(), "x")
	require.ErrorIs(t, err, llm.ErrProvider)
}
