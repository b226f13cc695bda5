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

func TestChat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Move it left"}}]}`))
	}))
	defer server.Close()

	c, err := NewClient(Options{URL: server.URL, Model: "test-model", APIKey: "secret-token", MaxTokens: 512})
	require.NoError(t, err)

	reply, ok, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Move it left", reply)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	assert.False(t, got.Stream)
	assert.Equal(t, []Message{{Role: "user", Content: "hi"}}, got.Messages)
}

func TestChat_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c, err := NewClient(Options{URL: server.URL, APIKey: "k"})
	require.NoError(t, err)
	reply, ok, err := c.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, reply)
}

func TestChat_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, err := NewClient(Options{URL: server.URL, APIKey: "k"})
	require.NoError(t, err)
	_, _, err = c.Chat(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Options{URL: "http://localhost"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
