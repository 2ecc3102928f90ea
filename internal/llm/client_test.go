package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"anonchat/backend/internal/llm"

	"github.com/stretchr/testify/assert"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Len(t, req.Messages, 2)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"pong"}}]}`))
	}))
	defer srv.Close()

	c := llm.New(srv.URL, "key")
	out, err := c.Chat(context.Background(), "test-model", []llm.Message{
		llm.TextMessage("system", "be brief"),
		llm.TextMessage("user", "ping"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "pong", out)
}

func TestChat_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c := llm.New(srv.URL, "key")
	_, err := c.Chat(context.Background(), "test-model", []llm.Message{
		llm.TextMessage("user", "ping"),
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestChat_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := llm.New(srv.URL, "")
	_, err := c.Chat(context.Background(), "test-model", nil)

	assert.Error(t, err)
}
