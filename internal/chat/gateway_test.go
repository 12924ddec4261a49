package chat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educhat-ai/educhat/internal/chat"
	"github.com/educhat-ai/educhat/internal/domain"
)

func chatRequest() domain.ChatRequest {
	return domain.ChatRequest{
		Messages: []domain.Message{{ID: "m1", Role: domain.RoleUser, Content: "hi"}},
	}
}

func TestClient_Chat_Streamed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req domain.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hi", req.LastMessage().Content)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("0:\"Hello\"\n0:\" world\"\ne:{\"finishReason\":\"stop\"}\nd:{\"finishReason\":\"stop\"}\n"))
	}))
	defer srv.Close()

	client := chat.NewClient(srv.URL)

	var received strings.Builder
	completion, err := client.Chat(context.Background(), chatRequest(), func(chunk []byte) {
		received.Write(chunk)
	})
	require.NoError(t, err)

	assert.True(t, completion.Streamed)
	assert.Contains(t, received.String(), "0:\"Hello\"")
	assert.Contains(t, received.String(), "e:{\"finishReason\":\"stop\"}")
}

func TestClient_Chat_JSONCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.ChatCompletion{Content: "It is a diagram.", Finished: true})
	}))
	defer srv.Close()

	client := chat.NewClient(srv.URL)

	completion, err := client.Chat(context.Background(), chatRequest(), func([]byte) {
		t.Error("JSON completions must not invoke the chunk callback")
	})
	require.NoError(t, err)

	assert.False(t, completion.Streamed)
	assert.Equal(t, "It is a diagram.", completion.Content)
	assert.True(t, completion.Finished)
}

func TestClient_Chat_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "Rate limit reached. Please try again in a moment."})
	}))
	defer srv.Close()

	client := chat.NewClient(srv.URL)

	_, err := client.Chat(context.Background(), chatRequest(), func([]byte) {})
	require.Error(t, err)

	var gwErr *chat.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusTooManyRequests, gwErr.Status)
	assert.Equal(t, "Rate limit reached. Please try again in a moment.", gwErr.Message)
}

func TestClient_Chat_MalformedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream blew up"))
	}))
	defer srv.Close()

	client := chat.NewClient(srv.URL)

	_, err := client.Chat(context.Background(), chatRequest(), func([]byte) {})

	var gwErr *chat.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusInternalServerError, gwErr.Status)
}
