package x

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShinnosukeUesaka/XLearn/internal/broadcast"
	"github.com/ShinnosukeUesaka/XLearn/internal/identity"
)

func TestPublisher_Publish(t *testing.T) {
	cred := identity.Credential{OwnerID: "owner-1", AccessToken: "token-123"}

	tests := []struct {
		name              string
		text              string
		inReplyTo         string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantHandle string
		wantErr    error
	}{
		{
			name: "publishes a post",
			text: "What is 1+1?",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/2/tweets", r.URL.Path)
				assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

				var reqBody createPostRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "What is 1+1?", reqBody.Text)
				assert.Nil(t, reqBody.Reply)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]string{"id": "111", "text": "What is 1+1?"},
				})
			},
			wantHandle: "111",
		},
		{
			name:      "publishes a reply",
			text:      "Correct, nice work!",
			inReplyTo: "111",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var reqBody createPostRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				require.NotNil(t, reqBody.Reply)
				assert.Equal(t, "111", reqBody.Reply.InReplyToTweetID)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]string{"id": "222", "text": "Correct, nice work!"},
				})
			},
			wantHandle: "222",
		},
		{
			name: "expired credential",
			text: "text",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr: broadcast.ErrAuth,
		},
		{
			name: "rate limited on every attempt",
			text: "text",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr: broadcast.ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			publisher := NewPublisher(server.URL, 1)
			defer publisher.Close()

			handle, err := publisher.Publish(context.Background(), cred, tt.text, tt.inReplyTo)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHandle, handle)
		})
	}
}

func TestPublisher_Publish_RetriesRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "333"}})
	}))
	defer server.Close()

	publisher := NewPublisher(server.URL, 2)
	defer publisher.Close()

	handle, err := publisher.Publish(context.Background(), identity.Credential{AccessToken: "t"}, "text", "")
	require.NoError(t, err)
	assert.Equal(t, "333", handle)
	assert.Equal(t, 2, attempts)
}

func TestPublisher_Publish_DoesNotRetryAuthFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	publisher := NewPublisher(server.URL, 3)
	defer publisher.Close()

	_, err := publisher.Publish(context.Background(), identity.Credential{AccessToken: "t"}, "text", "")
	assert.ErrorIs(t, err, broadcast.ErrAuth)
	assert.Equal(t, 1, attempts)
}
