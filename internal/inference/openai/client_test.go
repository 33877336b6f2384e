package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShinnosukeUesaka/XLearn/internal/inference"
)

func chatResponse(content string) ChatCompletionResponse {
	return ChatCompletionResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: 1677652288,
		Model:   "gpt-4o-mini",
		Choices: []Choice{
			{
				Index:        0,
				Message:      ChoiceMessage{Role: RoleAssistant, Content: content},
				FinishReason: "stop",
			},
		},
		Usage: Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
	}
}

func TestClient_Grade(t *testing.T) {
	request := inference.GradeRequest{
		Question:        "What is 1+1?",
		ExpectedAnswer:  "2",
		SubmittedAnswer: "two",
	}

	tests := []struct {
		name              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		want            inference.GradeResult
		wantErr         error
		wantErrorString string
	}{
		{
			name: "correct answer",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "gpt-4o-mini", reqBody.Model)
				require.Len(t, reqBody.Messages, 2)
				assert.Equal(t, RoleSystem, reqBody.Messages[0].Role)
				assert.Contains(t, reqBody.Messages[1].Content, "What is 1+1?")
				assert.Contains(t, reqBody.Messages[1].Content, "The user's answer was: two")

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(chatResponse(`{"correct": true, "feedback": "Nice, that is exactly right!"}`))
			},
			want: inference.GradeResult{Correct: true, Feedback: "Nice, that is exactly right!"},
		},
		{
			name: "incorrect answer",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(chatResponse(`{"correct": false, "feedback": "Close, but the answer is 2."}`))
			},
			want: inference.GradeResult{Correct: false, Feedback: "Close, but the answer is 2."},
		},
		{
			name: "malformed verdict is not retried",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(chatResponse("I think the student did well overall."))
			},
			wantErr: inference.ErrMalformedVerdict,
		},
		{
			name: "empty choices",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(ChatCompletionResponse{})
			},
			wantErrorString: "empty response body or choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewClient("fake-key", "gpt-4o-mini", 0)
			client.httpClient.SetBaseURL(server.URL)
			defer client.Close()

			got, err := client.Grade(context.Background(), request)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.wantErrorString != "" {
				assert.ErrorContains(t, err, tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Grade_RetriesServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{"correct": true, "feedback": "Great job!"}`))
	}))
	defer server.Close()

	client := NewClient("fake-key", "gpt-4o-mini", 2)
	client.httpClient.SetBaseURL(server.URL)
	defer client.Close()

	got, err := client.Grade(context.Background(), inference.GradeRequest{
		Question: "Q", ExpectedAnswer: "A", SubmittedAnswer: "A",
	})
	require.NoError(t, err)
	assert.True(t, got.Correct)
	assert.Equal(t, 2, attempts)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "malformed verdict", err: inference.ErrMalformedVerdict, want: false},
		{name: "server error", err: assert.AnError, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
