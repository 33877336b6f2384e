// Package openai grades answers through the OpenAI chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"resty.dev/v3"

	"github.com/ShinnosukeUesaka/XLearn/internal/inference"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client.
func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

const gradeSystemPrompt = `You are grading a learner's answer to a study question.
Give a friendly, encouraging and concise feedback to the user's answer in under two sentences.
Your response must be JSON of the following format.
{
    "correct": bool,
    "feedback": str
}
Start your answer immediately from {, do not write ` + "```json" + ` or anything else.`

// Grade implements the inference.Grader interface.
func (client *Client) Grade(ctx context.Context, params inference.GradeRequest) (inference.GradeResult, error) {
	var result inference.GradeResult
	if err := retry.Do(
		func() error {
			response, err := client.grade(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return inference.GradeResult{}, err
	}
	return result, nil
}

func (client *Client) grade(ctx context.Context, params inference.GradeRequest) (inference.GradeResult, error) {
	userMessage := fmt.Sprintf(`The question is: %s
The correct answer is: %s
The user's answer was: %s`, params.Question, params.ExpectedAnswer, params.SubmittedAnswer)

	requestBody := ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0,
		Messages: []Message{
			{Role: RoleSystem, Content: gradeSystemPrompt},
			{Role: RoleUser, Content: userMessage},
		},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.GradeResult{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.GradeResult{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.GradeResult{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return inference.GradeResult{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai grade response",
		"request", requestBody,
		"response", responseBody,
	)

	var decoded inference.GradeResult
	if err := json.NewDecoder(strings.NewReader(content)).Decode(&decoded); err != nil {
		slog.Default().Error("Failed to parse OpenAI grading response as JSON",
			"content", content,
			"error", err)
		return inference.GradeResult{}, fmt.Errorf("%w: json.Unmarshal(%s) > %w", inference.ErrMalformedVerdict, content, err)
	}
	return decoded, nil
}
