// Package x implements the broadcast interfaces against the X API v2.
package x

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"resty.dev/v3"

	"github.com/ShinnosukeUesaka/XLearn/internal/broadcast"
	"github.com/ShinnosukeUesaka/XLearn/internal/identity"
)

// Publisher posts tweets through the X API v2. The credential is supplied
// per call because one process serves many owners.
type Publisher struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

// NewPublisher creates a Publisher against the given API base URL.
// Rate-limited posts are retried with backoff up to maxRetryAttempts times
// before the error is surfaced.
func NewPublisher(baseURL string, maxRetryAttempts uint) *Publisher {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")

	return &Publisher{
		httpClient:       client,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (p Publisher) Close() error {
	return p.httpClient.Close()
}

type createPostRequest struct {
	Text  string        `json:"text"`
	Reply *replyContext `json:"reply,omitempty"`
}

type replyContext struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type createPostResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// Publish implements the broadcast.Publisher interface.
func (p *Publisher) Publish(ctx context.Context, cred identity.Credential, text string, inReplyTo string) (string, error) {
	var handle string
	if err := retry.Do(
		func() error {
			id, err := p.createPost(ctx, cred, text, inReplyTo)
			if err != nil {
				// Only rate limits are worth retrying here; auth and
				// validation failures will not heal on their own.
				if !retryable(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			handle = id
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(p.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return "", err
	}
	return handle, nil
}

func (p *Publisher) createPost(ctx context.Context, cred identity.Credential, text string, inReplyTo string) (string, error) {
	requestBody := createPostRequest{Text: text}
	if inReplyTo != "" {
		requestBody.Reply = &replyContext{InReplyToTweetID: inReplyTo}
	}

	response, err := p.httpClient.R().
		SetContext(ctx).
		SetAuthToken(cred.AccessToken).
		SetBody(requestBody).
		SetResult(&createPostResponse{}).
		Post("/2/tweets")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		switch response.StatusCode() {
		case 401, 403:
			return "", fmt.Errorf("%w: response error %d: %s", broadcast.ErrAuth, response.StatusCode(), response.String())
		case 429:
			return "", fmt.Errorf("%w: response error %d: %s", broadcast.ErrRateLimited, response.StatusCode(), response.String())
		default:
			return "", fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
		}
	}

	responseBody := response.Result().(*createPostResponse)
	if responseBody == nil || responseBody.Data.ID == "" {
		return "", fmt.Errorf("empty post id in response: %s", response.String())
	}
	return responseBody.Data.ID, nil
}
