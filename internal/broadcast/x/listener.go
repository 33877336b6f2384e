package x

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	resty "github.com/go-resty/resty/v2"

	"github.com/ShinnosukeUesaka/XLearn/internal/broadcast"
)

// Listener watches for replies to a published post by polling the recent
// search endpoint with a conversation_id query. It is single-shot: the first
// reply in the conversation wins and later replies are never read.
type Listener struct {
	httpClient   *resty.Client
	pollInterval time.Duration
}

// NewListener creates a Listener. The bearer token is the app-level token;
// reply search is not bound to a specific owner.
func NewListener(baseURL, bearerToken string, pollInterval time.Duration) *Listener {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetAuthToken(bearerToken)

	return &Listener{
		httpClient:   client,
		pollInterval: pollInterval,
	}
}

type searchResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NewestID    string `json:"newest_id"`
	} `json:"meta"`
}

// AwaitReply implements the broadcast.ReplyListener interface. It polls until
// the deadline and returns the first reply in the post's conversation. A
// failed poll aborts the whole listen attempt; the caller treats that like a
// timeout but it is surfaced as a listener error.
func (l *Listener) AwaitReply(ctx context.Context, handle string, deadline time.Time) (string, bool, error) {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	timeout := time.NewTimer(time.Until(deadline))
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", false, fmt.Errorf("%w: %w", broadcast.ErrListener, ctx.Err())
		case <-timeout.C:
			slog.Default().Debug("reply window expired", "handle", handle)
			return "", false, nil
		case <-ticker.C:
			reply, found, err := l.pollOnce(ctx, handle)
			if err != nil {
				return "", false, fmt.Errorf("%w: %w", broadcast.ErrListener, err)
			}
			if found {
				return reply, true, nil
			}
		}
	}
}

func (l *Listener) pollOnce(ctx context.Context, handle string) (string, bool, error) {
	response, err := l.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":    fmt.Sprintf("conversation_id:%s", handle),
			"since_id": handle,
		}).
		SetResult(&searchResponse{}).
		Get("/2/tweets/search/recent")
	if err != nil {
		return "", false, fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return "", false, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*searchResponse)
	if responseBody == nil {
		return "", false, fmt.Errorf("empty search response: %s", response.String())
	}
	for _, tweet := range responseBody.Data {
		// conversation_id search includes the root post itself.
		if tweet.ID == handle {
			continue
		}
		return tweet.Text, true, nil
	}
	return "", false, nil
}
