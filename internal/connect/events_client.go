package connect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/joshua-takyi/eventmap/internal/models"
)

// ErrRemoteFetch is the single condition every events API failure collapses into.
var ErrRemoteFetch = errors.New("remote fetch failed")

const eventsPath = "/events/"

type EventsClient struct {
	client *resty.Client
}

// NewEventsClient builds a client for the events API. The key is sent on
// every request in the X-API-Key header.
func NewEventsClient(baseURL, apiKey string, timeout time.Duration) *EventsClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("X-API-Key", apiKey).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "eventmap/1.0").
		SetTimeout(timeout)

	return &EventsClient{client: c}
}

// FetchEvents issues one GET and returns the decoded events. Any failure,
// including a 2xx with an undecodable body, is reported as ErrRemoteFetch and
// no records are returned with it.
func (ec *EventsClient) FetchEvents(ctx context.Context, params url.Values) ([]models.EventRecord, error) {
	resp, err := ec.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(eventsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRemoteFetch, resp.StatusCode(), truncateBody(resp.String()))
	}

	var body models.EventsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrRemoteFetch, err)
	}

	if body.Events == nil {
		return []models.EventRecord{}, nil
	}
	return body.Events, nil
}

func truncateBody(s string) string {
	if len(s) <= 200 {
		return s
	}
	return s[:200] + "..."
}

