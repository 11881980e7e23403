package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mveldt/craftplan/pkg/errors"
)

// Client fetches fresh market boards from a board-aggregator HTTP API.
//
// The API is expected to serve GET {base}/{region}/{item id} with a JSON
// body listing every world's current listings for the item. Transient
// failures (network errors, 429, 5xx) are retried with exponential backoff;
// everything else fails fast.
type Client struct {
	base    string
	http    *http.Client
	retries int
	delay   time.Duration
}

// NewClient creates a Client for the aggregator at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		retries: 3,
		delay:   time.Second,
	}
}

// boardResponse is the aggregator's wire format for one item.
type boardResponse struct {
	ItemID   int  `json:"itemID"`
	Listings []struct {
		PricePerUnit int64  `json:"pricePerUnit"`
		Quantity     int64  `json:"quantity"`
		HQ           bool   `json:"hq"`
		World        string `json:"worldName"`
		Retainer     string `json:"retainerName"`
	} `json:"listings"`
}

// FetchBoard retrieves the current listings for one item in a region.
// A 404 from the aggregator means the item has no market data and maps to
// ErrCodeNoMarketData.
func (c *Client) FetchBoard(ctx context.Context, itemID int, region string) (*Board, error) {
	if err := errors.ValidateRegion(region); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/%d", c.base, region, itemID)

	var resp boardResponse
	err := retry(ctx, c.retries, c.delay, func() error {
		return c.get(ctx, url, &resp)
	})
	if err != nil {
		return nil, err
	}

	board := &Board{
		ItemID:    itemID,
		Region:    region,
		ByWorld:   make(map[string][]Listing),
		FetchedAt: time.Now().UTC(),
	}
	for _, l := range resp.Listings {
		if l.World == "" || l.Quantity <= 0 {
			continue
		}
		board.ByWorld[l.World] = append(board.ByWorld[l.World], Listing{
			PricePerUnit: l.PricePerUnit,
			Quantity:     l.Quantity,
			HQ:           l.HQ,
			World:        l.World,
			Retainer:     l.Retainer,
		})
	}
	return board, nil
}

func (c *Client) get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "building request for %s", url)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &transientError{errors.Wrap(errors.ErrCodeStoreUnavailable, err, "fetching %s", url)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNoMarketData, "no market data at %s", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &transientError{errors.New(errors.ErrCodeStoreUnavailable, "aggregator returned status %d for %s", resp.StatusCode, url)}
	default:
		return errors.New(errors.ErrCodeInternal, "aggregator returned status %d for %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decoding response from %s", url)
	}
	return nil
}

// transientError marks a failure worth retrying.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// retry runs fn up to attempts times, doubling the delay after each failed
// try. Only transientError failures are retried; anything else returns
// immediately. Cancellation wins over the backoff sleep.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if _, ok := err.(*transientError); !ok {
			return err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
