// Package random provides randomness sources for battle resolution: a
// remote client backed by random.org and a local crypto/rand source.
package random

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultURL is the random.org endpoint returning a single two-decimal
// fraction in plain text.
const DefaultURL = "https://www.random.org/decimal-fractions/?num=1&dec=2&col=1&format=plain&rnd=new"

// DefaultTimeout bounds each request to the remote service.
const DefaultTimeout = 5 * time.Second

// ErrUnavailable is returned when the remote service cannot be reached.
var ErrUnavailable = errors.New("random service unavailable")

// ErrTimeout is returned when a request to the remote service times out.
var ErrTimeout = errors.New("random service timed out")

// ErrBadResponse is returned when the remote service responds with
// something that is not a decimal number.
var ErrBadResponse = errors.New("invalid response from random service")

// Client draws random values from a remote randomness service.
// Each Draw is a single blocking HTTP request with no retries; the caller
// owns any retry or cancellation policy beyond the configured timeout.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoint URL.
//
// Precondition: url must be non-empty; timeout must be > 0.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Draw fetches a fresh value in [0, 1) from the remote service.
//
// Postcondition: Returns a value in [0, 1), or an error matching exactly
// one of ErrTimeout, ErrUnavailable, or ErrBadResponse via errors.Is.
func (c *Client) Draw(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("building random request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return 0, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}

	text := strings.TrimSpace(string(body))
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadResponse, text)
	}
	if value < 0 || value >= 1 {
		return 0, fmt.Errorf("%w: %q out of range [0,1)", ErrBadResponse, text)
	}
	return value, nil
}

// isTimeout reports whether err is a timeout rather than a plain
// connection failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
