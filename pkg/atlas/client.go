// Package atlas fetches measurement results from the RIPE Atlas API.
package atlas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the root of the v1 API.
	DefaultBaseURL = "https://atlas.ripe.net/api/v1"

	defaultTimeout = 30 * time.Second
)

// Record is one probe's entry in a latest results response.
type Record []json.RawMessage

// ProbeID returns the probe identifier at index 1.
func (r Record) ProbeID() (string, error) {
	if len(r) < 2 {
		return "", errors.New("record has no probe id")
	}
	raw := bytes.TrimSpace(r[1])
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decoding probe id: %w", err)
	}
	return n.String(), nil
}

// Result returns the result payload at index 5, or nil when the probe has no data.
func (r Record) Result() json.RawMessage {
	if len(r) < 6 {
		return nil
	}
	raw := bytes.TrimSpace(r[5])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return raw
}

//go:generate mockgen -destination=mock_fetcher.go -package=atlas . Fetcher

// Fetcher retrieves the latest results of a measurement.
type Fetcher interface {
	Latest(ctx context.Context, measurementID string) ([]Record, error)
}

// NewClient creates a client for the RIPE Atlas API.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ClientOption describe optional arguments for the client.
type ClientOption func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client talks to the RIPE Atlas API.
type Client struct {
	baseURL string
	timeout time.Duration
}

var _ Fetcher = (*Client)(nil)

// Latest fetches the most recent result from every probe participating in measurementID.
func (c *Client) Latest(ctx context.Context, measurementID string) ([]Record, error) {
	if measurementID == "" {
		return nil, errors.New("measurement id is required")
	}
	u := fmt.Sprintf("%s/measurement/%s/latest/", c.baseURL, url.PathEscape(measurementID))
	var records []Record
	if err := c.get(ctx, u, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, u string, v interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	hc := http.Client{}
	defer hc.CloseIdleConnections()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}
	defer resp.Body.Close()
	log.Ctx(ctx).Debug().
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("fetched measurement")
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return &StatusError{StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// StatusError is returned when the API answers with an unexpected status code.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}
