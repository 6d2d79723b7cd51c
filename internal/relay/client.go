// Package relay forwards live-arrival lookups to the Wiener Linien realtime
// monitor API for browser clients.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Traffic info categories requested with every monitor lookup
var trafficInfo = []string{"stoerungkurz", "stoerunglang"}

// maxBodyBytes bounds the upstream body read into memory
const maxBodyBytes = 8 << 20

// RemoteFetchError reports a failed upstream call: a non-success status,
// a transport failure or a timeout.
type RemoteFetchError struct {
	RBL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *RemoteFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API HTTP Error: %d", e.StatusCode)
	}
	return fmt.Sprintf("API URL Error: %s", reason(e.Err))
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// RemoteFormatError reports an upstream body that is not valid JSON
type RemoteFormatError struct {
	RBL string
	Err error
}

func (e *RemoteFormatError) Error() string {
	return "Invalid JSON response"
}

func (e *RemoteFormatError) Unwrap() error {
	return e.Err
}

// reason strips the request method and URL that net/http prefixes to
// transport errors.
func reason(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	if err == nil {
		return "unknown"
	}
	return err.Error()
}

// Client calls the realtime monitor endpoint
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the monitor endpoint at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Monitor fetches departures for one boarding point and returns the upstream
// body unchanged once it has been checked to be JSON.
func (c *Client) Monitor(ctx context.Context, rbl string) (json.RawMessage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, &RemoteFetchError{RBL: rbl, Err: err}
	}
	q := u.Query()
	q.Set("rbl", rbl)
	for _, info := range trafficInfo {
		q.Add("activateTrafficInfo", info)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &RemoteFetchError{RBL: rbl, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &RemoteFetchError{RBL: rbl, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &RemoteFetchError{
			RBL:        rbl,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("upstream returned %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &RemoteFetchError{RBL: rbl, Err: err}
	}
	if !json.Valid(body) {
		return nil, &RemoteFormatError{RBL: rbl, Err: errors.New("upstream body is not valid JSON")}
	}

	return json.RawMessage(body), nil
}
