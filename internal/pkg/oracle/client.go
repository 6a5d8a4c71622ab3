// Package oracle is the HTTP client for the AI waste-classification agent.
// The agent grades a submitted image against the category the user picked
// and returns a score. One call per classification; retry policy belongs
// to the caller.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrBadResponse means the agent answered with a shape we refuse to
	// guess our way through.
	ErrBadResponse = errors.New("oracle response failed schema validation")
	// ErrUnavailable means the agent could not be reached in time.
	ErrUnavailable = errors.New("oracle unavailable")
)

// Request describes one image to grade.
type Request struct {
	ImageURL         string `json:"image_url"`
	ExpectedCategory string `json:"expected_category"`
	UserLocation     string `json:"user_location,omitempty"`
}

// Result is the agent's verdict for one image.
type Result struct {
	DetectedCategory string   `json:"detected_category"`
	Confidence       float64  `json:"confidence"`
	IsMatch          bool     `json:"is_match"`
	Score            int64    `json:"score"`
	Analysis         string   `json:"analysis"`
	Suggestions      []string `json:"suggestions"`
	ProcessingMS     int64    `json:"processing_time_ms"`
}

// Scorer is the interface the classification domain consumes.
type Scorer interface {
	Score(ctx context.Context, req Request) (*Result, error)
}

// Client is an HTTP Scorer implementation.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a scoring oracle client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Score submits one image for grading.
func (c *Client) Score(ctx context.Context, oreq Request) (*Result, error) {
	if strings.TrimSpace(c.baseURL) == "" {
		return nil, fmt.Errorf("oracle config error: base_url is empty")
	}

	payload, err := json.Marshal(oreq)
	if err != nil {
		return nil, fmt.Errorf("oracle request error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("oracle request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeoutError(ctx, err) || isNetworkError(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("oracle request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, string(body))
	}

	return decodeResult(resp.Body)
}

// decodeResult enforces the response schema. Unknown fields are tolerated,
// missing or out-of-range required fields are not.
func decodeResult(r io.Reader) (*Result, error) {
	var raw struct {
		DetectedCategory *string  `json:"detected_category"`
		Confidence       *float64 `json:"confidence"`
		IsMatch          *bool    `json:"is_match"`
		Score            *int64   `json:"score"`
		Analysis         string   `json:"analysis"`
		Suggestions      []string `json:"suggestions"`
		ProcessingMS     int64    `json:"processing_time_ms"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	switch {
	case raw.DetectedCategory == nil || *raw.DetectedCategory == "":
		return nil, fmt.Errorf("%w: missing detected_category", ErrBadResponse)
	case raw.Confidence == nil || *raw.Confidence < 0 || *raw.Confidence > 1:
		return nil, fmt.Errorf("%w: confidence out of range", ErrBadResponse)
	case raw.IsMatch == nil:
		return nil, fmt.Errorf("%w: missing is_match", ErrBadResponse)
	case raw.Score == nil || *raw.Score < 0:
		return nil, fmt.Errorf("%w: missing or negative score", ErrBadResponse)
	}

	return &Result{
		DetectedCategory: *raw.DetectedCategory,
		Confidence:       *raw.Confidence,
		IsMatch:          *raw.IsMatch,
		Score:            *raw.Score,
		Analysis:         raw.Analysis,
		Suggestions:      raw.Suggestions,
		ProcessingMS:     raw.ProcessingMS,
	}, nil
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
