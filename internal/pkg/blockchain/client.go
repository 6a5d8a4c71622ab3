// Package blockchain is the HTTP client for the mint/transfer relayer that
// executes on-chain operations on the project's NFT contract. The relayer
// owns token identity; this service only records the references it returns.
//
// Calls carry no idempotency key, so a blind retry of a failed mint can
// double-mint. Callers must not retry automatically.
package blockchain

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

const defaultTimeout = 60 * time.Second

var (
	// ErrUnavailable means the relayer could not be reached in time.
	ErrUnavailable = errors.New("relayer unavailable")
	// ErrRejected means the relayer executed the call and the chain
	// reverted it (insufficient gas, bad token id, paused contract...).
	ErrRejected = errors.New("relayer rejected transaction")
	// ErrBadResponse means the relayer answered with an unusable shape.
	ErrBadResponse = errors.New("relayer response failed schema validation")
)

// MintResult references a freshly minted token.
type MintResult struct {
	TokenID     int64  `json:"token_id"`
	TxHash      string `json:"tx_hash"`
	BlockNumber int64  `json:"block_number"`
}

// TransferResult references a completed transfer.
type TransferResult struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber int64  `json:"block_number"`
}

// Minter mints pool items to the treasury wallet.
type Minter interface {
	Mint(ctx context.Context, to, metadataURI, name, category string, rarity int) (*MintResult, error)
}

// Transferrer moves an already-minted token to a user wallet.
type Transferrer interface {
	Transfer(ctx context.Context, to string, tokenID int64) (*TransferResult, error)
}

// Client implements Minter and Transferrer over the relayer HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a relayer client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
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
		token:   token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Mint mints a token carrying metadataURI to the given wallet.
func (c *Client) Mint(ctx context.Context, to, metadataURI, name, category string, rarity int) (*MintResult, error) {
	payload := map[string]interface{}{
		"to":           to,
		"metadata_uri": metadataURI,
		"name":         name,
		"category":     category,
		"rarity":       rarity,
	}

	var raw struct {
		TokenID     *int64 `json:"token_id"`
		TxHash      string `json:"tx_hash"`
		BlockNumber int64  `json:"block_number"`
	}
	if err := c.post(ctx, "/nft/mint", payload, &raw); err != nil {
		return nil, err
	}
	if raw.TokenID == nil || raw.TxHash == "" {
		return nil, fmt.Errorf("%w: missing token_id or tx_hash", ErrBadResponse)
	}

	return &MintResult{
		TokenID:     *raw.TokenID,
		TxHash:      raw.TxHash,
		BlockNumber: raw.BlockNumber,
	}, nil
}

// Transfer moves tokenID from the treasury wallet to the given wallet.
func (c *Client) Transfer(ctx context.Context, to string, tokenID int64) (*TransferResult, error) {
	payload := map[string]interface{}{
		"to":       to,
		"token_id": tokenID,
	}

	var raw struct {
		TxHash      string `json:"tx_hash"`
		BlockNumber int64  `json:"block_number"`
	}
	if err := c.post(ctx, "/nft/transfer", payload, &raw); err != nil {
		return nil, err
	}
	if raw.TxHash == "" {
		return nil, fmt.Errorf("%w: missing tx_hash", ErrBadResponse)
	}

	return &TransferResult{
		TxHash:      raw.TxHash,
		BlockNumber: raw.BlockNumber,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	if strings.TrimSpace(c.baseURL) == "" {
		return fmt.Errorf("relayer config error: base_url is empty")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("relayer request error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("relayer request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeoutError(ctx, err) || isNetworkError(err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("relayer request error: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrRejected, readReason(resp.Body))
	default:
		return fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, readReason(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// readReason pulls the relayer's failure reason out of an error body,
// falling back to the raw body when it is not the documented shape.
func readReason(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 2048))
	if err != nil {
		return "<unreadable body>"
	}

	var parsed struct {
		Reason string `json:"reason"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Reason != "" {
			return parsed.Reason
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return string(body)
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
