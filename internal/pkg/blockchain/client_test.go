package blockchain_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wastewise/wastewise-api/internal/pkg/blockchain"
)

func TestMint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nft/mint" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_id": 42, "tx_hash": "0xabc", "block_number": 1001}`))
	}))
	defer srv.Close()

	client := blockchain.NewClient(srv.URL, "secret", 5*time.Second)
	res, err := client.Mint(context.Background(), "0x1111111111111111111111111111111111111111", "s3://metadata/x.json", "Golden Bin", "recyclable", 3)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if res.TokenID != 42 || res.TxHash != "0xabc" || res.BlockNumber != 1001 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestMint_MissingTokenID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tx_hash": "0xabc", "block_number": 1001}`))
	}))
	defer srv.Close()

	client := blockchain.NewClient(srv.URL, "", 5*time.Second)
	_, err := client.Mint(context.Background(), "0x1111111111111111111111111111111111111111", "uri", "n", "other", 1)
	if !errors.Is(err, blockchain.ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
}

func TestTransfer_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"reason": "execution reverted: token does not exist"}`))
	}))
	defer srv.Close()

	client := blockchain.NewClient(srv.URL, "", 5*time.Second)
	_, err := client.Transfer(context.Background(), "0x2222222222222222222222222222222222222222", 999)
	if !errors.Is(err, blockchain.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestTransfer_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := blockchain.NewClient(srv.URL, "", 2*time.Second)
	_, err := client.Transfer(context.Background(), "0x2222222222222222222222222222222222222222", 1)
	if !errors.Is(err, blockchain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestTransfer_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := blockchain.NewClient(srv.URL, "", 2*time.Second)
	_, err := client.Transfer(context.Background(), "0x2222222222222222222222222222222222222222", 1)
	if !errors.Is(err, blockchain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
