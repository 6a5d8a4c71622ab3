package oracle_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wastewise/wastewise-api/internal/pkg/oracle"
)

func TestScoreDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"detected_category": "recyclable",
			"confidence": 0.93,
			"is_match": true,
			"score": 15,
			"analysis": "clear plastic bottle",
			"suggestions": ["rinse before recycling"],
			"processing_time_ms": 820
		}`))
	}))
	defer srv.Close()

	// the client is consumed through the Scorer interface
	var scorer oracle.Scorer = oracle.NewClient(srv.URL, 5*time.Second)
	res, err := scorer.Score(context.Background(), oracle.Request{
		ImageURL:         "https://img.example/bottle.jpg",
		ExpectedCategory: "recyclable",
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if res.DetectedCategory != "recyclable" || !res.IsMatch || res.Score != 15 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(res.Suggestions))
	}
}

func TestScoreRejectsShapeMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing detected_category", `{"confidence": 0.5, "is_match": false, "score": 0}`},
		{"confidence out of range", `{"detected_category": "other", "confidence": 2.5, "is_match": false, "score": 0}`},
		{"missing is_match", `{"detected_category": "other", "confidence": 0.5, "score": 0}`},
		{"negative score", `{"detected_category": "other", "confidence": 0.5, "is_match": true, "score": -3}`},
		{"not json", `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := oracle.NewClient(srv.URL, 5*time.Second)
			_, err := client.Score(context.Background(), oracle.Request{ImageURL: "x", ExpectedCategory: "other"})
			if !errors.Is(err, oracle.ErrBadResponse) {
				t.Fatalf("expected ErrBadResponse, got %v", err)
			}
		})
	}
}

func TestScoreUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := oracle.NewClient(srv.URL, 5*time.Second)
	_, err := client.Score(context.Background(), oracle.Request{ImageURL: "x", ExpectedCategory: "other"})
	if !errors.Is(err, oracle.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestScoreUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed on purpose

	client := oracle.NewClient(srv.URL, time.Second)
	_, err := client.Score(context.Background(), oracle.Request{ImageURL: "x", ExpectedCategory: "other"})
	if !errors.Is(err, oracle.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
