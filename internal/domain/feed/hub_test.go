package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/wastewise/wastewise-api/internal/domain/achievement"
)

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	conn := &Connection{Send: make(chan []byte, 8)}
	hub.Register(conn)
	waitForSubscribers(t, hub, 1)

	hub.Broadcast(&Event{
		Type:      EventClassification,
		Wallet:    "0x1111111111111111111111111111111111111111",
		Timestamp: time.Now().UTC(),
	})

	select {
	case raw := <-conn.Send:
		var got Event
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if got.Type != EventClassification {
			t.Errorf("type = %s, want %s", got.Type, EventClassification)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	conn := &Connection{Send: make(chan []byte, 1)}
	hub.Register(conn)
	waitForSubscribers(t, hub, 1)

	// second event has nowhere to go and must not block
	done := make(chan struct{})
	go func() {
		hub.Broadcast(&Event{Type: EventNFTClaim})
		hub.Broadcast(&Event{Type: EventNFTClaim})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
}

func TestPublisherShapesAchievementEvent(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	conn := &Connection{Send: make(chan []byte, 8)}
	hub.Register(conn)
	waitForSubscribers(t, hub, 1)

	pub := NewPublisher(hub)
	pub.AchievementClaimed(context.Background(), "0x2222222222222222222222222222222222222222", &achievement.Achievement{
		Code:        "first-sort",
		Title:       "First Sort",
		RewardScore: 10,
	})

	select {
	case raw := <-conn.Send:
		var got Event
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if got.Type != EventAchievementClaim {
			t.Errorf("type = %s", got.Type)
		}
		data, _ := got.Data.(map[string]interface{})
		if data["code"] != "first-sort" {
			t.Errorf("data = %v", got.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func waitForSubscribers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		got := len(hub.connections)
		hub.mu.RUnlock()
		if got == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscriber count never reached %d", n)
}
