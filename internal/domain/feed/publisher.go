package feed

import (
	"context"
	"time"

	"github.com/wastewise/wastewise-api/internal/domain/achievement"
	"github.com/wastewise/wastewise-api/internal/domain/classification"
)

// Publisher adapts domain events onto the feed hub. It satisfies the
// event interfaces the domain services accept.
type Publisher struct {
	hub *Hub
}

func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

func (p *Publisher) ClassificationRecorded(ctx context.Context, c *classification.Classification) {
	p.hub.Broadcast(&Event{
		Type:   EventClassification,
		Wallet: c.Wallet,
		Data: map[string]interface{}{
			"category":   c.DetectedCategory,
			"is_correct": c.IsCorrect,
			"score":      c.Score,
		},
		Timestamp: time.Now().UTC(),
	})
}

func (p *Publisher) AchievementClaimed(ctx context.Context, wallet string, a *achievement.Achievement) {
	p.hub.Broadcast(&Event{
		Type:   EventAchievementClaim,
		Wallet: wallet,
		Data: map[string]interface{}{
			"code":   a.Code,
			"title":  a.Title,
			"reward": a.RewardScore,
		},
		Timestamp: time.Now().UTC(),
	})
}

// NFTClaimed is called by the wiring layer after a confirmed transfer.
func (p *Publisher) NFTClaimed(wallet, itemName string, tokenID int64) {
	p.hub.Broadcast(&Event{
		Type:   EventNFTClaim,
		Wallet: wallet,
		Data: map[string]interface{}{
			"name":     itemName,
			"token_id": tokenID,
		},
		Timestamp: time.Now().UTC(),
	})
}
