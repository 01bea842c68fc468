package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Score event types published after successful writes.
const (
	EventScoreCreated         = "score.created"
	EventCombinedScoreCreated = "combined_score.created"
)

// EventPublisher fans out domain events to other nodes and consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// ScoreEvent is the envelope written to every broker.
type ScoreEvent struct {
	Type    string          `json:"type"`
	Source  string          `json:"source"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

type scoreEventPublisher struct {
	redis       *redis.Client
	redisPrefix string
	nats        *nats.Conn
	natsPrefix  string
	nodeID      string
	now         func() time.Time
}

// NewScoreEventPublisher builds a publisher over the optional Redis and NATS connections.
// channelBase such as "gema:writing" yields Redis channels "gema:writing:<type>" and NATS
// subjects "gema.writing.<type>".
func NewScoreEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string) EventPublisher {
	return &scoreEventPublisher{
		redis:       redisClient,
		redisPrefix: channelBase,
		nats:        natsConn,
		natsPrefix:  strings.ReplaceAll(channelBase, ":", "."),
		nodeID:      uuid.NewString(),
		now:         time.Now,
	}
}

func (p *scoreEventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if p.redis == nil && p.nats == nil {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event, err := json.Marshal(ScoreEvent{
		Type:    eventType,
		Source:  p.nodeID,
		Payload: body,
		SentAt:  p.now().UTC(),
	})
	if err != nil {
		return err
	}

	if p.redis != nil && p.redisPrefix != "" {
		if err := p.redis.Publish(ctx, p.redisPrefix+":"+eventType, event).Err(); err != nil {
			return err
		}
	}

	if p.nats != nil && p.natsPrefix != "" {
		if err := p.nats.Publish(p.natsPrefix+"."+eventType, event); err != nil {
			return err
		}
	}

	return nil
}
