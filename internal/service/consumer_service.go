package service

import (
	"context"
	"encoding/json"
	"sync"

	"what-coffee-be/internal/pkg/logger"
	pktNats "what-coffee-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IConsumerService drains the in-process event bus in the background
type IConsumerService interface {
	Consume(ctx context.Context) error
	Counts() map[string]int64
}

type chatEventEnvelope struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

type consumerService struct {
	subscriber message.Subscriber
	natsPub    *pktNats.Publisher
	sysLogger  logger.ILogger

	mu     sync.Mutex
	counts map[string]int64
}

// NewConsumerService creates the chat event consumer. natsPub may be nil;
// events are then only counted locally.
func NewConsumerService(subscriber message.Subscriber, natsPub *pktNats.Publisher, sysLogger logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		natsPub:    natsPub,
		sysLogger:  sysLogger,
		counts:     map[string]int64{},
	}
}

// Consume blocks until ctx is cancelled, tallying usage counters and
// mirroring events to NATS off the request path.
func (s *consumerService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, TopicChatEvents)
	if err != nil {
		return err
	}

	for msg := range messages {
		var envelope chatEventEnvelope
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			s.sysLogger.Warn("consumer", "event_decode_failed", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}

		s.mu.Lock()
		s.counts[envelope.Type]++
		s.mu.Unlock()

		if s.natsPub != nil {
			if err := s.natsPub.PublishRaw(ctx, envelope.Type, msg.Payload); err != nil {
				s.sysLogger.Warn("consumer", "nats_mirror_failed", map[string]interface{}{
					"type":  envelope.Type,
					"error": err.Error(),
				})
			}
		}

		msg.Ack()
	}
	return nil
}

func (s *consumerService) Counts() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}
