package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"what-coffee-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func publishEvent(t *testing.T, pubSub *gochannel.GoChannel, event events.Event) {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"type":        event.EventType(),
		"payload":     event.Payload(),
		"occurred_at": event.Timestamp(),
	})
	assert.NoError(t, err)
	assert.NoError(t, pubSub.Publish(TopicChatEvents, message.NewMessage(uuid.NewString(), payload)))
}

func waitForCounts(t *testing.T, svc IConsumerService, want map[string]int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := svc.Counts()
		matched := true
		for k, v := range want {
			if got[k] != v {
				matched = false
				break
			}
		}
		if matched {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("counts never reached %v, last seen %v", want, svc.Counts())
}

func TestConsumerTalliesEvents(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	svc := NewConsumerService(pubSub, nil, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = svc.Consume(ctx)
	}()

	// Let the subscription attach before publishing.
	time.Sleep(20 * time.Millisecond)

	publishEvent(t, pubSub, events.NewSessionCreated("s1"))
	publishEvent(t, pubSub, events.NewChatCompleted("s1", 1, 120, "flavor", 900))
	publishEvent(t, pubSub, events.NewChatCompleted("s1", 2, 80, "none", 700))

	waitForCounts(t, svc, map[string]int64{
		events.TypeSessionCreated: 1,
		events.TypeChatCompleted:  2,
	})
}

func TestConsumerSkipsMalformedPayloads(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	svc := NewConsumerService(pubSub, nil, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = svc.Consume(ctx)
	}()

	time.Sleep(20 * time.Millisecond)

	assert.NoError(t, pubSub.Publish(TopicChatEvents, message.NewMessage(uuid.NewString(), []byte("not json"))))
	publishEvent(t, pubSub, events.NewSessionCreated("s2"))

	waitForCounts(t, svc, map[string]int64{events.TypeSessionCreated: 1})
}
