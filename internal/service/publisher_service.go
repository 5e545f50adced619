package service

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/conversation"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChatEventEnvelope is the frame pushed to websocket clients. Seq grows by one
// per event so clients can spot reordering or gaps.
type ChatEventEnvelope struct {
	Seq   uint64             `json:"seq"`
	Event conversation.Event `json:"event"`
}

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
}

// PublisherService puts chat events on the in-process bus. It doubles as the
// conversation observer.
type PublisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
	logger    logger.ILogger
	seq       atomic.Uint64
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel, log logger.ILogger) *PublisherService {
	return &PublisherService{
		topicName: topicName,
		pubSub:    pubSub,
		logger:    log,
	}
}

func (ps *PublisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}

func (ps *PublisherService) OnEvent(e conversation.Event) {
	data, err := json.Marshal(ChatEventEnvelope{Seq: ps.seq.Add(1), Event: e})
	if err != nil {
		ps.logger.Error("Publisher", "Failed to encode chat event", map[string]interface{}{
			"type":  string(e.Type),
			"error": err,
		})
		return
	}
	if err := ps.Publish(context.Background(), data); err != nil {
		ps.logger.Error("Publisher", "Failed to publish chat event", map[string]interface{}{
			"type":  string(e.Type),
			"error": err,
		})
	}
}
