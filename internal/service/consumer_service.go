package service

import (
	"context"

	"legal-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Broadcaster pushes one encoded frame to every connected client.
// Implemented by the websocket hub.
type Broadcaster interface {
	Broadcast(ctx context.Context, data []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	broadcaster Broadcaster
	logger      logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	broadcaster Broadcaster,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		broadcaster: broadcaster,
		logger:      log,
	}
}

// Consume subscribes to the chat event topic and relays every message until
// ctx is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
		cs.logger.Info("Consumer", "Chat event relay stopped", nil)
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	if len(msg.Payload) == 0 {
		// Nothing a client could use; acking keeps the topic moving.
		msg.Ack()
		return
	}
	cs.broadcaster.Broadcast(ctx, msg.Payload)
	msg.Ack()
}
