package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"essay-duet-api/internal/domain/service"
)

var tracer = otel.Tracer("messaging")

const defaultStreamMaxLen = 100000

// Producer 消息生产者，流长度按 MAXLEN ~ 近似裁剪
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return &Producer{client: client, maxLen: maxLen}
}

// Publish 发布单条消息，返回流内记录 ID
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	entryID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.entry_id", entryID))
	return entryID, nil
}

// PublishNotifications 把一批通知逐条发布到投递流
func (p *Producer) PublishNotifications(ctx context.Context, notifs []service.Notification) error {
	for _, n := range notifs {
		msg, err := NewMessage(uuid.NewString(), MsgTypeNotification, n.EssayID, n.Recipient, n)
		if err != nil {
			return err
		}
		msg.SetMetadata("intent", string(n.Intent))
		if _, err := p.Publish(ctx, StreamNotifications, msg); err != nil {
			return err
		}
	}
	return nil
}
