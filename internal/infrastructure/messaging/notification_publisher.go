package messaging

import (
	"context"

	"essay-duet-api/internal/domain/service"
)

// NotificationPublisher 通知发布端口的消息流实现
type NotificationPublisher struct {
	producer *Producer
}

// NewNotificationPublisher 创建通知发布器
func NewNotificationPublisher(producer *Producer) *NotificationPublisher {
	return &NotificationPublisher{producer: producer}
}

// Publish 将通知逐条写入投递流
func (p *NotificationPublisher) Publish(ctx context.Context, notifs []service.Notification) error {
	return p.producer.PublishNotifications(ctx, notifs)
}
