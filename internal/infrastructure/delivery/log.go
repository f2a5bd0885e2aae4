package delivery

import (
	"context"

	"essay-duet-api/internal/domain/service"
	"essay-duet-api/pkg/logger"
)

// LogNotifier 把通知写入日志，用于本地开发和无网关环境
type LogNotifier struct{}

// NewLogNotifier 创建日志投递器
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Deliver 记录通知内容，永远成功
func (l *LogNotifier) Deliver(ctx context.Context, n service.Notification) error {
	logger.Info(ctx, "通知已投递",
		"recipient", n.Recipient,
		"intent", string(n.Intent),
		"essay_id", n.EssayID,
		"text", RenderText(n),
	)
	return nil
}
