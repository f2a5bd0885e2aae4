// Package collab 编排双人协作写作的应用流程
package collab

import (
	"context"

	"essay-duet-api/internal/domain/entity"
	"essay-duet-api/internal/domain/service"
)

// Draft 待确认的回合草稿
// 预览后暂存，确认时取出并在事务内再次校验
type Draft struct {
	UserID    string `json:"user_id"`
	EssayID   string `json:"essay_id"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// DraftStore 草稿暂存接口，实现需带 TTL 自动过期
type DraftStore interface {
	Put(ctx context.Context, draft *Draft) error
	// Get 草稿不存在或已过期时返回 (nil, nil)
	Get(ctx context.Context, userID, essayID string) (*Draft, error)
	Delete(ctx context.Context, userID, essayID string) error
}

// NotificationPublisher 通知发布接口
// 只负责投递到消息流，失败不影响已提交的状态变更
type NotificationPublisher interface {
	Publish(ctx context.Context, notifs []service.Notification) error
}

// Exporter 文档导出接口，返回产物路径
type Exporter interface {
	Export(ctx context.Context, essay *entity.Essay) (string, error)
}
