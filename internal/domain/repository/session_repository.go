package repository

import (
	"context"

	"essay-duet-api/internal/domain/entity"
)

// SessionRepository 用户会话仓储接口
type SessionRepository interface {
	// Set 写入或覆盖用户当前关注的文章
	Set(ctx context.Context, session *entity.UserSession) error

	// Get 查询用户当前会话，不存在时返回 (nil, nil)
	Get(ctx context.Context, userID string) (*entity.UserSession, error)

	// Clear 删除用户会话，不存在时视为成功
	Clear(ctx context.Context, userID string) error
}
