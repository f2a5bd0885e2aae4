package repository

import (
	"context"

	"essay-duet-api/internal/domain/entity"
)

// EssayRepository 文章仓储接口
// 查询方法在记录不存在时返回 (nil, nil)，由调用方判断
type EssayRepository interface {
	// Create 创建文章
	Create(ctx context.Context, essay *entity.Essay) error

	// GetByID 按 ID 查询文章（含搭档信息）
	GetByID(ctx context.Context, id string) (*entity.Essay, error)

	// GetByIDForUpdate 按 ID 加行锁查询，必须在事务内调用
	// 同一篇文章的并发写入依赖该锁串行化
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Essay, error)

	// Update 保存文章的可变字段
	Update(ctx context.Context, essay *entity.Essay) error

	// AddPartner 写入搭档记录
	AddPartner(ctx context.Context, partner *entity.Partner) error

	// ListByCreator 查询某用户创建的文章
	ListByCreator(ctx context.Context, creatorID string) ([]*entity.Essay, error)

	// ListByPartner 查询某用户作为搭档参与的文章
	ListByPartner(ctx context.Context, partnerID string) ([]*entity.Essay, error)

	// ListAvailable 查询等待搭档加入的文章，排除 excludeUserID 自己创建的
	ListAvailable(ctx context.Context, excludeUserID string) ([]*entity.Essay, error)
}
