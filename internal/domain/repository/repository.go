// Package repository 定义领域层的数据访问接口
package repository

import (
	"context"
)

// TxKey 事务在 context 中的存放键
type TxKey struct{}

// Transactor 事务管理接口
// 回调返回 error 时整个事务回滚
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
