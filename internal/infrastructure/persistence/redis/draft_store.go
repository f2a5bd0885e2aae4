package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"essay-duet-api/internal/application/collab"
)

// DraftStore 回合草稿暂存，带 TTL 自动过期
// 预览未确认的草稿过期后需重新预览
type DraftStore struct {
	client *Client
	ttl    time.Duration
}

// NewDraftStore 创建草稿暂存
func NewDraftStore(client *Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func draftKey(userID, essayID string) string {
	return fmt.Sprintf("draft:%s:%s", userID, essayID)
}

// Put 写入草稿，同一用户同一文章的旧草稿被覆盖
func (s *DraftStore) Put(ctx context.Context, draft *collab.Draft) error {
	ctx, span := tracer.Start(ctx, "redis.DraftStore.Put")
	span.SetAttributes(attribute.String("essay.id", draft.EssayID))
	defer span.End()

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	key := draftKey(draft.UserID, draft.EssayID)
	if err := s.client.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to store draft: %w", err)
	}
	return nil
}

// Get 读取草稿，不存在或已过期时返回 (nil, nil)
func (s *DraftStore) Get(ctx context.Context, userID, essayID string) (*collab.Draft, error) {
	ctx, span := tracer.Start(ctx, "redis.DraftStore.Get")
	defer span.End()

	data, err := s.client.rdb.Get(ctx, draftKey(userID, essayID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var draft collab.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

// Delete 删除草稿，不存在时视为成功
func (s *DraftStore) Delete(ctx context.Context, userID, essayID string) error {
	ctx, span := tracer.Start(ctx, "redis.DraftStore.Delete")
	defer span.End()

	if err := s.client.rdb.Del(ctx, draftKey(userID, essayID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
