package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"essay-duet-api/internal/domain/entity"
)

type SessionRepository struct {
	client *Client
}

func NewSessionRepository(client *Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Set 写入用户会话，同一用户重复写入时覆盖
func (r *SessionRepository) Set(ctx context.Context, session *entity.UserSession) error {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.Set")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"essay_id", "updated_at"}),
	}).Create(session).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, userID string) (*entity.UserSession, error) {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.Get")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var session entity.UserSession
	if err := db.First(&session, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Clear(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.Clear")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.UserSession{}, "user_id = ?", userID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
