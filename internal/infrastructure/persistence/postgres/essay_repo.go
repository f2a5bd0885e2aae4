package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"essay-duet-api/internal/domain/entity"
)

type EssayRepository struct {
	client *Client
}

func NewEssayRepository(client *Client) *EssayRepository {
	return &EssayRepository{client: client}
}

func (r *EssayRepository) Create(ctx context.Context, essay *entity.Essay) error {
	ctx, span := tracer.Start(ctx, "postgres.EssayRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(essay).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create essay: %w", err)
	}
	return nil
}

func (r *EssayRepository) GetByID(ctx context.Context, id string) (*entity.Essay, error) {
	ctx, span := tracer.Start(ctx, "postgres.EssayRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var essay entity.Essay
	if err := db.Preload("Partner").First(&essay, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get essay: %w", err)
	}
	return &essay, nil
}

// GetByIDForUpdate 行锁只加在 essays 主表上，搭档记录随后单独加载
// 同一篇文章的并发变更由该锁串行化
func (r *EssayRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Essay, error) {
	ctx, span := tracer.Start(ctx, "postgres.EssayRepository.GetByIDForUpdate")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var essay entity.Essay
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&essay, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get essay for update: %w", err)
	}

	var partner entity.Partner
	err = db.First(&partner, "essay_id = ?", id).Error
	if err == nil {
		essay.Partner = &partner
	} else if err != gorm.ErrRecordNotFound {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load partner: %w", err)
	}
	return &essay, nil
}

func (r *EssayRepository) Update(ctx context.Context, essay *entity.Essay) error {
	ctx, span := tracer.Start(ctx, "postgres.EssayRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Omit("Partner").Save(essay).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update essay: %w", err)
	}
	return nil
}

func (r *EssayRepository) AddPartner(ctx context.Context, partner *entity.Partner) error {
	ctx, span := tracer.Start(ctx, "postgres.EssayRepository.AddPartner")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(partner).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to add partner: %w", err)
	}
	return nil
}

func (r *EssayRepository) ListByCreator(ctx context.Context, creatorID string) ([]*entity.Essay, error) {
	ctx, span := tracer.Start(ctx, "postgres.EssayRepository.ListByCreator")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var essays []*entity.Essay
	err := db.Preload("Partner").
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&essays).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list essays by creator: %w", err)
	}
	return essays, nil
}

func (r *EssayRepository) ListByPartner(ctx context.Context, partnerID string) ([]*entity.Essay, error) {
	ctx, span := tracer.Start(ctx, "postgres.EssayRepository.ListByPartner")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var essays []*entity.Essay
	err := db.Preload("Partner").
		Joins("JOIN partners ON partners.essay_id = essays.id").
		Where("partners.partner_id = ?", partnerID).
		Order("essays.created_at DESC").
		Find(&essays).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list essays by partner: %w", err)
	}
	return essays, nil
}

func (r *EssayRepository) ListAvailable(ctx context.Context, excludeUserID string) ([]*entity.Essay, error) {
	ctx, span := tracer.Start(ctx, "postgres.EssayRepository.ListAvailable")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var essays []*entity.Essay
	err := db.Where("status = ?", entity.EssayStatusAwaitingPartner).
		Where("creator_id <> ?", excludeUserID).
		Order("created_at DESC").
		Find(&essays).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list available essays: %w", err)
	}
	return essays, nil
}
