// Package entity 定义领域实体
package entity

import (
	"time"
)

// Partner 文章的第二位参与者，每篇文章至多一位
type Partner struct {
	ID          int64     `json:"-" gorm:"primaryKey;autoIncrement"`
	EssayID     string    `json:"essay_id" gorm:"type:uuid;not null;uniqueIndex:idx_partner_essay_user"`
	PartnerID   string    `json:"partner_id" gorm:"type:varchar(64);index;not null;uniqueIndex:idx_partner_essay_user"`
	PartnerName string    `json:"partner_name" gorm:"type:varchar(255);not null"`
	IsAnonymous bool      `json:"is_anonymous" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Partner) TableName() string {
	return "partners"
}

// NewPartner 创建搭档记录
func NewPartner(essayID, partnerID, partnerName string, isAnonymous bool) *Partner {
	return &Partner{
		EssayID:     essayID,
		PartnerID:   partnerID,
		PartnerName: partnerName,
		IsAnonymous: isAnonymous,
		CreatedAt:   time.Now(),
	}
}
