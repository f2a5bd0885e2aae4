// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EssayStatus 文章状态
type EssayStatus string

const (
	EssayStatusAwaitingOpening EssayStatus = "awaiting_opening"
	EssayStatusAwaitingPartner EssayStatus = "awaiting_partner"
	EssayStatusInProgress      EssayStatus = "in_progress"
	EssayStatusComplete        EssayStatus = "complete"
)

// FinishVoteCapacity 结束投票集合的容量上限（双人协作）
const FinishVoteCapacity = 2

// Essay 协作文章实体
//
// 两个内容槽按角色固定：OpeningContent 只由创建者追加，
// ContinuationContent 只由搭档追加。写入者到槽位的映射是
// 身份比较的纯函数，不依赖任何会话状态。
type Essay struct {
	ID                  string        `json:"id" gorm:"type:uuid;primaryKey"`
	CreatorID           string        `json:"creator_id" gorm:"type:varchar(64);index;not null"`
	CreatorName         string        `json:"creator_name" gorm:"type:varchar(255);not null"`
	CreatorIsAnonymous  bool          `json:"creator_is_anonymous" gorm:"not null;default:false"`
	Topic               string        `json:"topic" gorm:"type:text;not null"`
	OpeningContent      string        `json:"opening_content" gorm:"type:text"`
	ContinuationContent string        `json:"continuation_content" gorm:"type:text"`
	Status              EssayStatus   `json:"status" gorm:"type:varchar(32);index;not null;default:'awaiting_opening'"`
	LastWriterID        string        `json:"last_writer_id,omitempty" gorm:"type:varchar(64)"`
	FinishVotes         pq.StringArray `json:"finish_votes" gorm:"type:text[]"`
	ArtifactPath        string        `json:"artifact_path,omitempty" gorm:"type:text"`
	CreatedAt           time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	Partner *Partner `json:"partner,omitempty" gorm:"foreignKey:EssayID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Essay) TableName() string {
	return "essays"
}

// NewEssay 创建新文章
func NewEssay(creatorID, creatorName, topic string, isAnonymous bool) *Essay {
	now := time.Now()
	return &Essay{
		ID:                 uuid.NewString(),
		CreatorID:          creatorID,
		CreatorName:        creatorName,
		CreatorIsAnonymous: isAnonymous,
		Topic:              topic,
		Status:             EssayStatusAwaitingOpening,
		FinishVotes:        pq.StringArray{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// IsCreator 判断用户是否为创建者
func (e *Essay) IsCreator(userID string) bool {
	return e.CreatorID == userID
}

// HasPartner 判断是否已有搭档
func (e *Essay) HasPartner() bool {
	return e.Partner != nil
}

// IsPartner 判断用户是否为已记录的搭档
func (e *Essay) IsPartner(userID string) bool {
	return e.Partner != nil && e.Partner.PartnerID == userID
}

// IsParty 判断用户是否为文章参与方
func (e *Essay) IsParty(userID string) bool {
	return e.IsCreator(userID) || e.IsPartner(userID)
}

// Counterpart 返回对方参与者的用户 ID；无搭档时返回空串
func (e *Essay) Counterpart(userID string) string {
	if e.IsCreator(userID) && e.Partner != nil {
		return e.Partner.PartnerID
	}
	if e.IsPartner(userID) {
		return e.CreatorID
	}
	return ""
}

// HasFinishVote 判断用户是否已投结束票
func (e *Essay) HasFinishVote(userID string) bool {
	for _, v := range e.FinishVotes {
		if v == userID {
			return true
		}
	}
	return false
}

// AddFinishVote 记录结束投票，重复投票幂等
func (e *Essay) AddFinishVote(userID string) {
	if e.HasFinishVote(userID) {
		return
	}
	if len(e.FinishVotes) >= FinishVoteCapacity {
		return
	}
	e.FinishVotes = append(e.FinishVotes, userID)
}

// ClearFinishVotes 清空全部结束投票
func (e *Essay) ClearFinishVotes() {
	e.FinishVotes = pq.StringArray{}
}

// FinishAgreed 双方均已投票时为真（集合基数 = 2 且成员互异）
func (e *Essay) FinishAgreed() bool {
	if len(e.FinishVotes) != FinishVoteCapacity {
		return false
	}
	return e.FinishVotes[0] != e.FinishVotes[1]
}

// FullContent 按提交顺序拼接全部内容
func (e *Essay) FullContent() string {
	if e.ContinuationContent == "" {
		return e.OpeningContent
	}
	if e.OpeningContent == "" {
		return e.ContinuationContent
	}
	return e.OpeningContent + "\n\n" + e.ContinuationContent
}
