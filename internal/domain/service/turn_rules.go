// Package service 实现协作写作的领域规则
package service

import (
	"fmt"
	"strings"

	"essay-duet-api/internal/domain/entity"
	"essay-duet-api/pkg/errors"
)

// Role 写入者在文章中的角色
type Role string

const (
	RoleCreator Role = "creator"
	RolePartner Role = "partner"
)

// Rules 回合规则引擎
//
// 所有 Check 方法只读、可在事务外预校验；Apply 方法修改实体，
// 必须在行锁事务内对重新加载的实体再次调用 Check 后执行。
type Rules struct {
	MaxTurnWords int
}

// NewRules 创建规则引擎
func NewRules(maxTurnWords int) *Rules {
	return &Rules{MaxTurnWords: maxTurnWords}
}

// CountWords 按空白分词统计词数
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CheckLength 校验单回合文本长度，超限拒绝而非截断
func (r *Rules) CheckLength(text string) error {
	n := CountWords(text)
	if n == 0 {
		return errors.ErrInvalidParam.WithDetail("contribution text is empty")
	}
	if n > r.MaxTurnWords {
		return errors.ErrTooLong.WithDetail(
			fmt.Sprintf("%d words, limit is %d", n, r.MaxTurnWords))
	}
	return nil
}

// CheckOpening 校验开篇提交：仅创建者、仅 awaiting_opening 状态
func (r *Rules) CheckOpening(essay *entity.Essay, userID, text string) error {
	if essay.Status != entity.EssayStatusAwaitingOpening {
		return errors.ErrNoOpening.WithDetail("opening already submitted or essay closed")
	}
	if !essay.IsCreator(userID) {
		return errors.ErrForbidden
	}
	return r.CheckLength(text)
}

// ApplyOpening 写入开篇内容并推进到 awaiting_partner
func (r *Rules) ApplyOpening(essay *entity.Essay, text string) {
	essay.OpeningContent = text
	essay.LastWriterID = essay.CreatorID
	essay.Status = entity.EssayStatusAwaitingPartner
}

// CheckJoin 校验加入请求，规则按优先级排列：
// 自加入 > 已是搭档 > 已满 > 状态不可加入
func (r *Rules) CheckJoin(essay *entity.Essay, userID string) error {
	if essay.IsCreator(userID) {
		return errors.ErrSelfJoin
	}
	if essay.IsPartner(userID) {
		return errors.ErrAlreadyJoined
	}
	if essay.HasPartner() {
		return errors.ErrFull
	}
	if essay.Status != entity.EssayStatusAwaitingPartner {
		return errors.ErrNotJoinable
	}
	return nil
}

// ApplyJoin 记录搭档并推进到 in_progress
// LastWriterID 保持为创建者，因此下一回合期望搭档执笔
func (r *Rules) ApplyJoin(essay *entity.Essay, partner *entity.Partner) {
	essay.Partner = partner
	essay.Status = entity.EssayStatusInProgress
}

// CheckTurn 校验回合提交：状态 > 参与方 > 轮次 > 长度
func (r *Rules) CheckTurn(essay *entity.Essay, userID, text string) error {
	if essay.Status != entity.EssayStatusInProgress {
		return errors.ErrNotInProgress
	}
	if !essay.IsParty(userID) {
		return errors.ErrForbidden
	}
	if essay.LastWriterID == userID {
		return errors.ErrNotYourTurn
	}
	return r.CheckLength(text)
}

// ApplyTurn 将文本追加到提交者的角色槽位，更新轮次并清空结束投票
// 返回提交者的角色
func (r *Rules) ApplyTurn(essay *entity.Essay, userID, text string) Role {
	var role Role
	if essay.IsCreator(userID) {
		essay.OpeningContent = joinTurn(essay.OpeningContent, text)
		role = RoleCreator
	} else {
		essay.ContinuationContent = joinTurn(essay.ContinuationContent, text)
		role = RolePartner
	}
	essay.LastWriterID = userID
	essay.ClearFinishVotes()
	return role
}

// joinTurn 以单个空格拼接回合文本
func joinTurn(existing, text string) string {
	if existing == "" {
		return text
	}
	return existing + " " + text
}

// NextWriter 返回下一个期望执笔者的用户 ID
// LastWriterID 为空（刚加入）时期望搭档先写
func (r *Rules) NextWriter(essay *entity.Essay) string {
	if essay.Partner == nil {
		return ""
	}
	if essay.LastWriterID == essay.Partner.PartnerID {
		return essay.CreatorID
	}
	return essay.Partner.PartnerID
}

// CastFinishVote 记录结束投票；双方均投票时推进到 complete
// 返回文章是否在本次投票后完成
func (r *Rules) CastFinishVote(essay *entity.Essay, userID string) (bool, error) {
	if essay.Status != entity.EssayStatusInProgress {
		return false, errors.ErrNotInProgress
	}
	if !essay.IsParty(userID) {
		return false, errors.ErrForbidden
	}
	essay.AddFinishVote(userID)
	if essay.FinishAgreed() {
		essay.Status = entity.EssayStatusComplete
		return true, nil
	}
	return false, nil
}

// DeclineFinish 拒绝结束提议，清空全部投票，写作继续
func (r *Rules) DeclineFinish(essay *entity.Essay, userID string) error {
	if essay.Status != entity.EssayStatusInProgress {
		return errors.ErrNotInProgress
	}
	if !essay.IsParty(userID) {
		return errors.ErrForbidden
	}
	essay.ClearFinishVotes()
	return nil
}
