package service

import (
	"essay-duet-api/internal/domain/entity"
)

// Intent 通知意图
type Intent string

const (
	IntentJoinedNotice   Intent = "joined_notice"   // 有人加入了你的文章
	IntentPromptWrite    Intent = "prompt_write"    // 轮到你执笔
	IntentTurnNotice     Intent = "turn_notice"     // 对方提交了新回合
	IntentFinishOffer    Intent = "finish_offer"    // 对方提议结束
	IntentFinishAccepted Intent = "finish_accepted" // 双方同意，文章完成
	IntentFinishDeclined Intent = "finish_declined" // 对方拒绝结束
)

// Notification 一条待投递的通知
type Notification struct {
	Recipient    string `json:"recipient"`
	Intent       Intent `json:"intent"`
	EssayID      string `json:"essay_id"`
	Topic        string `json:"topic"`
	ActorName    string `json:"actor_name,omitempty"`
	Content      string `json:"content,omitempty"`
	WordCount    int    `json:"word_count,omitempty"`
	ArtifactPath string `json:"artifact_path,omitempty"`
}

// AnonymousName 匿名参与者在对方通知中的占位名
const AnonymousName = "Someone"

// Planner 通知规划器
//
// 纯函数：根据状态变更计算应发出的通知列表，不做任何投递。
// 投递在事务提交后经消息流异步进行。
type Planner struct {
	SnippetLength int
}

// NewPlanner 创建通知规划器
func NewPlanner(snippetLength int) *Planner {
	return &Planner{SnippetLength: snippetLength}
}

// displayName 计算 subject 在 viewer 眼中的名字
// 本人永远看到真名，匿名参与者在对方通知中显示占位名
func (p *Planner) displayName(essay *entity.Essay, viewerID, subjectID string) string {
	if essay.IsCreator(subjectID) {
		if viewerID != subjectID && essay.CreatorIsAnonymous {
			return AnonymousName
		}
		return essay.CreatorName
	}
	if essay.Partner != nil && essay.Partner.PartnerID == subjectID {
		if viewerID != subjectID && essay.Partner.IsAnonymous {
			return AnonymousName
		}
		return essay.Partner.PartnerName
	}
	return AnonymousName
}

// snippet 截取回合文本预览，按字符计数避免切断多字节序列
func (p *Planner) snippet(text string) string {
	if p.SnippetLength <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= p.SnippetLength {
		return text
	}
	return string(runes[:p.SnippetLength]) + "..."
}

// PlanJoin 规划加入事件的通知：
// 创建者收到加入提醒，搭档收到执笔提示（加入后搭档先写）
func (p *Planner) PlanJoin(essay *entity.Essay, actorID string) []Notification {
	return []Notification{
		{
			Recipient: essay.CreatorID,
			Intent:    IntentJoinedNotice,
			EssayID:   essay.ID,
			Topic:     essay.Topic,
			ActorName: p.displayName(essay, essay.CreatorID, actorID),
		},
		{
			Recipient: actorID,
			Intent:    IntentPromptWrite,
			EssayID:   essay.ID,
			Topic:     essay.Topic,
			Content:   p.snippet(essay.OpeningContent),
		},
	}
}

// PlanTurn 规划回合提交的通知：对方收到新回合提醒并被提示执笔
func (p *Planner) PlanTurn(essay *entity.Essay, actorID, text string) []Notification {
	other := essay.Counterpart(actorID)
	if other == "" {
		return nil
	}
	return []Notification{
		{
			Recipient: other,
			Intent:    IntentTurnNotice,
			EssayID:   essay.ID,
			Topic:     essay.Topic,
			ActorName: p.displayName(essay, other, actorID),
			Content:   p.snippet(text),
			WordCount: CountWords(text),
		},
	}
}

// PlanFinishVote 规划结束投票的通知
// 未达成一致时对方收到结束提议；达成一致时双方都收到完成通知
func (p *Planner) PlanFinishVote(essay *entity.Essay, actorID string, completed bool) []Notification {
	other := essay.Counterpart(actorID)
	if other == "" {
		return nil
	}
	if !completed {
		return []Notification{
			{
				Recipient: other,
				Intent:    IntentFinishOffer,
				EssayID:   essay.ID,
				Topic:     essay.Topic,
				ActorName: p.displayName(essay, other, actorID),
			},
		}
	}
	notifs := make([]Notification, 0, 2)
	for _, recipient := range []string{essay.CreatorID, essay.Partner.PartnerID} {
		notifs = append(notifs, Notification{
			Recipient:    recipient,
			Intent:       IntentFinishAccepted,
			EssayID:      essay.ID,
			Topic:        essay.Topic,
			ArtifactPath: essay.ArtifactPath,
		})
	}
	return notifs
}

// PlanFinishDecline 规划拒绝结束的通知：对方收到拒绝提醒
func (p *Planner) PlanFinishDecline(essay *entity.Essay, actorID string) []Notification {
	other := essay.Counterpart(actorID)
	if other == "" {
		return nil
	}
	return []Notification{
		{
			Recipient: other,
			Intent:    IntentFinishDeclined,
			EssayID:   essay.ID,
			Topic:     essay.Topic,
			ActorName: p.displayName(essay, other, actorID),
		},
	}
}
