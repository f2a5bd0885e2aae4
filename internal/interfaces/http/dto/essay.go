package dto

import (
	"time"

	"essay-duet-api/internal/application/collab"
	"essay-duet-api/internal/domain/entity"
	"essay-duet-api/internal/domain/service"
)

// CreateEssayRequest 创建文章请求
type CreateEssayRequest struct {
	Topic     string `json:"topic" binding:"required,max=500"`
	UserName  string `json:"user_name" binding:"required,max=255"`
	Anonymous bool   `json:"anonymous"`
}

// SubmitOpeningRequest 提交开篇请求
type SubmitOpeningRequest struct {
	Text string `json:"text" binding:"required"`
}

// JoinEssayRequest 加入文章请求
type JoinEssayRequest struct {
	UserName  string `json:"user_name" binding:"required,max=255"`
	Anonymous bool   `json:"anonymous"`
}

// PreviewTurnRequest 预览回合请求
// EssayID 为空时按调用者会话路由
type PreviewTurnRequest struct {
	EssayID string `json:"essay_id"`
	Text    string `json:"text" binding:"required"`
}

// ConfirmTurnRequest 确认回合请求
type ConfirmTurnRequest struct {
	EssayID string `json:"essay_id"`
}

// ParticipantResponse 参与者信息
// 匿名参与者对对方显示占位名且不暴露用户 ID，本人始终看到真名
type ParticipantResponse struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Anonymous bool   `json:"anonymous"`
}

// EssayResponse 文章详情响应
type EssayResponse struct {
	ID                  string               `json:"id"`
	Topic               string               `json:"topic"`
	Status              string               `json:"status"`
	Creator             ParticipantResponse  `json:"creator"`
	Partner             *ParticipantResponse `json:"partner,omitempty"`
	OpeningContent      string               `json:"opening_content,omitempty"`
	ContinuationContent string               `json:"continuation_content,omitempty"`
	WordCount           int                  `json:"word_count"`
	YourTurn            bool                 `json:"your_turn"`
	FinishVotes         int                  `json:"finish_votes"`
	YouVotedFinish      bool                 `json:"you_voted_finish"`
	ArtifactPath        string               `json:"artifact_path,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// EssaySummaryResponse 文章列表项
type EssaySummaryResponse struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Status      string    `json:"status"`
	CreatorName string    `json:"creator_name"`
	WordCount   int       `json:"word_count"`
	YourTurn    bool      `json:"your_turn"`
	CreatedAt   time.Time `json:"created_at"`
}

// DraftResponse 回合草稿预览响应
type DraftResponse struct {
	EssayID   string `json:"essay_id"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// FinishResponse 结束投票响应
type FinishResponse struct {
	Essay       EssayResponse `json:"essay"`
	Completed   bool          `json:"completed"`
	ExportError string        `json:"export_error,omitempty"`
}

// ExportResponse 导出响应
type ExportResponse struct {
	EssayID      string `json:"essay_id"`
	ArtifactPath string `json:"artifact_path"`
}

// maskName 计算 subject 在 viewer 眼中的显示名
func maskName(viewerID, subjectID, name string, anonymous bool) string {
	if anonymous && viewerID != subjectID {
		return service.AnonymousName
	}
	return name
}

// newParticipant 按查看者视角构建参与者信息
// 遮蔽显示名时一并隐藏用户 ID，避免稳定标识绕过匿名
func newParticipant(viewerID, subjectID, name string, anonymous bool) ParticipantResponse {
	if anonymous && viewerID != subjectID {
		return ParticipantResponse{Name: service.AnonymousName, Anonymous: true}
	}
	return ParticipantResponse{ID: subjectID, Name: name, Anonymous: anonymous}
}

// NewEssayResponse 按查看者视角构建文章详情
func NewEssayResponse(essay *entity.Essay, viewerID string, yourTurn bool) EssayResponse {
	resp := EssayResponse{
		ID:                  essay.ID,
		Topic:               essay.Topic,
		Status:              string(essay.Status),
		Creator:             newParticipant(viewerID, essay.CreatorID, essay.CreatorName, essay.CreatorIsAnonymous),
		OpeningContent:      essay.OpeningContent,
		ContinuationContent: essay.ContinuationContent,
		WordCount:           service.CountWords(essay.FullContent()),
		YourTurn:            yourTurn,
		FinishVotes:         len(essay.FinishVotes),
		YouVotedFinish:      essay.HasFinishVote(viewerID),
		ArtifactPath:        essay.ArtifactPath,
		CreatedAt:           essay.CreatedAt,
		UpdatedAt:           essay.UpdatedAt,
	}
	if essay.Partner != nil {
		partner := newParticipant(viewerID, essay.Partner.PartnerID, essay.Partner.PartnerName, essay.Partner.IsAnonymous)
		resp.Partner = &partner
	}
	return resp
}

// NewEssaySummaryResponse 按查看者视角构建列表项
func NewEssaySummaryResponse(essay *entity.Essay, viewerID string, yourTurn bool) EssaySummaryResponse {
	return EssaySummaryResponse{
		ID:          essay.ID,
		Topic:       essay.Topic,
		Status:      string(essay.Status),
		CreatorName: maskName(viewerID, essay.CreatorID, essay.CreatorName, essay.CreatorIsAnonymous),
		WordCount:   service.CountWords(essay.FullContent()),
		YourTurn:    yourTurn,
		CreatedAt:   essay.CreatedAt,
	}
}

// NewEssaySummaryList 构建列表响应，yourTurn 按条目计算
func NewEssaySummaryList(essays []*entity.Essay, viewerID string, yourTurn func(*entity.Essay, string) bool) []EssaySummaryResponse {
	out := make([]EssaySummaryResponse, 0, len(essays))
	for _, e := range essays {
		out = append(out, NewEssaySummaryResponse(e, viewerID, yourTurn(e, viewerID)))
	}
	return out
}

// NewDraftResponse 构建草稿预览响应
func NewDraftResponse(draft *collab.Draft) DraftResponse {
	return DraftResponse{
		EssayID:   draft.EssayID,
		Text:      draft.Text,
		WordCount: draft.WordCount,
	}
}
