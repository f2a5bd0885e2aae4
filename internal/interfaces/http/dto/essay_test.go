package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essay-duet-api/internal/domain/entity"
	"essay-duet-api/internal/domain/service"
)

func anonymousPairEssay() *entity.Essay {
	essay := entity.NewEssay("creator", "Alice", "The Old Lighthouse", true)
	essay.OpeningContent = "it began at dusk"
	essay.ContinuationContent = "the waves rose"
	essay.Status = entity.EssayStatusInProgress
	essay.Partner = entity.NewPartner(essay.ID, "partner", "Bob", true)
	return essay
}

func TestNewEssayResponseMasksCounterpart(t *testing.T) {
	essay := anonymousPairEssay()

	// 创建者视角：自己显示真名，匿名搭档被遮蔽且不暴露 ID
	resp := NewEssayResponse(essay, "creator", false)
	assert.Equal(t, "Alice", resp.Creator.Name)
	assert.Equal(t, "creator", resp.Creator.ID)
	require.NotNil(t, resp.Partner)
	assert.Equal(t, service.AnonymousName, resp.Partner.Name)
	assert.Empty(t, resp.Partner.ID)

	// 搭档视角反之
	resp = NewEssayResponse(essay, "partner", true)
	assert.Equal(t, service.AnonymousName, resp.Creator.Name)
	assert.Empty(t, resp.Creator.ID)
	assert.Equal(t, "Bob", resp.Partner.Name)
	assert.Equal(t, "partner", resp.Partner.ID)
	assert.True(t, resp.YourTurn)
}

func TestNewEssayResponseVotes(t *testing.T) {
	essay := anonymousPairEssay()
	essay.AddFinishVote("creator")

	resp := NewEssayResponse(essay, "creator", false)
	assert.Equal(t, 1, resp.FinishVotes)
	assert.True(t, resp.YouVotedFinish)

	resp = NewEssayResponse(essay, "partner", false)
	assert.False(t, resp.YouVotedFinish)
}

func TestNewEssayResponseWordCount(t *testing.T) {
	essay := anonymousPairEssay()

	resp := NewEssayResponse(essay, "creator", false)
	// "it began at dusk" + "the waves rose"
	assert.Equal(t, 7, resp.WordCount)
}

func TestNewEssaySummaryResponseMasksCreator(t *testing.T) {
	essay := anonymousPairEssay()

	summary := NewEssaySummaryResponse(essay, "stranger", false)
	assert.Equal(t, service.AnonymousName, summary.CreatorName)

	summary = NewEssaySummaryResponse(essay, "creator", false)
	assert.Equal(t, "Alice", summary.CreatorName)
}

func TestNewEssaySummaryListYourTurn(t *testing.T) {
	essay := anonymousPairEssay()

	// 创建者刚写完开篇，轮到搭档
	turnFor := func(e *entity.Essay, viewerID string) bool {
		return e.LastWriterID != "" && e.LastWriterID != viewerID
	}
	list := NewEssaySummaryList([]*entity.Essay{essay}, "partner", turnFor)
	require.Len(t, list, 1)
	assert.True(t, list[0].YourTurn)
}
