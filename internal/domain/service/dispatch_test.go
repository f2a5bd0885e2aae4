package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essay-duet-api/internal/domain/entity"
)

func essayWithPartner(creatorAnon, partnerAnon bool) *entity.Essay {
	essay := entity.NewEssay("creator", "Alice", "The Old Lighthouse", creatorAnon)
	essay.OpeningContent = "it began at dusk"
	essay.LastWriterID = "creator"
	essay.Status = entity.EssayStatusInProgress
	essay.Partner = entity.NewPartner(essay.ID, "partner", "Bob", partnerAnon)
	return essay
}

func TestPlanJoin(t *testing.T) {
	p := NewPlanner(200)
	essay := essayWithPartner(false, false)

	notifs := p.PlanJoin(essay, "partner")
	require.Len(t, notifs, 2)

	assert.Equal(t, "creator", notifs[0].Recipient)
	assert.Equal(t, IntentJoinedNotice, notifs[0].Intent)
	assert.Equal(t, "Bob", notifs[0].ActorName)
	assert.Equal(t, essay.Topic, notifs[0].Topic)

	// 加入者收到执笔提示，附带开篇预览
	assert.Equal(t, "partner", notifs[1].Recipient)
	assert.Equal(t, IntentPromptWrite, notifs[1].Intent)
	assert.Equal(t, "it began at dusk", notifs[1].Content)
}

func TestPlanJoinAnonymousActor(t *testing.T) {
	p := NewPlanner(200)
	essay := essayWithPartner(false, true)

	notifs := p.PlanJoin(essay, "partner")
	require.Len(t, notifs, 2)

	// 匿名搭档在创建者的通知里显示占位名
	assert.Equal(t, AnonymousName, notifs[0].ActorName)
}

func TestPlanTurn(t *testing.T) {
	p := NewPlanner(200)
	essay := essayWithPartner(false, false)

	notifs := p.PlanTurn(essay, "partner", "the waves rose higher")
	require.Len(t, notifs, 1)

	n := notifs[0]
	assert.Equal(t, "creator", n.Recipient)
	assert.Equal(t, IntentTurnNotice, n.Intent)
	assert.Equal(t, "Bob", n.ActorName)
	assert.Equal(t, "the waves rose higher", n.Content)
	assert.Equal(t, 4, n.WordCount)
}

func TestPlanTurnSnippetTruncation(t *testing.T) {
	p := NewPlanner(10)
	essay := essayWithPartner(false, false)

	long := strings.Repeat("a", 30)
	notifs := p.PlanTurn(essay, "partner", long)
	require.Len(t, notifs, 1)
	assert.Equal(t, strings.Repeat("a", 10)+"...", notifs[0].Content)
}

func TestPlanTurnSnippetMultibyte(t *testing.T) {
	// 截断按字符而非字节，不得产生非法 UTF-8
	p := NewPlanner(2)
	essay := essayWithPartner(false, false)

	notifs := p.PlanTurn(essay, "partner", "héllo")
	require.Len(t, notifs, 1)
	assert.Equal(t, "hé...", notifs[0].Content)
	assert.True(t, utf8.ValidString(notifs[0].Content))

	notifs = p.PlanTurn(essay, "partner", "黄昏的海面上")
	require.Len(t, notifs, 1)
	assert.Equal(t, "黄昏...", notifs[0].Content)
	assert.True(t, utf8.ValidString(notifs[0].Content))
}

func TestPlanTurnAnonymousCreator(t *testing.T) {
	p := NewPlanner(200)
	essay := essayWithPartner(true, false)

	notifs := p.PlanTurn(essay, "creator", "and the light held")
	require.Len(t, notifs, 1)
	assert.Equal(t, "partner", notifs[0].Recipient)
	assert.Equal(t, AnonymousName, notifs[0].ActorName)
}

func TestPlanFinishVoteOffer(t *testing.T) {
	p := NewPlanner(200)
	essay := essayWithPartner(false, false)

	notifs := p.PlanFinishVote(essay, "creator", false)
	require.Len(t, notifs, 1)
	assert.Equal(t, "partner", notifs[0].Recipient)
	assert.Equal(t, IntentFinishOffer, notifs[0].Intent)
	assert.Equal(t, "Alice", notifs[0].ActorName)
}

func TestPlanFinishVoteAccepted(t *testing.T) {
	p := NewPlanner(200)
	essay := essayWithPartner(false, false)
	essay.Status = entity.EssayStatusComplete
	essay.ArtifactPath = "essays/" + essay.ID + ".pdf"

	// 无论哪一方投出最后一票，双方各收到一条完成通知
	for _, actor := range []string{"creator", "partner"} {
		notifs := p.PlanFinishVote(essay, actor, true)
		require.Len(t, notifs, 2)

		recipients := []string{notifs[0].Recipient, notifs[1].Recipient}
		assert.ElementsMatch(t, []string{"creator", "partner"}, recipients)
		for _, n := range notifs {
			assert.Equal(t, IntentFinishAccepted, n.Intent)
			assert.Equal(t, essay.ArtifactPath, n.ArtifactPath)
		}
	}
}

func TestPlanFinishDecline(t *testing.T) {
	p := NewPlanner(200)
	essay := essayWithPartner(false, false)

	notifs := p.PlanFinishDecline(essay, "partner")
	require.Len(t, notifs, 1)
	assert.Equal(t, "creator", notifs[0].Recipient)
	assert.Equal(t, IntentFinishDeclined, notifs[0].Intent)
	assert.Equal(t, "Bob", notifs[0].ActorName)
}

func TestPlanWithoutPartner(t *testing.T) {
	p := NewPlanner(200)
	essay := entity.NewEssay("creator", "Alice", "The Old Lighthouse", false)

	assert.Nil(t, p.PlanTurn(essay, "creator", "text"))
	assert.Nil(t, p.PlanFinishVote(essay, "creator", false))
	assert.Nil(t, p.PlanFinishDecline(essay, "creator"))
}
