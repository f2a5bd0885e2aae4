package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEssay(t *testing.T) {
	essay := NewEssay("u1", "Alice", "The Old Lighthouse", false)

	require.NotEmpty(t, essay.ID)
	assert.Equal(t, EssayStatusAwaitingOpening, essay.Status)
	assert.Equal(t, "u1", essay.CreatorID)
	assert.Empty(t, essay.LastWriterID)
	assert.Empty(t, essay.FinishVotes)
	assert.False(t, essay.HasPartner())
}

func TestEssayParties(t *testing.T) {
	essay := NewEssay("u1", "Alice", "topic", false)
	essay.Partner = NewPartner(essay.ID, "u2", "Bob", false)

	assert.True(t, essay.IsCreator("u1"))
	assert.False(t, essay.IsCreator("u2"))
	assert.True(t, essay.IsPartner("u2"))
	assert.True(t, essay.IsParty("u1"))
	assert.True(t, essay.IsParty("u2"))
	assert.False(t, essay.IsParty("u3"))

	assert.Equal(t, "u2", essay.Counterpart("u1"))
	assert.Equal(t, "u1", essay.Counterpart("u2"))
	assert.Empty(t, essay.Counterpart("u3"))
}

func TestEssayCounterpartWithoutPartner(t *testing.T) {
	essay := NewEssay("u1", "Alice", "topic", false)
	assert.Empty(t, essay.Counterpart("u1"))
}

func TestAddFinishVote(t *testing.T) {
	essay := NewEssay("u1", "Alice", "topic", false)

	essay.AddFinishVote("u1")
	assert.True(t, essay.HasFinishVote("u1"))
	assert.Len(t, essay.FinishVotes, 1)

	// 重复投票幂等
	essay.AddFinishVote("u1")
	assert.Len(t, essay.FinishVotes, 1)
	assert.False(t, essay.FinishAgreed())

	essay.AddFinishVote("u2")
	assert.Len(t, essay.FinishVotes, 2)
	assert.True(t, essay.FinishAgreed())

	// 容量已满，继续追加无效
	essay.AddFinishVote("u3")
	assert.Len(t, essay.FinishVotes, 2)
}

func TestClearFinishVotes(t *testing.T) {
	essay := NewEssay("u1", "Alice", "topic", false)
	essay.AddFinishVote("u1")
	essay.AddFinishVote("u2")

	essay.ClearFinishVotes()
	assert.Empty(t, essay.FinishVotes)
	assert.False(t, essay.FinishAgreed())
}

func TestFullContent(t *testing.T) {
	essay := NewEssay("u1", "Alice", "topic", false)
	assert.Empty(t, essay.FullContent())

	essay.OpeningContent = "once upon a time"
	assert.Equal(t, "once upon a time", essay.FullContent())

	essay.ContinuationContent = "the end"
	assert.Equal(t, "once upon a time\n\nthe end", essay.FullContent())
}
