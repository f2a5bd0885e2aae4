package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essay-duet-api/internal/domain/entity"
	"essay-duet-api/pkg/errors"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func newTestEssay() *entity.Essay {
	return entity.NewEssay("creator", "Alice", "The Old Lighthouse", false)
}

func newInProgressEssay() *entity.Essay {
	essay := newTestEssay()
	rules := NewRules(50)
	rules.ApplyOpening(essay, "it began at dusk")
	rules.ApplyJoin(essay, entity.NewPartner(essay.ID, "partner", "Bob", false))
	return essay
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   "))
	assert.Equal(t, 3, CountWords("one two three"))
	assert.Equal(t, 3, CountWords("  one\ttwo\nthree  "))
}

func TestCheckLengthBoundary(t *testing.T) {
	rules := NewRules(50)

	assert.NoError(t, rules.CheckLength(words(1)))
	assert.NoError(t, rules.CheckLength(words(50)))

	err := rules.CheckLength(words(51))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTooLong))

	err = rules.CheckLength("")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestOpeningFlow(t *testing.T) {
	rules := NewRules(50)
	essay := newTestEssay()

	// 非创建者不能提交开篇
	err := rules.CheckOpening(essay, "stranger", "hello there")
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	require.NoError(t, rules.CheckOpening(essay, "creator", "it began at dusk"))
	rules.ApplyOpening(essay, "it began at dusk")

	assert.Equal(t, entity.EssayStatusAwaitingPartner, essay.Status)
	assert.Equal(t, "creator", essay.LastWriterID)
	assert.Equal(t, "it began at dusk", essay.OpeningContent)

	// 已过开篇阶段，重复提交被拒
	err = rules.CheckOpening(essay, "creator", "again")
	assert.True(t, errors.IsCode(err, errors.CodeNoOpening))
}

func TestCheckJoinPriority(t *testing.T) {
	rules := NewRules(50)
	essay := newTestEssay()
	rules.ApplyOpening(essay, "it began at dusk")

	// 创建者不能加入自己的文章
	err := rules.CheckJoin(essay, "creator")
	assert.True(t, errors.IsCode(err, errors.CodeSelfJoin))

	require.NoError(t, rules.CheckJoin(essay, "partner"))
	rules.ApplyJoin(essay, entity.NewPartner(essay.ID, "partner", "Bob", false))
	assert.Equal(t, entity.EssayStatusInProgress, essay.Status)

	// 已是搭档
	err = rules.CheckJoin(essay, "partner")
	assert.True(t, errors.IsCode(err, errors.CodeAlreadyJoined))

	// 第三人：已满
	err = rules.CheckJoin(essay, "third")
	assert.True(t, errors.IsCode(err, errors.CodeFull))
}

func TestCheckJoinNotJoinable(t *testing.T) {
	rules := NewRules(50)
	essay := newTestEssay()

	// 开篇未提交，不可加入
	err := rules.CheckJoin(essay, "partner")
	assert.True(t, errors.IsCode(err, errors.CodeNotJoinable))
}

func TestTurnAlternation(t *testing.T) {
	rules := NewRules(50)
	essay := newInProgressEssay()

	// 刚加入时期望搭档先写，创建者被拒
	assert.Equal(t, "partner", rules.NextWriter(essay))
	err := rules.CheckTurn(essay, "creator", "more words")
	assert.True(t, errors.IsCode(err, errors.CodeNotYourTurn))

	require.NoError(t, rules.CheckTurn(essay, "partner", "the waves rose"))
	role := rules.ApplyTurn(essay, "partner", "the waves rose")
	assert.Equal(t, RolePartner, role)
	assert.Equal(t, "the waves rose", essay.ContinuationContent)
	assert.Equal(t, "partner", essay.LastWriterID)
	assert.Equal(t, "creator", rules.NextWriter(essay))

	// 搭档连续提交被拒
	err = rules.CheckTurn(essay, "partner", "again")
	assert.True(t, errors.IsCode(err, errors.CodeNotYourTurn))

	require.NoError(t, rules.CheckTurn(essay, "creator", "and the light held"))
	role = rules.ApplyTurn(essay, "creator", "and the light held")
	assert.Equal(t, RoleCreator, role)

	// 创建者内容以空格拼接追加
	assert.Equal(t, "it began at dusk and the light held", essay.OpeningContent)
	assert.Equal(t, "partner", rules.NextWriter(essay))
}

func TestCheckTurnRejections(t *testing.T) {
	rules := NewRules(50)

	// 状态不对
	essay := newTestEssay()
	err := rules.CheckTurn(essay, "creator", "hello")
	assert.True(t, errors.IsCode(err, errors.CodeNotInProgress))

	essay = newInProgressEssay()

	// 非参与方
	err = rules.CheckTurn(essay, "stranger", "hello")
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	// 超长：拒绝而非截断
	err = rules.CheckTurn(essay, "partner", words(51))
	assert.True(t, errors.IsCode(err, errors.CodeTooLong))
	assert.Empty(t, essay.ContinuationContent)
}

func TestApplyTurnClearsFinishVotes(t *testing.T) {
	rules := NewRules(50)
	essay := newInProgressEssay()

	completed, err := rules.CastFinishVote(essay, "creator")
	require.NoError(t, err)
	assert.False(t, completed)
	assert.True(t, essay.HasFinishVote("creator"))

	// 新回合作废所有在途投票
	rules.ApplyTurn(essay, "partner", "the waves rose")
	assert.Empty(t, essay.FinishVotes)
}

func TestFinishVoteCompletion(t *testing.T) {
	rules := NewRules(50)
	essay := newInProgressEssay()

	completed, err := rules.CastFinishVote(essay, "partner")
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, entity.EssayStatusInProgress, essay.Status)

	// 同一人重复投票不触发完成
	completed, err = rules.CastFinishVote(essay, "partner")
	require.NoError(t, err)
	assert.False(t, completed)

	completed, err = rules.CastFinishVote(essay, "creator")
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, entity.EssayStatusComplete, essay.Status)

	// 完成后不再接受投票
	_, err = rules.CastFinishVote(essay, "partner")
	assert.True(t, errors.IsCode(err, errors.CodeNotInProgress))
}

func TestDeclineFinish(t *testing.T) {
	rules := NewRules(50)
	essay := newInProgressEssay()

	_, err := rules.CastFinishVote(essay, "creator")
	require.NoError(t, err)

	require.NoError(t, rules.DeclineFinish(essay, "partner"))
	assert.Empty(t, essay.FinishVotes)
	assert.Equal(t, entity.EssayStatusInProgress, essay.Status)

	// 拒绝后写作继续，搭档仍可出手
	require.NoError(t, rules.CheckTurn(essay, "partner", "the waves rose"))
}
