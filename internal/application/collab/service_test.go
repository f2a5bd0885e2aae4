package collab

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essay-duet-api/internal/domain/entity"
	"essay-duet-api/internal/domain/service"
	apperrors "essay-duet-api/pkg/errors"
)

// fakeEssayRepo 内存文章仓储
type fakeEssayRepo struct {
	essays   map[string]*entity.Essay
	partners []*entity.Partner
}

func newFakeEssayRepo() *fakeEssayRepo {
	return &fakeEssayRepo{essays: make(map[string]*entity.Essay)}
}

func (r *fakeEssayRepo) Create(_ context.Context, essay *entity.Essay) error {
	r.essays[essay.ID] = essay
	return nil
}

func (r *fakeEssayRepo) GetByID(_ context.Context, id string) (*entity.Essay, error) {
	return r.essays[id], nil
}

func (r *fakeEssayRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Essay, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeEssayRepo) Update(_ context.Context, essay *entity.Essay) error {
	r.essays[essay.ID] = essay
	return nil
}

func (r *fakeEssayRepo) AddPartner(_ context.Context, partner *entity.Partner) error {
	r.partners = append(r.partners, partner)
	return nil
}

func (r *fakeEssayRepo) ListByCreator(_ context.Context, creatorID string) ([]*entity.Essay, error) {
	var out []*entity.Essay
	for _, e := range r.essays {
		if e.CreatorID == creatorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEssayRepo) ListByPartner(_ context.Context, partnerID string) ([]*entity.Essay, error) {
	var out []*entity.Essay
	for _, e := range r.essays {
		if e.Partner != nil && e.Partner.PartnerID == partnerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEssayRepo) ListAvailable(_ context.Context, excludeUserID string) ([]*entity.Essay, error) {
	var out []*entity.Essay
	for _, e := range r.essays {
		if e.Status == entity.EssayStatusAwaitingPartner && e.CreatorID != excludeUserID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeSessionRepo 内存会话仓储
type fakeSessionRepo struct {
	sessions map[string]*entity.UserSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.UserSession)}
}

func (r *fakeSessionRepo) Set(_ context.Context, session *entity.UserSession) error {
	r.sessions[session.UserID] = session
	return nil
}

func (r *fakeSessionRepo) Get(_ context.Context, userID string) (*entity.UserSession, error) {
	return r.sessions[userID], nil
}

func (r *fakeSessionRepo) Clear(_ context.Context, userID string) error {
	delete(r.sessions, userID)
	return nil
}

// fakeTx 直接执行事务函数
type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeDraftStore 内存草稿暂存
type fakeDraftStore struct {
	drafts map[string]*Draft
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: make(map[string]*Draft)}
}

func (s *fakeDraftStore) key(userID, essayID string) string {
	return userID + ":" + essayID
}

func (s *fakeDraftStore) Put(_ context.Context, draft *Draft) error {
	s.drafts[s.key(draft.UserID, draft.EssayID)] = draft
	return nil
}

func (s *fakeDraftStore) Get(_ context.Context, userID, essayID string) (*Draft, error) {
	return s.drafts[s.key(userID, essayID)], nil
}

func (s *fakeDraftStore) Delete(_ context.Context, userID, essayID string) error {
	delete(s.drafts, s.key(userID, essayID))
	return nil
}

// recordingPublisher 记录所有发布的通知
type recordingPublisher struct {
	published []service.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, notifs []service.Notification) error {
	p.published = append(p.published, notifs...)
	return nil
}

func (p *recordingPublisher) intents() []service.Intent {
	out := make([]service.Intent, 0, len(p.published))
	for _, n := range p.published {
		out = append(out, n.Intent)
	}
	return out
}

// fakeExporter 可注入失败的导出器
type fakeExporter struct {
	calls int
	fail  bool
}

func (e *fakeExporter) Export(_ context.Context, essay *entity.Essay) (string, error) {
	e.calls++
	if e.fail {
		return "", errors.New("disk full")
	}
	return fmt.Sprintf("essays/%s.pdf", essay.ID), nil
}

type fixture struct {
	svc       *Service
	essayRepo *fakeEssayRepo
	sessions  *fakeSessionRepo
	drafts    *fakeDraftStore
	publisher *recordingPublisher
	exporter  *fakeExporter
}

func newFixture() *fixture {
	f := &fixture{
		essayRepo: newFakeEssayRepo(),
		sessions:  newFakeSessionRepo(),
		drafts:    newFakeDraftStore(),
		publisher: &recordingPublisher{},
		exporter:  &fakeExporter{},
	}
	f.svc = NewService(
		f.essayRepo, f.sessions, fakeTx{}, f.drafts, f.publisher, f.exporter,
		service.NewRules(50), service.NewPlanner(200),
	)
	return f
}

// setupInProgress 建到双人协作进行中：开篇已写，搭档已加入
func (f *fixture) setupInProgress(t *testing.T) *entity.Essay {
	t.Helper()
	ctx := context.Background()
	essay, err := f.svc.Create(ctx, "creator", "Alice", "The Old Lighthouse", false)
	require.NoError(t, err)
	_, err = f.svc.SubmitOpening(ctx, "creator", essay.ID, "it began at dusk")
	require.NoError(t, err)
	essay, err = f.svc.Join(ctx, "partner", "Bob", essay.ID, false)
	require.NoError(t, err)
	f.publisher.published = nil
	return essay
}

// submitTurn 走完整的预览加确认两步
func (f *fixture) submitTurn(t *testing.T, userID, essayID, text string) *entity.Essay {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.PreviewTurn(ctx, userID, essayID, text)
	require.NoError(t, err)
	essay, err := f.svc.ConfirmTurn(ctx, userID, essayID)
	require.NoError(t, err)
	return essay
}

func TestCreateBindsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	essay, err := f.svc.Create(ctx, "creator", "Alice", "The Old Lighthouse", false)
	require.NoError(t, err)
	assert.Equal(t, entity.EssayStatusAwaitingOpening, essay.Status)

	session, err := f.sessions.Get(ctx, "creator")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, essay.ID, session.EssayID)
}

func TestCreateRequiresTopic(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), "creator", "Alice", "", false)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestJoinPublishesAndBindsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	essay, err := f.svc.Create(ctx, "creator", "Alice", "The Old Lighthouse", false)
	require.NoError(t, err)
	_, err = f.svc.SubmitOpening(ctx, "creator", essay.ID, "it began at dusk")
	require.NoError(t, err)

	essay, err = f.svc.Join(ctx, "partner", "Bob", essay.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entity.EssayStatusInProgress, essay.Status)

	assert.ElementsMatch(t,
		[]service.Intent{service.IntentJoinedNotice, service.IntentPromptWrite},
		f.publisher.intents())

	session, err := f.sessions.Get(ctx, "partner")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, essay.ID, session.EssayID)
}

func TestPreviewConfirmFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	essay := f.setupInProgress(t)

	draft, err := f.svc.PreviewTurn(ctx, "partner", essay.ID, "the waves rose")
	require.NoError(t, err)
	assert.Equal(t, 3, draft.WordCount)

	// 预览不落库
	stored, err := f.essayRepo.GetByID(ctx, essay.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ContinuationContent)

	essay, err = f.svc.ConfirmTurn(ctx, "partner", essay.ID)
	require.NoError(t, err)
	assert.Equal(t, "the waves rose", essay.ContinuationContent)
	assert.Equal(t, "partner", essay.LastWriterID)

	// 确认后草稿被清理，通知已发布
	d, err := f.drafts.Get(ctx, "partner", essay.ID)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Equal(t, []service.Intent{service.IntentTurnNotice}, f.publisher.intents())
}

func TestConfirmWithoutDraft(t *testing.T) {
	f := newFixture()
	essay := f.setupInProgress(t)

	_, err := f.svc.ConfirmTurn(context.Background(), "partner", essay.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDraftNotFound))
}

func TestConfirmRevalidatesTurn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	essay := f.setupInProgress(t)

	// 搭档预览后，文章状态在确认前发生变化
	_, err := f.svc.PreviewTurn(ctx, "partner", essay.ID, "the waves rose")
	require.NoError(t, err)

	stored, err := f.essayRepo.GetByID(ctx, essay.ID)
	require.NoError(t, err)
	stored.Status = entity.EssayStatusComplete
	require.NoError(t, f.essayRepo.Update(ctx, stored))

	_, err = f.svc.ConfirmTurn(ctx, "partner", essay.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotInProgress))
}

func TestSessionRouting(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	essay := f.setupInProgress(t)

	// essayID 为空时按会话路由到搭档最近加入的文章
	draft, err := f.svc.PreviewTurn(ctx, "partner", "", "the waves rose")
	require.NoError(t, err)
	assert.Equal(t, essay.ID, draft.EssayID)

	// 确认落库后会话被清理
	_, err = f.svc.ConfirmTurn(ctx, "partner", "")
	require.NoError(t, err)
	session, err := f.sessions.Get(ctx, "partner")
	require.NoError(t, err)
	assert.Nil(t, session)

	// 无会话的用户被拒
	_, err = f.svc.PreviewTurn(ctx, "stranger", "", "hello")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSessionNotFound))
}

func TestAlternatingTurnsClearVotes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	essay := f.setupInProgress(t)

	f.submitTurn(t, "partner", essay.ID, "the waves rose")

	_, completed, err := f.svc.RequestFinish(ctx, "creator", essay.ID)
	require.NoError(t, err)
	assert.False(t, completed)

	// 新回合作废在途投票
	updated := f.submitTurn(t, "creator", essay.ID, "and the light held")
	assert.Empty(t, updated.FinishVotes)
	assert.Equal(t, "it began at dusk and the light held", updated.OpeningContent)
}

func TestRequestFinishCompletesAndExports(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	essay := f.setupInProgress(t)

	_, completed, err := f.svc.RequestFinish(ctx, "creator", essay.ID)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, []service.Intent{service.IntentFinishOffer}, f.publisher.intents())

	updated, completed, err := f.svc.RequestFinish(ctx, "partner", essay.ID)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, entity.EssayStatusComplete, updated.Status)
	assert.Equal(t, "essays/"+essay.ID+".pdf", updated.ArtifactPath)
	assert.Equal(t, 1, f.exporter.calls)

	// 双方各收到一条完成通知
	var accepted int
	for _, n := range f.publisher.published {
		if n.Intent == service.IntentFinishAccepted {
			accepted++
		}
	}
	assert.Equal(t, 2, accepted)
}

func TestExportFailureKeepsCompletion(t *testing.T) {
	f := newFixture()
	f.exporter.fail = true
	ctx := context.Background()
	essay := f.setupInProgress(t)

	_, _, err := f.svc.RequestFinish(ctx, "creator", essay.ID)
	require.NoError(t, err)

	returned, completed, err := f.svc.RequestFinish(ctx, "partner", essay.ID)
	assert.True(t, completed)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeExportFailed))
	require.NotNil(t, returned)

	// 完成状态已持久化，导出失败不回滚
	stored, getErr := f.essayRepo.GetByID(ctx, essay.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.EssayStatusComplete, stored.Status)
	assert.Empty(t, stored.ArtifactPath)

	// 修复后重试导出成功
	f.exporter.fail = false
	retried, retryErr := f.svc.Export(ctx, "creator", essay.ID)
	require.NoError(t, retryErr)
	assert.Equal(t, "essays/"+essay.ID+".pdf", retried.ArtifactPath)
}

func TestExportRequiresCompletion(t *testing.T) {
	f := newFixture()
	essay := f.setupInProgress(t)

	_, err := f.svc.Export(context.Background(), "creator", essay.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeExportFailed))
	assert.Equal(t, 0, f.exporter.calls)
}

func TestDeclineFinishClearsVotes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	essay := f.setupInProgress(t)

	_, completed, err := f.svc.RequestFinish(ctx, "creator", essay.ID)
	require.NoError(t, err)
	require.False(t, completed)

	declined, err := f.svc.DeclineFinish(ctx, "partner", essay.ID)
	require.NoError(t, err)
	assert.Empty(t, declined.FinishVotes)
	assert.Equal(t, entity.EssayStatusInProgress, declined.Status)
	assert.Contains(t, f.publisher.intents(), service.IntentFinishDeclined)
}

func TestGetPartyOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	essay := f.setupInProgress(t)

	_, err := f.svc.Get(ctx, "stranger", essay.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	got, err := f.svc.Get(ctx, "partner", essay.ID)
	require.NoError(t, err)
	assert.Equal(t, essay.ID, got.ID)
}

func TestYourTurn(t *testing.T) {
	f := newFixture()
	essay := f.setupInProgress(t)

	// 刚加入后轮到搭档
	assert.True(t, f.svc.YourTurn(essay, "partner"))
	assert.False(t, f.svc.YourTurn(essay, "creator"))

	essay = f.submitTurn(t, "partner", essay.ID, "the waves rose")
	assert.True(t, f.svc.YourTurn(essay, "creator"))
	assert.False(t, f.svc.YourTurn(essay, "partner"))
}
