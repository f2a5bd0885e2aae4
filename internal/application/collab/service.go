package collab

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"essay-duet-api/internal/domain/entity"
	"essay-duet-api/internal/domain/repository"
	"essay-duet-api/internal/domain/service"
	"essay-duet-api/pkg/errors"
	"essay-duet-api/pkg/logger"
	"essay-duet-api/pkg/metrics"
)

// Service 协作写作应用服务
//
// 所有状态变更在行锁事务内执行：先加锁重读，再校验规则，
// 最后落库。通知在事务提交后发布，导出失败不回滚完成状态。
type Service struct {
	essayRepo   repository.EssayRepository
	sessionRepo repository.SessionRepository
	tx          repository.Transactor
	drafts      DraftStore
	publisher   NotificationPublisher
	exporter    Exporter
	rules       *service.Rules
	planner     *service.Planner
	sf          singleflight.Group
}

// NewService 创建协作应用服务
func NewService(
	essayRepo repository.EssayRepository,
	sessionRepo repository.SessionRepository,
	tx repository.Transactor,
	drafts DraftStore,
	publisher NotificationPublisher,
	exporter Exporter,
	rules *service.Rules,
	planner *service.Planner,
) *Service {
	return &Service{
		essayRepo:   essayRepo,
		sessionRepo: sessionRepo,
		tx:          tx,
		drafts:      drafts,
		publisher:   publisher,
		exporter:    exporter,
		rules:       rules,
		planner:     planner,
	}
}

// Create 创建文章，创建者会话随之指向新文章
func (s *Service) Create(ctx context.Context, userID, userName, topic string, isAnonymous bool) (*entity.Essay, error) {
	if topic == "" {
		return nil, errors.ErrInvalidParam.WithDetail("topic is required")
	}
	essay := entity.NewEssay(userID, userName, topic, isAnonymous)
	if err := s.essayRepo.Create(ctx, essay); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "create essay failed")
	}
	if err := s.sessionRepo.Set(ctx, &entity.UserSession{UserID: userID, EssayID: essay.ID}); err != nil {
		logger.Warn(ctx, "绑定用户会话失败", "user_id", userID, "essay_id", essay.ID)
	}
	metrics.EssaysCreatedTotal.Inc()
	logger.Info(ctx, "文章已创建", "essay_id", essay.ID, "creator_id", userID)
	return essay, nil
}

// SubmitOpening 创建者提交开篇，文章进入等待搭档状态
func (s *Service) SubmitOpening(ctx context.Context, userID, essayID, text string) (*entity.Essay, error) {
	var essay *entity.Essay
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		essay, err = s.lockEssay(ctx, essayID)
		if err != nil {
			return err
		}
		if err := s.rules.CheckOpening(essay, userID, text); err != nil {
			return err
		}
		s.rules.ApplyOpening(essay, text)
		return s.essayRepo.Update(ctx, essay)
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}
	metrics.TurnsSubmittedTotal.WithLabelValues(string(service.RoleCreator)).Inc()
	logger.Info(ctx, "开篇已提交", "essay_id", essay.ID,
		"word_count", service.CountWords(text))
	return essay, nil
}

// Join 加入他人文章成为搭档，加入者会话随之指向该文章
func (s *Service) Join(ctx context.Context, userID, userName, essayID string, isAnonymous bool) (*entity.Essay, error) {
	var essay *entity.Essay
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		essay, err = s.lockEssay(ctx, essayID)
		if err != nil {
			return err
		}
		if err := s.rules.CheckJoin(essay, userID); err != nil {
			return err
		}
		partner := entity.NewPartner(essay.ID, userID, userName, isAnonymous)
		if err := s.essayRepo.AddPartner(ctx, partner); err != nil {
			return errors.Wrap(err, errors.CodeDatabaseError, "add partner failed")
		}
		s.rules.ApplyJoin(essay, partner)
		return s.essayRepo.Update(ctx, essay)
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Set(ctx, &entity.UserSession{UserID: userID, EssayID: essay.ID}); err != nil {
		logger.Warn(ctx, "绑定用户会话失败", "user_id", userID, "essay_id", essay.ID)
	}
	s.publish(ctx, s.planner.PlanJoin(essay, userID))
	logger.Info(ctx, "搭档已加入", "essay_id", essay.ID, "partner_id", userID)
	return essay, nil
}

// PreviewTurn 预览回合提交：校验通过后暂存草稿，等待确认
// essayID 为空时按用户会话路由
func (s *Service) PreviewTurn(ctx context.Context, userID, essayID, text string) (*Draft, error) {
	essayID, err := s.resolveEssayID(ctx, userID, essayID)
	if err != nil {
		return nil, err
	}
	essay, err := s.getEssay(ctx, essayID)
	if err != nil {
		return nil, err
	}
	if err := s.rules.CheckTurn(essay, userID, text); err != nil {
		s.recordRejection(err)
		return nil, err
	}
	draft := &Draft{
		UserID:    userID,
		EssayID:   essayID,
		Text:      text,
		WordCount: service.CountWords(text),
	}
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "store draft failed")
	}
	if err := s.sessionRepo.Set(ctx, &entity.UserSession{UserID: userID, EssayID: essayID}); err != nil {
		logger.Warn(ctx, "绑定用户会话失败", "user_id", userID, "essay_id", essayID)
	}
	return draft, nil
}

// ConfirmTurn 确认草稿：在行锁事务内重新校验后落库
// 锁内重校验覆盖预览与确认之间的并发状态变化
func (s *Service) ConfirmTurn(ctx context.Context, userID, essayID string) (*entity.Essay, error) {
	essayID, err := s.resolveEssayID(ctx, userID, essayID)
	if err != nil {
		return nil, err
	}
	draft, err := s.drafts.Get(ctx, userID, essayID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "load draft failed")
	}
	if draft == nil {
		return nil, errors.ErrDraftNotFound
	}

	var essay *entity.Essay
	var role service.Role
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		essay, err = s.lockEssay(ctx, essayID)
		if err != nil {
			return err
		}
		if err := s.rules.CheckTurn(essay, userID, draft.Text); err != nil {
			return err
		}
		role = s.rules.ApplyTurn(essay, userID, draft.Text)
		return s.essayRepo.Update(ctx, essay)
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	if err := s.drafts.Delete(ctx, userID, essayID); err != nil {
		logger.Warn(ctx, "清理草稿失败", "user_id", userID, "essay_id", essayID)
	}
	// 回合落库后会话指向失效，清掉以免误路由后续输入
	if err := s.sessionRepo.Clear(ctx, userID); err != nil {
		logger.Warn(ctx, "清理用户会话失败", "user_id", userID)
	}
	metrics.TurnsSubmittedTotal.WithLabelValues(string(role)).Inc()
	s.publish(ctx, s.planner.PlanTurn(essay, userID, draft.Text))
	logger.Info(ctx, "回合已确认", "essay_id", essay.ID, "writer_id", userID,
		"role", string(role), "word_count", draft.WordCount)
	return essay, nil
}

// RequestFinish 发起或附议结束提议
// 双方均投票后文章完成并同步导出；导出失败不影响完成状态，
// 错误单独返回供调用方提示重试
func (s *Service) RequestFinish(ctx context.Context, userID, essayID string) (*entity.Essay, bool, error) {
	essayID, err := s.resolveEssayID(ctx, userID, essayID)
	if err != nil {
		return nil, false, err
	}

	var essay *entity.Essay
	var completed bool
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		essay, err = s.lockEssay(ctx, essayID)
		if err != nil {
			return err
		}
		completed, err = s.rules.CastFinishVote(essay, userID)
		if err != nil {
			return err
		}
		return s.essayRepo.Update(ctx, essay)
	})
	if err != nil {
		return nil, false, err
	}

	var exportErr error
	if completed {
		metrics.EssaysCompletedTotal.Inc()
		exportErr = s.export(ctx, essay)
	}
	s.publish(ctx, s.planner.PlanFinishVote(essay, userID, completed))
	logger.Info(ctx, "结束投票已记录", "essay_id", essay.ID,
		"voter_id", userID, "completed", completed)
	return essay, completed, exportErr
}

// DeclineFinish 拒绝结束提议，清空全部投票
func (s *Service) DeclineFinish(ctx context.Context, userID, essayID string) (*entity.Essay, error) {
	essayID, err := s.resolveEssayID(ctx, userID, essayID)
	if err != nil {
		return nil, err
	}

	var essay *entity.Essay
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		essay, err = s.lockEssay(ctx, essayID)
		if err != nil {
			return err
		}
		if err := s.rules.DeclineFinish(essay, userID); err != nil {
			return err
		}
		return s.essayRepo.Update(ctx, essay)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, s.planner.PlanFinishDecline(essay, userID))
	logger.Info(ctx, "结束提议已拒绝", "essay_id", essay.ID, "decliner_id", userID)
	return essay, nil
}

// Export 重新导出已完成的文章
func (s *Service) Export(ctx context.Context, userID, essayID string) (*entity.Essay, error) {
	essay, err := s.getEssay(ctx, essayID)
	if err != nil {
		return nil, err
	}
	if !essay.IsParty(userID) {
		return nil, errors.ErrForbidden
	}
	if essay.Status != entity.EssayStatusComplete {
		return nil, errors.ErrExportFailed.WithDetail("essay is not complete")
	}
	if err := s.export(ctx, essay); err != nil {
		return nil, err
	}
	return essay, nil
}

// Get 查询文章详情，仅参与方可见
func (s *Service) Get(ctx context.Context, userID, essayID string) (*entity.Essay, error) {
	essay, err := s.getEssay(ctx, essayID)
	if err != nil {
		return nil, err
	}
	if !essay.IsParty(userID) {
		return nil, errors.ErrForbidden
	}
	return essay, nil
}

// ListCreated 查询用户创建的文章
func (s *Service) ListCreated(ctx context.Context, userID string) ([]*entity.Essay, error) {
	essays, err := s.essayRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "list essays failed")
	}
	return essays, nil
}

// ListJoined 查询用户作为搭档参与的文章
func (s *Service) ListJoined(ctx context.Context, userID string) ([]*entity.Essay, error) {
	essays, err := s.essayRepo.ListByPartner(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "list essays failed")
	}
	return essays, nil
}

// ListAvailable 查询可加入的文章，排除用户自己创建的
func (s *Service) ListAvailable(ctx context.Context, userID string) ([]*entity.Essay, error) {
	essays, err := s.essayRepo.ListAvailable(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "list essays failed")
	}
	return essays, nil
}

// YourTurn 判断当前是否轮到该用户执笔
func (s *Service) YourTurn(essay *entity.Essay, userID string) bool {
	if essay.Status != entity.EssayStatusInProgress {
		return false
	}
	return s.rules.NextWriter(essay) == userID
}

// resolveEssayID 解析目标文章：显式 ID 优先，否则回退到用户会话
func (s *Service) resolveEssayID(ctx context.Context, userID, essayID string) (string, error) {
	if essayID != "" {
		return essayID, nil
	}
	session, err := s.sessionRepo.Get(ctx, userID)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeDatabaseError, "load session failed")
	}
	if session == nil {
		return "", errors.ErrSessionNotFound
	}
	return session.EssayID, nil
}

// getEssay 读路径走 singleflight，同一篇文章的并发读合并为一次查询
func (s *Service) getEssay(ctx context.Context, essayID string) (*entity.Essay, error) {
	v, err, _ := s.sf.Do(essayID, func() (interface{}, error) {
		return s.essayRepo.GetByID(ctx, essayID)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "load essay failed")
	}
	essay, _ := v.(*entity.Essay)
	if essay == nil {
		return nil, errors.ErrEssayNotFound
	}
	return essay, nil
}

func (s *Service) lockEssay(ctx context.Context, essayID string) (*entity.Essay, error) {
	essay, err := s.essayRepo.GetByIDForUpdate(ctx, essayID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "lock essay failed")
	}
	if essay == nil {
		return nil, errors.ErrEssayNotFound
	}
	return essay, nil
}

// export 执行导出并持久化产物路径，计时与结果计入指标
func (s *Service) export(ctx context.Context, essay *entity.Essay) error {
	start := time.Now()
	path, err := s.exporter.Export(ctx, essay)
	metrics.ExportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("failure").Inc()
		logger.Error(ctx, "文章导出失败", err, "essay_id", essay.ID)
		return errors.ErrExportFailed.WithError(err)
	}
	metrics.ExportsTotal.WithLabelValues("success").Inc()
	essay.ArtifactPath = path
	if err := s.essayRepo.Update(ctx, essay); err != nil {
		logger.Error(ctx, "保存产物路径失败", err, "essay_id", essay.ID)
	}
	logger.Info(ctx, "文章已导出", "essay_id", essay.ID, "path", path)
	return nil
}

// publish 发布通知到消息流，失败只记日志
func (s *Service) publish(ctx context.Context, notifs []service.Notification) {
	if len(notifs) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, notifs); err != nil {
		logger.Error(ctx, "通知发布失败", err, "count", len(notifs))
		return
	}
	for _, n := range notifs {
		metrics.NotificationsPublishedTotal.WithLabelValues(string(n.Intent)).Inc()
	}
}

// recordRejection 将协作规则拒绝计入指标
func (s *Service) recordRejection(err error) {
	appErr := errors.AsAppError(err)
	switch appErr.Code {
	case errors.CodeNotYourTurn, errors.CodeTooLong,
		errors.CodeNotInProgress, errors.CodeForbidden:
		metrics.TurnsRejectedTotal.WithLabelValues(string(appErr.Code)).Inc()
	}
}
