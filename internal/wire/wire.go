//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"essay-duet-api/internal/application/collab"
	"essay-duet-api/internal/config"
	"essay-duet-api/internal/domain/repository"
	"essay-duet-api/internal/infrastructure/export"
	"essay-duet-api/internal/infrastructure/messaging"
	"essay-duet-api/internal/infrastructure/persistence/postgres"
	"essay-duet-api/internal/infrastructure/persistence/redis"
	"essay-duet-api/internal/interfaces/http/handler"
	"essay-duet-api/internal/interfaces/http/middleware"
	"essay-duet-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		CollabSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializePostgresOnly 仅初始化 PostgreSQL（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	wire.Build(
		ProvidePostgresClient,
	)
	return nil, nil, nil
}

// RepoSet PostgreSQL 提供者集合与接口绑定
var RepoSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewEssayRepository,
	postgres.NewSessionRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.EssayRepository), new(*postgres.EssayRepository)),
	wire.Bind(new(repository.SessionRepository), new(*postgres.SessionRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideDraftStore,
	redis.NewRateLimiter,
	wire.Bind(new(collab.DraftStore), new(*redis.DraftStore)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息流提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	messaging.NewNotificationPublisher,
	wire.Bind(new(collab.NotificationPublisher), new(*messaging.NotificationPublisher)),
)

// CollabSet 协作领域与应用层提供者集合
var CollabSet = wire.NewSet(
	ProvideRules,
	ProvidePlanner,
	ProvideExporter,
	collab.NewService,
	wire.Bind(new(collab.Exporter), new(*export.PDFExporter)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewEssayHandler,
	handler.NewTurnHandler,
	router.New,
)
