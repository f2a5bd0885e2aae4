// Package wire 提供依赖注入配置
package wire

import (
	"essay-duet-api/internal/config"
	"essay-duet-api/internal/domain/service"
	"essay-duet-api/internal/infrastructure/export"
	"essay-duet-api/internal/infrastructure/messaging"
	"essay-duet-api/internal/infrastructure/persistence/postgres"
	"essay-duet-api/internal/infrastructure/persistence/redis"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideDraftStore 提供草稿暂存
func ProvideDraftStore(client *redis.Client, cfg *config.Config) *redis.DraftStore {
	return redis.NewDraftStore(client, cfg.Collab.DraftTTL)
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideRules 提供回合规则引擎
func ProvideRules(cfg *config.Config) *service.Rules {
	return service.NewRules(cfg.Collab.MaxTurnWords)
}

// ProvidePlanner 提供通知规划器
func ProvidePlanner(cfg *config.Config) *service.Planner {
	return service.NewPlanner(cfg.Collab.SnippetLength)
}

// ProvideExporter 提供 PDF 导出器
func ProvideExporter(cfg *config.Config) *export.PDFExporter {
	return export.NewPDFExporter(cfg.Export.OutputDir)
}
