package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"essay-duet-api/internal/config"
	"essay-duet-api/internal/domain/entity"
	"essay-duet-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	client, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 迁移表结构
	fmt.Println("Running schema migration...")
	err = client.DB().WithContext(ctx).AutoMigrate(
		&entity.Essay{},
		&entity.Partner{},
		&entity.UserSession{},
	)
	if err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	fmt.Println("Bootstrap completed.")
}
