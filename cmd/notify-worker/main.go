// Package main 通知投递执行器入口（notify-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"essay-duet-api/internal/config"
	"essay-duet-api/internal/domain/service"
	"essay-duet-api/internal/infrastructure/delivery"
	"essay-duet-api/internal/infrastructure/messaging"
	"essay-duet-api/internal/infrastructure/persistence/redis"
	"essay-duet-api/pkg/logger"
	"essay-duet-api/pkg/metrics"
	"essay-duet-api/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "notify-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	notifier := buildNotifier(cfg)

	group := messaging.ConsumerGroupNotifyWorker
	if cfg.Messaging.RedisStream.ConsumerGroup != "" {
		group = messaging.ConsumerGroup(cfg.Messaging.RedisStream.ConsumerGroup)
	}

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamNotifications,
		Group:         group,
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler(messaging.MsgTypeNotification, func(ctx context.Context, msg *messaging.Message) error {
		var notif service.Notification
		if err := msg.UnmarshalPayload(&notif); err != nil {
			return err
		}

		if err := notifier.Deliver(ctx, notif); err != nil {
			metrics.NotificationsDeliveredTotal.WithLabelValues(string(notif.Intent), "failure").Inc()
			return err
		}
		metrics.NotificationsDeliveredTotal.WithLabelValues(string(notif.Intent), "success").Inc()
		return nil
	})

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(runCtx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		consumer.MonitorDLQ(gCtx, 100)
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		consumer.Stop()
		return nil
	})

	logger.Info(ctx, "notify-worker started", "delivery_mode", cfg.Delivery.Mode)
	_ = g.Wait()
	logger.Info(ctx, "notify-worker exited")
}

// buildNotifier 按配置选择投递方式
func buildNotifier(cfg *config.Config) delivery.Notifier {
	if cfg.Delivery.Mode == "webhook" && cfg.Delivery.WebhookURL != "" {
		return delivery.NewWebhookNotifier(cfg.Delivery.WebhookURL, cfg.Delivery.Timeout)
	}
	return delivery.NewLogNotifier()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "notify-worker"
	}
	return host + "-" + uuid.NewString()[:8]
}
