package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"essay-duet-api/pkg/logger"
)

// MessageHandler 消息处理函数
type MessageHandler func(ctx context.Context, msg *Message) error

const readBatchSize = 10

// Consumer 消息消费者
//
// 处理失败的消息留在 pending 列表按退避重试，超过重试上限
// 移入死信队列。其他消费者的长期滞留消息会被定期认领。
type Consumer struct {
	client        *redis.Client
	stream        Stream
	group         ConsumerGroup
	consumerName  string
	blockTimeout  time.Duration
	claimInterval time.Duration
	reclaimIdle   time.Duration
	retryLimit    int
	backoff       BackoffConfig

	handlers map[string]MessageHandler
	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
}

// ConsumerConfig 消费者配置
type ConsumerConfig struct {
	Stream        Stream
	Group         ConsumerGroup
	ConsumerName  string
	BlockTimeout  time.Duration
	ClaimInterval time.Duration
	RetryLimit    int
	Backoff       BackoffConfig
}

func (cfg *ConsumerConfig) applyDefaults() {
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 5 * time.Second
	}
	if cfg.ClaimInterval <= 0 {
		cfg.ClaimInterval = 30 * time.Second
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = 3
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = DefaultBackoffConfig()
	}
}

// NewConsumer 创建消息消费者
func NewConsumer(client *redis.Client, cfg ConsumerConfig) *Consumer {
	cfg.applyDefaults()

	reclaimIdle := 5 * time.Minute
	if d := cfg.Backoff.Max * 2; d > reclaimIdle {
		reclaimIdle = d
	}

	return &Consumer{
		client:        client,
		stream:        cfg.Stream,
		group:         cfg.Group,
		consumerName:  cfg.ConsumerName,
		blockTimeout:  cfg.BlockTimeout,
		claimInterval: cfg.ClaimInterval,
		reclaimIdle:   reclaimIdle,
		retryLimit:    cfg.RetryLimit,
		backoff:       cfg.Backoff,
		handlers:      make(map[string]MessageHandler),
		stopCh:        make(chan struct{}),
	}
}

// RegisterHandler 按消息类型注册处理器
func (c *Consumer) RegisterHandler(msgType string, handler MessageHandler) {
	c.mu.Lock()
	c.handlers[msgType] = handler
	c.mu.Unlock()
}

// Start 创建消费者组并启动消费循环
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	err := c.client.XGroupCreateMkStream(ctx, string(c.stream), string(c.group), "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	go c.run(ctx)
	return nil
}

// Stop 停止消费者
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		close(c.stopCh)
		c.running = false
	}
}

func (c *Consumer) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

func (c *Consumer) run(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info("consumer started",
		"stream", c.stream, "group", c.group, "consumer", c.consumerName)

	lastClaim := time.Now().Add(-c.claimInterval)
	for !c.stopped(ctx) {
		c.retryOwnPending(ctx)
		if time.Since(lastClaim) >= c.claimInterval {
			c.reclaimStale(ctx)
			lastClaim = time.Now()
		}
		c.readBatch(ctx)
	}
	log.Info("consumer stopped")
}

// readBatch 读一批新消息并逐条处理
func (c *Consumer) readBatch(ctx context.Context) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    string(c.group),
		Consumer: c.consumerName,
		Streams:  []string{string(c.stream), ">"},
		Count:    readBatchSize,
		Block:    c.blockTimeout,
	}).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			logger.FromContext(ctx).Error("failed to read from stream", "error", err)
			time.Sleep(time.Second)
		}
		return
	}

	for _, s := range streams {
		for _, entry := range s.Messages {
			c.handleEntry(ctx, entry)
		}
	}
}

// handleEntry 处理单条流记录
func (c *Consumer) handleEntry(ctx context.Context, entry redis.XMessage) {
	ctx, span := tracer.Start(ctx, "consumer.handleEntry",
		trace.WithAttributes(
			attribute.String("stream", string(c.stream)),
			attribute.String("stream.entry_id", entry.ID),
		))
	defer span.End()

	msg, ok := c.decode(ctx, entry)
	if !ok {
		// 损坏消息直接确认，避免无限重试
		c.ack(ctx, entry.ID)
		return
	}

	// 注入日志上下文，便于按文章与接收者检索
	if msg.EssayID != "" {
		ctx = logger.WithContext(ctx, logger.EssayIDKey, msg.EssayID)
	}
	if msg.Recipient != "" {
		ctx = logger.WithContext(ctx, logger.UserIDKey, msg.Recipient)
	}
	span.SetAttributes(
		attribute.String("message.id", msg.ID),
		attribute.String("message.type", msg.Type),
	)

	c.mu.RLock()
	handler, exists := c.handlers[msg.Type]
	c.mu.RUnlock()
	if !exists {
		logger.Warn(ctx, "no handler for message type", "type", msg.Type)
		c.ack(ctx, entry.ID)
		return
	}

	if err := handler(ctx, msg); err != nil {
		span.RecordError(err)
		logger.Error(ctx, "handler failed", err, "message_id", msg.ID)
		c.handleFailure(ctx, entry, msg)
		return
	}
	c.ack(ctx, entry.ID)
}

// decode 解析流记录，失败返回 false
func (c *Consumer) decode(ctx context.Context, entry redis.XMessage) (*Message, bool) {
	raw, ok := entry.Values["data"].(string)
	if !ok {
		logger.Error(ctx, "invalid message format", nil, "message_id", entry.ID)
		return nil, false
	}
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		logger.Error(ctx, "failed to unmarshal message", err, "message_id", entry.ID)
		return nil, false
	}
	return &msg, true
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, string(c.stream), string(c.group), id).Err(); err != nil {
		logger.Error(ctx, "failed to ack message", err, "message_id", id)
	}
}

// handleFailure 失败消息留在 pending 等待退避重试，超限移入死信队列
func (c *Consumer) handleFailure(ctx context.Context, entry redis.XMessage, msg *Message) {
	retryCount := c.retryCountOf(ctx, entry.ID)
	if retryCount >= c.retryLimit {
		logger.Warn(ctx, "message moved to DLQ after max retries",
			"message_id", msg.ID, "retry_count", retryCount)
		c.moveToDLQ(ctx, msg, errors.New("message exceeded max retries"))
		c.ack(ctx, entry.ID)
		return
	}
	logger.Info(ctx, "message left pending for retry",
		"message_id", msg.ID, "retry_count", retryCount)
}

// retryCountOf 通过 XPENDING 获取消息的投递次数
func (c *Consumer) retryCountOf(ctx context.Context, entryID string) int {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: string(c.stream),
		Group:  string(c.group),
		Start:  entryID,
		End:    entryID,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		return 0
	}
	return int(pending[0].RetryCount)
}

func (c *Consumer) moveToDLQ(ctx context.Context, msg *Message, cause error) {
	record, _ := json.Marshal(map[string]interface{}{
		"original_stream": string(c.stream),
		"data":            msg,
		"error":           cause.Error(),
		"failed_at":       time.Now().Unix(),
	})
	c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.stream.DLQStream(),
		Values: map[string]interface{}{"data": string(record)},
	})
}

// claimOne 认领单条 pending 消息
func (c *Consumer) claimOne(ctx context.Context, id string, minIdle time.Duration) []redis.XMessage {
	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   string(c.stream),
		Group:    string(c.group),
		Consumer: c.consumerName,
		MinIdle:  minIdle,
		Messages: []string{id},
	}).Result()
	if err != nil {
		logger.Error(ctx, "failed to claim pending message", err, "message_id", id)
		return nil
	}
	return claimed
}

// discardToDLQ 将已超限的 pending 消息移入死信队列并确认
func (c *Consumer) discardToDLQ(ctx context.Context, id string, minIdle time.Duration) {
	for _, entry := range c.claimOne(ctx, id, minIdle) {
		if msg, ok := c.decode(ctx, entry); ok {
			c.moveToDLQ(ctx, msg, errors.New("message exceeded max retries"))
		}
		c.ack(ctx, entry.ID)
	}
}

// pendingOf 查询 pending 列表；consumer 为空时查整个组
func (c *Consumer) pendingOf(ctx context.Context, consumer string) []redis.XPendingExt {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream:   string(c.stream),
		Group:    string(c.group),
		Start:    "-",
		End:      "+",
		Count:    20,
		Consumer: consumer,
	}).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Error(ctx, "failed to query pending messages", err)
		}
		return nil
	}
	return pending
}

// retryOwnPending 重试本消费者 pending 列表中退避期已到的消息
func (c *Consumer) retryOwnPending(ctx context.Context) {
	for _, p := range c.pendingOf(ctx, c.consumerName) {
		if int(p.RetryCount) >= c.retryLimit {
			c.discardToDLQ(ctx, p.ID, 0)
			continue
		}
		backoff := c.backoff.CalculateBackoff(int(p.RetryCount))
		if p.Idle < backoff {
			continue
		}
		for _, entry := range c.claimOne(ctx, p.ID, backoff) {
			c.handleEntry(ctx, entry)
		}
	}
}

// reclaimStale 认领其他消费者长期滞留的消息
func (c *Consumer) reclaimStale(ctx context.Context) {
	for _, p := range c.pendingOf(ctx, "") {
		if p.Consumer == c.consumerName || p.Idle < c.reclaimIdle {
			continue
		}
		if int(p.RetryCount) >= c.retryLimit {
			c.discardToDLQ(ctx, p.ID, c.reclaimIdle)
			continue
		}
		for _, entry := range c.claimOne(ctx, p.ID, c.reclaimIdle) {
			c.handleEntry(ctx, entry)
		}
	}
}

// MonitorDLQ 周期检查死信队列长度，超过阈值时告警
func (c *Consumer) MonitorDLQ(ctx context.Context, alertThreshold int64) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			info, err := c.client.XInfoStream(ctx, c.stream.DLQStream()).Result()
			if err != nil {
				continue
			}
			if info.Length > alertThreshold {
				logger.Warn(ctx, "DLQ has pending messages",
					"stream", c.stream.DLQStream(), "count", info.Length)
			}
		}
	}
}
