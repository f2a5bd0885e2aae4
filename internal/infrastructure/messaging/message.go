// Package messaging 提供基于 Redis Stream 的通知消息流
package messaging

import (
	"encoding/json"
	"time"
)

// MsgTypeNotification 通知消息类型
const MsgTypeNotification = "notification"

// Stream 流名称
type Stream string

// StreamNotifications 通知投递流
const StreamNotifications Stream = "stream:notify:dispatch"

// DLQStream 该流对应的死信队列名称
func (s Stream) DLQStream() string {
	return "dlq:" + string(s)
}

// ConsumerGroup 消费者组名称
type ConsumerGroup string

// ConsumerGroupNotifyWorker 通知投递工作器的消费者组
const ConsumerGroupNotifyWorker ConsumerGroup = "notify-workers"

// Message 流上承载的消息封装
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	EssayID   string            `json:"essay_id"`
	Recipient string            `json:"recipient"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 序列化载荷并封装为消息
func NewMessage(id, msgType, essayID, recipient string, payload interface{}) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		ID:        id,
		Type:      msgType,
		EssayID:   essayID,
		Recipient: recipient,
		Payload:   body,
		Metadata:  map[string]string{},
		CreatedAt: time.Now(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = map[string]string{}
	}
	m.Metadata[key] = value
}

// GetMetadata 获取元数据，不存在时为空串
func (m *Message) GetMetadata(key string) string {
	return m.Metadata[key]
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}

// BackoffConfig 重试退避配置
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultBackoffConfig 默认退避：1s 起步，倍增，一分钟封顶
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{Initial: time.Second, Max: time.Minute, Multiplier: 2}
}

// CalculateBackoff 按重试次数计算等待时间
func (c BackoffConfig) CalculateBackoff(retryCount int) time.Duration {
	d := c.Initial
	for i := 0; i < retryCount && d < c.Max; i++ {
		d = time.Duration(float64(d) * c.Multiplier)
	}
	return min(d, c.Max)
}
