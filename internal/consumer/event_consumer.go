package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	rediscommon "health-dashboard/common/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 事件类型
const (
	EventDatasetUploaded = "dataset.uploaded" // 导入服务写入了新数据集
	EventDatasetSelected = "dataset.selected" // 切换当前公司
	EventExportRequested = "export.requested" // 请求导出 Excel
)

// 导出类型
const (
	ExportFullReport = "full_report"
	ExportFollowUp   = "follow_up"
)

// DashboardEvent 看板事件
type DashboardEvent struct {
	EventType  string `json:"event_type"`
	Company    string `json:"company"`
	ExportKind string `json:"export_kind,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Handler 事件处理
type Handler interface {
	HandleEvent(ctx context.Context, event *DashboardEvent) error
}

// ErrInvalidEvent 消息无法解析为看板事件
var ErrInvalidEvent = errors.New("invalid event")

const (
	// DefaultMaxDeliveries 处理失败的消息最多投递次数，超过后确认并丢弃
	DefaultMaxDeliveries = 3
	// DefaultRetryIdle pending 消息空闲多久后重新投递
	DefaultRetryIdle = 30 * time.Second
)

// EventConsumer 事件消费者（Redis Streams 消费者组）
type EventConsumer struct {
	redisClient  *redis.Client
	handler      Handler
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration

	maxDeliveries int64
	retryIdle     time.Duration
}

// NewEventConsumer 创建事件消费者
func NewEventConsumer(
	redisClient *redis.Client,
	handler Handler,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
) *EventConsumer {
	return &EventConsumer{
		redisClient:  redisClient,
		handler:      handler,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        time.Second,

		maxDeliveries: DefaultMaxDeliveries,
		retryIdle:     DefaultRetryIdle,
	}
}

// SetBlock 设置单次读取的阻塞时长
func (c *EventConsumer) SetBlock(d time.Duration) {
	c.block = d
}

// SetRetry 设置失败消息的最大投递次数和重新投递前的空闲时长
func (c *EventConsumer) SetRetry(maxDeliveries int64, idle time.Duration) {
	c.maxDeliveries = maxDeliveries
	c.retryIdle = idle
}

// Start 启动事件消费者，阻塞直到 ctx 取消
func (c *EventConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Event consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费事件（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := c.retryPending(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("Failed to retry pending events", zap.Error(err))
		}

		if err := c.consumeEvents(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume events",
				zap.Error(err),
				zap.Duration("backoff", backoffDuration),
			)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoffDuration):
				backoffDuration *= 2
				if backoffDuration > maxBackoff {
					backoffDuration = maxBackoff
				}
			}
			continue
		}
		backoffDuration = time.Second
	}
}

func (c *EventConsumer) consumeEvents(ctx context.Context) error {
	messages, err := rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
		c.block,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	c.handleMessages(ctx, messages)
	return nil
}

// retryPending 重新处理失败的消息；投递次数达到上限的直接确认丢弃
func (c *EventConsumer) retryPending(ctx context.Context) error {
	pending, err := rediscommon.ListPending(ctx, c.redisClient, c.stream, c.groupName, c.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	var ids []string
	for _, p := range pending {
		if p.Deliveries >= c.maxDeliveries {
			c.logger.Error("Dropping event after max deliveries",
				zap.String("message_id", p.ID),
				zap.String("consumer", p.Consumer),
				zap.Int64("deliveries", p.Deliveries),
			)
			c.ack(ctx, p.ID)
			continue
		}
		if p.Idle >= c.retryIdle {
			ids = append(ids, p.ID)
		}
	}

	messages, err := rediscommon.ClaimMessages(ctx, c.redisClient, c.stream, c.groupName, c.consumerName, c.retryIdle, ids)
	if err != nil {
		return fmt.Errorf("failed to claim pending: %w", err)
	}
	c.handleMessages(ctx, messages)
	return nil
}

func (c *EventConsumer) handleMessages(ctx context.Context, messages []rediscommon.StreamMessage) {
	for _, msg := range messages {
		err := c.processEvent(ctx, msg)
		switch {
		case errors.Is(err, ErrInvalidEvent):
			// 无法解析的消息重试也不会成功
			c.logger.Warn("Discarding invalid event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		case err != nil:
			// 不确认，留在 pending 列表等待重试
			c.logger.Error("Failed to process event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		c.ack(ctx, msg.ID)
	}
}

func (c *EventConsumer) ack(ctx context.Context, id string) {
	if err := rediscommon.AckMessage(ctx, c.redisClient, c.stream, c.groupName, id); err != nil {
		c.logger.Warn("Failed to ack message",
			zap.String("message_id", id),
			zap.Error(err),
		)
	}
}

func (c *EventConsumer) processEvent(ctx context.Context, msg rediscommon.StreamMessage) error {
	event, err := parseEvent(msg)
	if err != nil {
		return fmt.Errorf("failed to parse event: %w", err)
	}

	switch event.EventType {
	case EventDatasetUploaded, EventDatasetSelected, EventExportRequested:
		c.logger.Info("Processing dashboard event",
			zap.String("event_type", event.EventType),
			zap.String("company", event.Company),
		)
		return c.handler.HandleEvent(ctx, event)
	default:
		c.logger.Warn("Unknown event type",
			zap.String("event_type", event.EventType),
		)
		return nil
	}
}

// parseEvent 优先解析 data 字段中的 JSON，否则直接读取字段
func parseEvent(msg rediscommon.StreamMessage) (*DashboardEvent, error) {
	if dataStr, ok := msg.Values["data"].(string); ok {
		var event DashboardEvent
		if err := json.Unmarshal([]byte(dataStr), &event); err == nil && event.EventType != "" {
			return validate(&event)
		}
	}

	event := &DashboardEvent{}
	if v, ok := msg.Values["event_type"].(string); ok {
		event.EventType = v
	}
	if v, ok := msg.Values["company"].(string); ok {
		event.Company = v
	}
	if v, ok := msg.Values["export_kind"].(string); ok {
		event.ExportKind = v
	}
	if v, ok := msg.Values["timestamp"].(string); ok {
		event.Timestamp, _ = strconv.ParseInt(v, 10, 64)
	}
	return validate(event)
}

func validate(event *DashboardEvent) (*DashboardEvent, error) {
	if event.EventType == "" || event.Company == "" {
		return nil, fmt.Errorf("%w: missing event_type or company", ErrInvalidEvent)
	}
	return event, nil
}

// Publish 发布看板事件（data 字段为 JSON）
func Publish(ctx context.Context, client *redis.Client, stream string, event DashboardEvent) (string, error) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	return rediscommon.PublishJSONToStream(ctx, client, stream, event)
}
