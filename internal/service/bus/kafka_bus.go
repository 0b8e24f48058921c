// 本文件实现 kafka 模式的事件总线
// 多实例部署时使用：事件写入 Kafka topic，消费循环读到事件后
// 通过内嵌的进程内总线分发给本机订阅者
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"match_chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBroker kafka 模式事件总线
type KafkaBroker struct {
	producer *kafka.Writer
	consumer *kafka.Reader
	local    *ChannelBroker // 本机订阅者分发
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewKafkaBroker 创建 kafka 事件总线并启动消费循环
func NewKafkaBroker(conf config.BusConfig) *KafkaBroker {
	b := &KafkaBroker{
		producer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.RoomTopic,
			Balancer:               &kafka.Hash{}, // 按 key(roomID) 分区，同一房间事件有序
			WriteTimeout:           conf.Timeout * time.Second,
			RequiredAcks:           kafka.RequireNone,
			AllowAutoTopicCreation: false,
		},
		consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.RoomTopic,
			Partition:      conf.Partition,
			CommitInterval: conf.Timeout * time.Second,
			StartOffset:    kafka.LastOffset,
		}),
		local: NewChannelBroker(),
		done:  make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.consumeLoop(ctx)
	return b
}

// Publish 发布房间事件到 Kafka
// key 为房间 ID，保证同一房间的事件落在同一分区
func (b *KafkaBroker) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RoomID),
		Value: value,
	})
}

// Subscribe 订阅指定房间的事件（本机分发）
func (b *KafkaBroker) Subscribe(roomID string) (Subscription, error) {
	return b.local.Subscribe(roomID)
}

// consumeLoop 消费循环：从 Kafka 读事件，分发给本机订阅者
func (b *KafkaBroker) consumeLoop(ctx context.Context) {
	defer close(b.done)
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("kafka bus consumer panic", zap.Any("panic", r))
		}
	}()
	for {
		msg, err := b.consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			zap.L().Error("kafka bus read message", zap.Error(err))
			continue
		}
		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			zap.L().Error("kafka bus unmarshal event", zap.Error(err))
			continue
		}
		if err := b.local.Publish(ctx, event); err != nil {
			zap.L().Error("kafka bus local dispatch", zap.Error(err))
		}
	}
}

// Close 关闭总线，停止消费循环并释放 Kafka 连接
func (b *KafkaBroker) Close() error {
	b.cancel()
	<-b.done
	if err := b.producer.Close(); err != nil {
		zap.L().Error("kafka bus close producer", zap.Error(err))
	}
	if err := b.consumer.Close(); err != nil {
		zap.L().Error("kafka bus close consumer", zap.Error(err))
	}
	return b.local.Close()
}
