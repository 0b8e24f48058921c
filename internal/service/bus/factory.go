package bus

import (
	"match_chat_server/internal/config"

	"go.uber.org/zap"
)

// NewBroker 根据配置创建事件总线
// mode 为 "kafka" 时使用 Kafka，其余情况使用进程内 channel
func NewBroker(conf config.BusConfig) Broker {
	if conf.Mode == "kafka" {
		zap.L().Info("room event bus mode: kafka",
			zap.String("host", conf.HostPort), zap.String("topic", conf.RoomTopic))
		return NewKafkaBroker(conf)
	}
	zap.L().Info("room event bus mode: channel")
	return NewChannelBroker()
}
