// Package bus 提供房间事件总线
// 消息写入后发布房间事件，订阅方收到事件后重新拉取快照
// 支持进程内 channel 模式和 kafka 模式，模式由配置决定
package bus

import "context"

// 事件类型
const (
	KindMessageCreated = "message_created" // 新消息写入
	KindMessageUpdated = "message_updated" // 消息状态或删除标记变更
	KindRoomUpdated    = "room_updated"    // 房间元信息变更
)

// Event 房间事件
// 事件本身不携带消息内容，订阅方收到后自行查询完整快照
type Event struct {
	RoomID   string `json:"room_id"`
	Kind     string `json:"kind"`
	SenderID string `json:"sender_id,omitempty"`
}

// Subscription 订阅句柄
type Subscription interface {
	// Events 返回事件通道，取消订阅后通道关闭
	Events() <-chan Event
	// Unsubscribe 取消订阅，幂等且并发安全
	Unsubscribe()
}

// Broker 事件总线
type Broker interface {
	// Publish 发布房间事件
	Publish(ctx context.Context, event Event) error
	// Subscribe 订阅指定房间的事件
	Subscribe(roomID string) (Subscription, error)
	// Close 关闭总线，释放底层资源
	Close() error
}
