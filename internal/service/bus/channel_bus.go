// 本文件实现进程内 channel 模式的事件总线
// 单机部署时使用，事件在内存中按房间分发
package bus

import (
	"context"
	"sync"

	"match_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// ChannelBroker 进程内事件总线
type ChannelBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[*channelSubscription]struct{} // roomID -> 订阅集合
	closed bool
}

// channelSubscription 进程内订阅句柄
type channelSubscription struct {
	broker *ChannelBroker
	roomID string
	events chan Event
	once   sync.Once
}

// NewChannelBroker 创建进程内事件总线
func NewChannelBroker() *ChannelBroker {
	return &ChannelBroker{
		subs: make(map[string]map[*channelSubscription]struct{}),
	}
}

// Publish 发布房间事件
// 订阅者通道已满时丢弃该订阅者的事件并记录告警，不阻塞发布方
func (b *ChannelBroker) Publish(_ context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for sub := range b.subs[event.RoomID] {
		select {
		case sub.events <- event:
		default:
			zap.L().Warn("room event dropped, subscriber channel full",
				zap.String("room_id", event.RoomID), zap.String("kind", event.Kind))
		}
	}
	return nil
}

// Subscribe 订阅指定房间的事件
func (b *ChannelBroker) Subscribe(roomID string) (Subscription, error) {
	sub := &channelSubscription{
		broker: b,
		roomID: roomID,
		events: make(chan Event, constants.CHANNEL_SIZE),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[roomID] == nil {
		b.subs[roomID] = make(map[*channelSubscription]struct{})
	}
	b.subs[roomID][sub] = struct{}{}
	return sub, nil
}

// Close 关闭总线并取消所有订阅
func (b *ChannelBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var all []*channelSubscription
	for _, set := range b.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	b.subs = make(map[string]map[*channelSubscription]struct{})
	b.mu.Unlock()

	for _, sub := range all {
		sub.once.Do(func() { close(sub.events) })
	}
	return nil
}

func (s *channelSubscription) Events() <-chan Event {
	return s.events
}

// Unsubscribe 取消订阅，幂等
func (s *channelSubscription) Unsubscribe() {
	s.once.Do(func() {
		b := s.broker
		b.mu.Lock()
		if set, ok := b.subs[s.roomID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(b.subs, s.roomID)
			}
		}
		b.mu.Unlock()
		close(s.events)
	})
}
