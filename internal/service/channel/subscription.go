// 本文件实现房间消息订阅
// 回调在持有订阅锁的情况下调用：Unsubscribe 返回后保证不再有任何回调在执行，
// 上层可以放心释放与订阅绑定的资源
package channel

import (
	"sync"

	"match_chat_server/internal/model"
	"match_chat_server/internal/service/bus"
	"match_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// SnapshotFunc 快照回调，收到按时间升序的完整消息列表
type SnapshotFunc func(messages []model.Message)

// ErrorFunc 查询失败回调，err 带机器可读错误码
type ErrorFunc func(err error)

// Subscription 房间消息订阅句柄
type Subscription struct {
	mu     sync.Mutex
	closed bool
	busSub bus.Subscription
}

// Subscribe 订阅房间消息
// 建立后立即投递一次初始快照，此后每个房间事件触发一次全量重查与投递
// 查询失败时降级：投递空快照并调用 onError，订阅保持存活等待后续事件
func (s *Service) Subscribe(roomId, viewerId string, onSnapshot SnapshotFunc, onError ErrorFunc) (*Subscription, error) {
	busSub, err := s.broker.Subscribe(roomId)
	if err != nil {
		return nil, err
	}
	sub := &Subscription{busSub: busSub}

	go func() {
		sub.deliver(s, roomId, viewerId, onSnapshot, onError)
		for range busSub.Events() {
			sub.deliver(s, roomId, viewerId, onSnapshot, onError)
		}
	}()
	return sub, nil
}

// deliver 重查房间消息并投递快照，回调在锁内执行
func (sub *Subscription) deliver(s *Service, roomId, viewerId string, onSnapshot SnapshotFunc, onError ErrorFunc) {
	messages, err := s.msgRepo.FindByRoomOrdered(roomId)

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	if err != nil {
		if errorx.IsIndexRequired(err) {
			zap.L().Error("room message query requires missing index",
				zap.String("room_id", roomId), zap.Error(err))
		} else {
			zap.L().Error("room message query failed",
				zap.String("room_id", roomId), zap.Error(err))
		}
		// 先投空快照再报错，订阅方在空快照之上标记错误状态
		onSnapshot([]model.Message{})
		if onError != nil {
			onError(err)
		}
		return
	}
	onSnapshot(filterForViewer(messages, viewerId))
}

// Unsubscribe 取消订阅，幂等且并发安全
// 返回时保证不会再有快照或错误回调被调用
func (sub *Subscription) Unsubscribe() {
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		return
	}
	sub.closed = true
	sub.mu.Unlock()
	sub.busSub.Unsubscribe()
}
