// Package typing 实现输入状态信号
// 信号是短暂的 UI 装饰：写失败只记日志不上抛，绝不让"正在输入"影响消息收发
package typing

import (
	"context"
	"time"

	"match_chat_server/internal/model"

	"go.uber.org/zap"
)

// SignalStore 信号存取接口，生产环境由 Redis 实现
type SignalStore interface {
	// Set 写入信号，最后写入者胜出
	Set(ctx context.Context, signal model.TypingSignal) error
	// Get 读取信号，不存在时返回 IsTyping=false 的默认值
	Get(ctx context.Context, chatRoomId, userId string) (model.TypingSignal, error)
	// Subscribe 订阅指定用户在指定房间的信号变化
	Subscribe(ctx context.Context, chatRoomId, userId string) (<-chan model.TypingSignal, func(), error)
}

// Service 输入状态服务
type Service struct {
	store SignalStore
}

// NewService 创建输入状态服务
func NewService(store SignalStore) *Service {
	return &Service{store: store}
}

// UpdateTypingStatus 更新输入状态
// 写失败被吞掉（仅记日志），调用方无需处理
func (s *Service) UpdateTypingStatus(ctx context.Context, chatRoomId, userId string, isTyping bool) {
	err := s.store.Set(ctx, model.TypingSignal{
		ChatRoomId: chatRoomId,
		UserId:     userId,
		IsTyping:   isTyping,
		Timestamp:  time.Now(),
	})
	if err != nil {
		zap.L().Warn("update typing status",
			zap.String("room_id", chatRoomId), zap.String("user_id", userId), zap.Error(err))
	}
}

// GetTypingStatus 读取对方当前的输入状态
// 读失败按未输入处理
func (s *Service) GetTypingStatus(ctx context.Context, chatRoomId, userId string) bool {
	signal, err := s.store.Get(ctx, chatRoomId, userId)
	if err != nil {
		zap.L().Warn("get typing status",
			zap.String("room_id", chatRoomId), zap.String("user_id", userId), zap.Error(err))
		return false
	}
	return signal.IsTyping
}

// SubscribeTyping 订阅对方的输入状态变化
func (s *Service) SubscribeTyping(ctx context.Context, chatRoomId, userId string) (<-chan model.TypingSignal, func(), error) {
	return s.store.Subscribe(ctx, chatRoomId, userId)
}
