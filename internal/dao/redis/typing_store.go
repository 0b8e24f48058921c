// 本文件实现输入状态信号的存取与订阅
// 信号键格式 typing:{roomId}_{userId}，后写覆盖先写
// 写入同时 PUBLISH 到 typing_ch:{roomId}:{userId} 频道，订阅方实时收到变化
package redis

import (
	"context"
	"encoding/json"
	"time"

	"match_chat_server/internal/model"
	"match_chat_server/pkg/constants"
	"match_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// TypingStore 输入状态存取器
type TypingStore struct{}

// NewTypingStore 创建 TypingStore
func NewTypingStore() *TypingStore {
	return &TypingStore{}
}

// typingKey 返回信号键 typing:{roomId}_{userId}
func typingKey(chatRoomId, userId string) string {
	return constants.TypingKeyPrefix + chatRoomId + "_" + userId
}

// typingChannel 返回发布订阅频道 typing_ch:{roomId}:{userId}
func typingChannel(chatRoomId, userId string) string {
	return constants.TypingChannelPrefix + chatRoomId + ":" + userId
}

// Set 写入输入状态并广播变化
// 信号键设置 1 小时过期，防止残留
func (s *TypingStore) Set(ctx context.Context, signal model.TypingSignal) error {
	if redisClient == nil {
		return errorx.New(errorx.CodeCacheError, "redis 未初始化")
	}
	payload, err := json.Marshal(signal)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeCacheError, "marshal typing signal")
	}
	key := typingKey(signal.ChatRoomId, signal.UserId)
	if err := redisClient.Set(ctx, key, payload, time.Hour).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set typing key %s", key)
	}
	ch := typingChannel(signal.ChatRoomId, signal.UserId)
	if err := redisClient.Publish(ctx, ch, payload).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis publish typing channel %s", ch)
	}
	return nil
}

// Get 读取输入状态
// 键不存在时返回 IsTyping=false 的默认信号
func (s *TypingStore) Get(ctx context.Context, chatRoomId, userId string) (model.TypingSignal, error) {
	signal := model.TypingSignal{ChatRoomId: chatRoomId, UserId: userId, IsTyping: false}
	value, err := GetKey(ctx, typingKey(chatRoomId, userId))
	if err != nil {
		return signal, err
	}
	if value == "" {
		return signal, nil
	}
	if err := json.Unmarshal([]byte(value), &signal); err != nil {
		return signal, errorx.Wrap(err, errorx.CodeCacheError, "unmarshal typing signal")
	}
	return signal, nil
}

// Subscribe 订阅指定用户在指定房间的输入状态变化
// 返回信号通道与取消函数，调用取消函数后通道关闭
func (s *TypingStore) Subscribe(ctx context.Context, chatRoomId, userId string) (<-chan model.TypingSignal, func(), error) {
	if redisClient == nil {
		return nil, nil, errorx.New(errorx.CodeCacheError, "redis 未初始化")
	}
	subCtx, cancel := context.WithCancel(ctx)
	pubsub := redisClient.Subscribe(subCtx, typingChannel(chatRoomId, userId))

	out := make(chan model.TypingSignal, constants.CHANNEL_SIZE)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgCh := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				var signal model.TypingSignal
				if err := json.Unmarshal([]byte(msg.Payload), &signal); err != nil {
					zap.L().Warn("invalid typing signal payload", zap.Error(err))
					continue
				}
				select {
				case out <- signal:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()
	return out, cancel, nil
}
