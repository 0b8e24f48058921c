// Package channel 实现消息通道：发送、订阅、已读回执与两种删除
// 订阅采用快照模型：任何房间事件都触发一次全量重查，按固定序投递完整消息列表，
// 订阅方以最新快照整体替换本地状态，不做增量合并
package channel

import (
	"context"
	"time"

	"match_chat_server/internal/dao/mysql"
	"match_chat_server/internal/model"
	"match_chat_server/internal/service/bus"
	"match_chat_server/pkg/constants"
	"match_chat_server/pkg/errorx"
	"match_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// Service 消息通道服务
type Service struct {
	msgRepo  mysql.MessageRepository
	roomRepo mysql.ChatRoomRepository
	broker   bus.Broker
	window   time.Duration // 撤回时间窗口
}

// NewService 创建消息通道服务
func NewService(msgRepo mysql.MessageRepository, roomRepo mysql.ChatRoomRepository, broker bus.Broker) *Service {
	return &Service{
		msgRepo:  msgRepo,
		roomRepo: roomRepo,
		broker:   broker,
		window:   constants.DELETE_FOR_EVERYONE_WINDOW,
	}
}

// SetRecallWindow 覆盖默认的撤回时间窗口
func (s *Service) SetRecallWindow(d time.Duration) {
	if d > 0 {
		s.window = d
	}
}

// SendMessage 发送消息
// 消息落库成功即视为发送成功；房间冗余字段更新是独立的第二次写，
// 失败只记日志，不回滚消息本身
func (s *Service) SendMessage(ctx context.Context, roomId, senderId, content string) (*model.Message, error) {
	message := &model.Message{
		Uuid:       snowflake.GenerateID(),
		ChatRoomId: roomId,
		SenderId:   senderId,
		Content:    content,
		Status:     constants.MessageSent,
	}
	if err := s.msgRepo.Create(message); err != nil {
		return nil, err
	}

	if err := s.roomRepo.UpdateLastMessage(roomId, content, senderId, message.SentAt); err != nil {
		zap.L().Warn("update room last message",
			zap.String("room_id", roomId), zap.Error(err))
	}

	if err := s.broker.Publish(ctx, bus.Event{
		RoomID:   roomId,
		Kind:     bus.KindMessageCreated,
		SenderID: senderId,
	}); err != nil {
		zap.L().Error("publish message created event",
			zap.String("room_id", roomId), zap.Error(err))
	}
	return message, nil
}

// MarkMessagesAsRead 批量已读
// 单条原子更新：房间内他人发送且状态为 sent/delivered 的消息置为 read
// 返回实际更新条数；状态过滤保证重复调用收敛为 0
func (s *Service) MarkMessagesAsRead(ctx context.Context, roomId, viewerId string) (int64, error) {
	count, err := s.msgRepo.MarkAsRead(roomId, viewerId)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		if err := s.broker.Publish(ctx, bus.Event{
			RoomID:   roomId,
			Kind:     bus.KindMessageUpdated,
			SenderID: viewerId,
		}); err != nil {
			zap.L().Error("publish messages read event",
				zap.String("room_id", roomId), zap.Error(err))
		}
	}
	return count, nil
}

// DeleteMessageForMe 仅对自己删除消息，幂等
// 消息对其他成员保持完全可见
func (s *Service) DeleteMessageForMe(ctx context.Context, messageUuid int64, userId string) error {
	message, err := s.msgRepo.FindByUuid(messageUuid)
	if err != nil {
		return err
	}
	if err := s.msgRepo.AddDeletedForUser(messageUuid, userId); err != nil {
		return err
	}
	if err := s.broker.Publish(ctx, bus.Event{
		RoomID:   message.ChatRoomId,
		Kind:     bus.KindMessageUpdated,
		SenderID: userId,
	}); err != nil {
		zap.L().Error("publish delete-for-me event",
			zap.String("room_id", message.ChatRoomId), zap.Error(err))
	}
	return nil
}

// DeleteMessageForEveryone 撤回消息
// 仅发送者本人可撤回，且发送后 48 小时内有效；超窗或他人操作返回可区分的错误码
func (s *Service) DeleteMessageForEveryone(ctx context.Context, messageUuid int64, requesterId string, now time.Time) error {
	message, err := s.msgRepo.FindByUuid(messageUuid)
	if err != nil {
		return err
	}
	if message.SenderId != requesterId {
		return errorx.New(errorx.CodeUnauthorized, "只有发送者可以撤回此消息")
	}
	if now.Sub(message.SentAt) > s.window {
		return errorx.New(errorx.CodeExpiredWindow, "消息已超过撤回时间窗口")
	}
	if err := s.msgRepo.MarkDeletedForEveryone(messageUuid, now); err != nil {
		return err
	}
	if err := s.broker.Publish(ctx, bus.Event{
		RoomID:   message.ChatRoomId,
		Kind:     bus.KindMessageUpdated,
		SenderID: requesterId,
	}); err != nil {
		zap.L().Error("publish delete-for-everyone event",
			zap.String("room_id", message.ChatRoomId), zap.Error(err))
	}
	return nil
}

// CanDeleteForEveryone 纯判定：消息当前是否可被 userId 撤回
// UI 据此决定是否展示撤回入口，不触发任何写操作
func CanDeleteForEveryone(message *model.Message, userId string, now time.Time) bool {
	if message == nil || message.DeletedForEveryone {
		return false
	}
	if message.SenderId != userId {
		return false
	}
	return now.Sub(message.SentAt) <= constants.DELETE_FOR_EVERYONE_WINDOW
}

// filterForViewer 对观察者过滤快照并规范化状态
// 撤回消息保留（由展示层渲染占位符）；"仅对我删除"的消息整条剔除
func filterForViewer(messages []model.Message, viewerId string) []model.Message {
	out := make([]model.Message, 0, len(messages))
	for i := range messages {
		m := messages[i]
		if !m.VisibleTo(viewerId) {
			continue
		}
		m.Status = m.NormalizedStatus()
		out = append(out, m)
	}
	return out
}
