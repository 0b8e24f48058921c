package mysql

import (
	"time"

	"gorm.io/gorm"

	"match_chat_server/internal/model"
	"match_chat_server/pkg/constants"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// FindByRoomOrdered 取房间全量消息，按 sent_at 升序
// uuid 兜底排序：同一毫秒内落库的消息依雪花 ID 保持稳定序
func (r *messageRepository) FindByRoomOrdered(roomUuid string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("chat_room_id = ?", roomUuid).
		Order("sent_at ASC").Order("uuid ASC").Find(&messages).Error; err != nil {
		return nil, classifyDBErrorf(err, "查询房间消息 room=%s", roomUuid)
	}
	return messages, nil
}

// FindByUuid 根据消息雪花 ID 查找消息
func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("uuid = ?", uuid).First(&message).Error; err != nil {
		return nil, classifyDBErrorf(err, "查询消息 uuid=%d", uuid)
	}
	return &message, nil
}

// Create 创建消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return classifyDBError(err, "创建消息")
	}
	return nil
}

// MarkAsRead 批量已读
// 条件 status IN (sent, delivered) 同时保证了状态单调：已是 read 的消息不会被改写，
// 状态只沿 sent -> delivered -> read 前进
func (r *messageRepository) MarkAsRead(roomUuid, viewerUuid string) (int64, error) {
	res := r.db.Model(&model.Message{}).
		Where("chat_room_id = ? AND sender_id <> ? AND status IN ?",
			roomUuid, viewerUuid, []string{constants.MessageSent, constants.MessageDelivered}).
		Update("status", constants.MessageRead)
	if res.Error != nil {
		return 0, classifyDBErrorf(res.Error, "批量已读 room=%s viewer=%s", roomUuid, viewerUuid)
	}
	return res.RowsAffected, nil
}

// AddDeletedForUser 幂等地把用户加入消息的 deleted_for_users
// 读-改-写放在事务里，避免并发追加互相覆盖
func (r *messageRepository) AddDeletedForUser(uuid int64, userId string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var message model.Message
		if err := tx.Where("uuid = ?", uuid).First(&message).Error; err != nil {
			return err
		}
		for _, uid := range message.DeletedForUsers {
			if uid == userId {
				return nil // 已删除过，无操作
			}
		}
		message.DeletedForUsers = append(message.DeletedForUsers, userId)
		return tx.Model(&model.Message{}).Where("uuid = ?", uuid).
			Update("deleted_for_users", message.DeletedForUsers).Error
	})
	if err != nil {
		return classifyDBErrorf(err, "对用户删除消息 uuid=%d user=%s", uuid, userId)
	}
	return nil
}

// MarkDeletedForEveryone 撤回消息
func (r *messageRepository) MarkDeletedForEveryone(uuid int64, at time.Time) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).Updates(map[string]any{
		"deleted_for_everyone": true,
		"deleted_at":           at,
	}).Error; err != nil {
		return classifyDBErrorf(err, "撤回消息 uuid=%d", uuid)
	}
	return nil
}
