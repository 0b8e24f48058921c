package mysql

import (
	"time"

	"gorm.io/gorm"

	"match_chat_server/internal/model"
)

type chatRoomRepository struct {
	db *gorm.DB
}

// NewChatRoomRepository 创建聊天室 Repository
func NewChatRoomRepository(db *gorm.DB) ChatRoomRepository {
	return &chatRoomRepository{db: db}
}

// FindByUuid 根据房间 uuid 查找房间
func (r *chatRoomRepository) FindByUuid(uuid string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.Where("uuid = ?", uuid).First(&room).Error; err != nil {
		return nil, classifyDBErrorf(err, "查询房间 uuid=%s", uuid)
	}
	return &room, nil
}

// FindByMembers 按规范成员对（升序）查找既有房间
// 命中多个时取最早创建的一个
func (r *chatRoomRepository) FindByMembers(memberOne, memberTwo string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.Where("member_one = ? AND member_two = ?", memberOne, memberTwo).
		Order("created_at ASC").First(&room).Error; err != nil {
		return nil, classifyDBErrorf(err, "查询房间 members=%s,%s", memberOne, memberTwo)
	}
	return &room, nil
}

// Create 创建房间
func (r *chatRoomRepository) Create(room *model.ChatRoom) error {
	if err := r.db.Create(room).Error; err != nil {
		return classifyDBError(err, "创建房间")
	}
	return nil
}

// UpdateLastMessage 更新房间的冗余最近消息字段
// 与消息插入是两次独立写；中途失败只影响会话列表展示，不破坏消息记录
func (r *chatRoomRepository) UpdateLastMessage(roomUuid, content, senderId string, at time.Time) error {
	if err := r.db.Model(&model.ChatRoom{}).Where("uuid = ?", roomUuid).Updates(map[string]any{
		"last_message":           content,
		"last_message_time":      at,
		"last_message_sender_id": senderId,
	}).Error; err != nil {
		return classifyDBErrorf(err, "更新房间最近消息 uuid=%s", roomUuid)
	}
	return nil
}
