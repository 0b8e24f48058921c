package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"

	"match_chat_server/pkg/constants"
)

// Message 消息模型
// 不嵌入 gorm.Model：消息从不硬删除，deleted_at 在这里表示"对所有人删除"的时间戳，
// 而非 GORM 的软删除标记
type Message struct {
	ID uint `gorm:"primarykey"`

	// Uuid 消息雪花 ID，同节点内严格递增
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ChatRoomId 所属房间
	// 与 sent_at 的组合索引服务"按房间取全量消息并按时间升序"的订阅查询
	ChatRoomId string `gorm:"column:chat_room_id;index:idx_room_sent,priority:1;type:char(40);not null;comment:房间uuid"`

	// SenderId 发送者 uid
	SenderId string `gorm:"column:sender_id;index;type:char(20);not null;comment:发送者uuid"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// SentAt 服务端落库时间，消息排序的权威依据
	SentAt time.Time `gorm:"column:sent_at;autoCreateTime;index:idx_room_sent,priority:2;comment:发送时间"`

	// Status 消息状态：sending / sent / delivered / read
	// 只对发送者自己的回执展示有意义；状态只前进不回退
	Status string `gorm:"column:status;type:varchar(10);not null;default:sent;comment:消息状态"`

	// DeletedForUsers 对哪些用户隐藏（"仅对我删除"）
	DeletedForUsers datatypes.JSONSlice[string] `gorm:"column:deleted_for_users;comment:对指定用户删除"`

	// DeletedForEveryone 是否已对所有人删除（撤回），内容以占位符呈现
	DeletedForEveryone bool `gorm:"column:deleted_for_everyone;default:false;comment:对所有人删除"`

	// DeletedAt 撤回时间戳
	DeletedAt sql.NullTime `gorm:"column:deleted_at;comment:撤回时间"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}

// VisibleTo 判断消息对某个观察者是否可见
// 撤回消息对所有人可见（呈现占位符）；否则观察者在 DeletedForUsers 中即不可见
func (m *Message) VisibleTo(viewerId string) bool {
	if m.DeletedForEveryone {
		return true
	}
	for _, uid := range m.DeletedForUsers {
		if uid == viewerId {
			return false
		}
	}
	return true
}

// NormalizedStatus 返回合法状态，缺失或非法值回退为 sent
func (m *Message) NormalizedStatus() string {
	switch m.Status {
	case constants.MessageSending, constants.MessageSent, constants.MessageDelivered, constants.MessageRead:
		return m.Status
	default:
		return constants.MessageSent
	}
}
