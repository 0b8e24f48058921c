package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// ChatRoom 聊天室模型
// 两人会话容器，成员对在创建后不可变
type ChatRoom struct {
	gorm.Model

	// Uuid 房间唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(40);not null;comment:房间uuid"`

	// MemberOne / MemberTwo 成员对，按 uid 升序存储形成规范标识
	// 组合索引用于按成员对查找既有房间
	MemberOne string `gorm:"column:member_one;index:idx_members,priority:1;type:char(20);not null;comment:成员1(较小uid)"`
	MemberTwo string `gorm:"column:member_two;index:idx_members,priority:2;type:char(20);not null;comment:成员2(较大uid)"`

	// 冗余的最近消息字段，供会话列表展示
	// 与消息写入是两次独立写，不保证原子（见 channel 服务）
	LastMessage         string       `gorm:"column:last_message;type:TEXT;comment:最近消息内容"`
	LastMessageTime     sql.NullTime `gorm:"column:last_message_time;comment:最近消息时间"`
	LastMessageSenderId string       `gorm:"column:last_message_sender_id;type:char(20);comment:最近消息发送者"`
}

// TableName 指定表名
func (ChatRoom) TableName() string {
	return "chat_room"
}

// SortMembers 将成员对规范化为升序
func SortMembers(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
