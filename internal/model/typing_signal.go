package model

import "time"

// TypingSignal 输入状态信号
// 短暂数据，仅存于 Redis：每个 (房间, 用户) 只保留当前值，最后写入者胜出
type TypingSignal struct {
	ChatRoomId string    `json:"chatRoomId"`
	UserId     string    `json:"userId"`
	IsTyping   bool      `json:"isTyping"`
	Timestamp  time.Time `json:"timestamp"`
}
