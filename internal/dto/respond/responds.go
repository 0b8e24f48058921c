// Package respond 定义出参结构与模型到视图的转换
package respond

import (
	"strconv"
	"time"

	"match_chat_server/internal/model"
	"match_chat_server/pkg/constants"
)

// deletedPlaceholder 撤回消息的占位文案
const deletedPlaceholder = "This message was deleted"

// UserSummary 用户摘要视图，匹配结果与用户列表使用
type UserSummary struct {
	Uuid      string   `json:"uid"`
	Name      string   `json:"name"`
	Username  string   `json:"username,omitempty"`
	PhotoURL  string   `json:"photoURL,omitempty"`
	Status    string   `json:"status"`
	Age       int      `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// NewUserSummary 从模型构造用户摘要
func NewUserSummary(u *model.UserInfo) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		Uuid:      u.Uuid,
		Name:      u.Name,
		Username:  u.Username,
		PhotoURL:  u.PhotoURL,
		Status:    u.Status,
		Age:       u.Age,
		Gender:    u.Gender,
		Bio:       u.Bio,
		Interests: u.Interests,
	}
}

// NewUserSummaryList 批量转换
func NewUserSummaryList(users []model.UserInfo) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for i := range users {
		out = append(out, *NewUserSummary(&users[i]))
	}
	return out
}

// ApplyPresence 以实时在线集合覆盖摘要中的状态字段
// 落库的状态在异常断连后可能残留 online，以在线集合为准
func ApplyPresence(summaries []UserSummary, online map[string]struct{}) {
	for i := range summaries {
		if _, ok := online[summaries[i].Uuid]; ok {
			summaries[i].Status = constants.StatusOnline
		} else {
			summaries[i].Status = constants.StatusOffline
		}
	}
}

// ChatMessage 消息视图
// 撤回消息不下发原文，内容替换为占位文案
type ChatMessage struct {
	Uuid               string `json:"id"` // 雪花 ID 转字符串，避免前端精度丢失
	ChatRoomId         string `json:"chatRoomId"`
	SenderId           string `json:"senderId"`
	Content            string `json:"content"`
	SentAt             string `json:"sentAt"`
	Status             string `json:"status"`
	DeletedForEveryone bool   `json:"deletedForEveryone,omitempty"`
}

// NewChatMessage 从模型构造消息视图
func NewChatMessage(m *model.Message) ChatMessage {
	content := m.Content
	if m.DeletedForEveryone {
		content = deletedPlaceholder
	}
	return ChatMessage{
		Uuid:               strconv.FormatInt(m.Uuid, 10),
		ChatRoomId:         m.ChatRoomId,
		SenderId:           m.SenderId,
		Content:            content,
		SentAt:             m.SentAt.Format(time.RFC3339),
		Status:             m.NormalizedStatus(),
		DeletedForEveryone: m.DeletedForEveryone,
	}
}

// NewChatMessageList 批量转换，保持入参顺序
func NewChatMessageList(messages []model.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for i := range messages {
		out = append(out, NewChatMessage(&messages[i]))
	}
	return out
}

// UserInfoRespond 完整的个人资料视图
type UserInfoRespond struct {
	Uuid                 string   `json:"uid"`
	Name                 string   `json:"name"`
	Username             string   `json:"username,omitempty"`
	Email                string   `json:"email"`
	PhotoURL             string   `json:"photoURL,omitempty"`
	Status               string   `json:"status"`
	Age                  int      `json:"age,omitempty"`
	Gender               string   `json:"gender,omitempty"`
	Bio                  string   `json:"bio,omitempty"`
	Interests            []string `json:"interests,omitempty"`
	NotificationsEnabled bool     `json:"notificationsEnabled"`
	DarkModeEnabled      bool     `json:"darkModeEnabled"`
}

// NewUserInfoRespond 从模型构造个人资料视图
func NewUserInfoRespond(u *model.UserInfo) *UserInfoRespond {
	return &UserInfoRespond{
		Uuid:                 u.Uuid,
		Name:                 u.Name,
		Username:             u.Username,
		Email:                u.Email,
		PhotoURL:             u.PhotoURL,
		Status:               u.Status,
		Age:                  u.Age,
		Gender:               u.Gender,
		Bio:                  u.Bio,
		Interests:            u.Interests,
		NotificationsEnabled: u.NotificationsEnabled,
		DarkModeEnabled:      u.DarkModeEnabled,
	}
}

// LoginRespond 登录响应
type LoginRespond struct {
	User         *UserInfoRespond `json:"user"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
}
