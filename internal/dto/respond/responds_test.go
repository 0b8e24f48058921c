package respond

import (
	"testing"
	"time"

	"match_chat_server/internal/model"
	"match_chat_server/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatMessageBlanksRecalledContent(t *testing.T) {
	msg := &model.Message{
		Uuid:               123456789,
		ChatRoomId:         "room1",
		SenderId:           "U1",
		Content:            "secret original text",
		SentAt:             time.Now(),
		Status:             constants.MessageSent,
		DeletedForEveryone: true,
	}

	view := NewChatMessage(msg)
	assert.Equal(t, "This message was deleted", view.Content)
	assert.NotContains(t, view.Content, "secret")
	assert.True(t, view.DeletedForEveryone)
}

func TestNewChatMessageSnowflakeAsString(t *testing.T) {
	msg := &model.Message{Uuid: 9007199254740993, SentAt: time.Now()} // 超出 JS 安全整数
	view := NewChatMessage(msg)
	assert.Equal(t, "9007199254740993", view.Uuid)
}

func TestNewChatMessageNormalizesStatus(t *testing.T) {
	msg := &model.Message{Uuid: 1, Status: "", SentAt: time.Now()}
	assert.Equal(t, constants.MessageSent, NewChatMessage(msg).Status)

	msg.Status = "garbage"
	assert.Equal(t, constants.MessageSent, NewChatMessage(msg).Status)

	msg.Status = constants.MessageRead
	assert.Equal(t, constants.MessageRead, NewChatMessage(msg).Status)
}

func TestNewChatMessageListKeepsOrder(t *testing.T) {
	now := time.Now()
	messages := []model.Message{
		{Uuid: 1, Content: "a", SentAt: now},
		{Uuid: 2, Content: "b", SentAt: now.Add(time.Second)},
	}
	views := NewChatMessageList(messages)
	require.Len(t, views, 2)
	assert.Equal(t, "a", views[0].Content)
	assert.Equal(t, "b", views[1].Content)
}

func TestNewUserSummaryNil(t *testing.T) {
	assert.Nil(t, NewUserSummary(nil))
}

func TestApplyPresenceOverridesStoredStatus(t *testing.T) {
	summaries := []UserSummary{
		{Uuid: "U1", Status: constants.StatusOffline}, // 实际已上线
		{Uuid: "U2", Status: constants.StatusOnline},  // 异常断连后残留 online
	}

	ApplyPresence(summaries, map[string]struct{}{"U1": {}})

	assert.Equal(t, constants.StatusOnline, summaries[0].Status)
	assert.Equal(t, constants.StatusOffline, summaries[1].Status)
}
