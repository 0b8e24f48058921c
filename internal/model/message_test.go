package model

import (
	"testing"

	"match_chat_server/pkg/constants"

	"github.com/stretchr/testify/assert"
)

func TestVisibleTo(t *testing.T) {
	msg := &Message{DeletedForUsers: []string{"U1"}}
	assert.False(t, msg.VisibleTo("U1"))
	assert.True(t, msg.VisibleTo("U2"))

	// 撤回消息对所有人可见（以占位符呈现）
	recalled := &Message{DeletedForUsers: []string{"U1"}, DeletedForEveryone: true}
	assert.True(t, recalled.VisibleTo("U1"))
	assert.True(t, recalled.VisibleTo("U2"))
}

func TestNormalizedStatus(t *testing.T) {
	assert.Equal(t, constants.MessageSent, (&Message{Status: ""}).NormalizedStatus())
	assert.Equal(t, constants.MessageSent, (&Message{Status: "bogus"}).NormalizedStatus())
	assert.Equal(t, constants.MessageRead, (&Message{Status: constants.MessageRead}).NormalizedStatus())
	assert.Equal(t, constants.MessageSending, (&Message{Status: constants.MessageSending}).NormalizedStatus())
}

func TestSortMembers(t *testing.T) {
	a, b := SortMembers("U9", "U2")
	assert.Equal(t, "U2", a)
	assert.Equal(t, "U9", b)

	a, b = SortMembers("U2", "U9")
	assert.Equal(t, "U2", a)
	assert.Equal(t, "U9", b)
}
