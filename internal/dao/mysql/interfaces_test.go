package mysql

import (
	"strings"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"match_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDBErrorRecordNotFound(t *testing.T) {
	err := classifyDBError(gorm.ErrRecordNotFound, "查询用户")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
	assert.True(t, errorx.IsNotFound(err))
}

func TestClassifyDBErrorPermissionDenied(t *testing.T) {
	for _, number := range []uint16{1044, 1045, 1142} {
		err := classifyDBError(&mysqldriver.MySQLError{Number: number, Message: "denied"}, "查询消息")
		assert.Equal(t, errorx.CodePermissionDenied, errorx.GetCode(err), "mysql error %d", number)
	}
}

func TestClassifyDBErrorMissingTable(t *testing.T) {
	err := classifyDBError(&mysqldriver.MySQLError{Number: 1146, Message: "table doesn't exist"}, "查询消息")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestClassifyDBErrorIndexRequired(t *testing.T) {
	err := classifyDBError(&mysqldriver.MySQLError{Number: 1176, Message: "key doesn't exist"}, "查询房间消息")
	assert.True(t, errorx.IsIndexRequired(err))
	// 错误消息携带补救指引
	assert.True(t, strings.Contains(err.Error(), "CREATE INDEX idx_room_sent"))
}

func TestClassifyDBErrorFallback(t *testing.T) {
	err := classifyDBError(assert.AnError, "未知错误")
	assert.Equal(t, errorx.CodeDBError, errorx.GetCode(err))
	assert.False(t, errorx.IsIndexRequired(err))
}

func TestClassifyDBErrorNil(t *testing.T) {
	assert.NoError(t, classifyDBError(nil, "无错误"))
	assert.NoError(t, classifyDBErrorf(nil, "无错误 %s", "x"))
}
