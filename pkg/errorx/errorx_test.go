package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeDBError, "查询失败")

	assert.Equal(t, CodeDBError, GetCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "查询失败")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetCodeThroughWrapping(t *testing.T) {
	inner := New(CodeIndexRequired, "缺少索引")
	outer := fmt.Errorf("outer context: %w", inner)

	assert.Equal(t, CodeIndexRequired, GetCode(outer))
	assert.True(t, IsIndexRequired(outer))
}

func TestGetCodeDefaultsToServerBusy(t *testing.T) {
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("plain")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(CodeNotFound, "不存在")))
	assert.False(t, IsNotFound(New(CodeDBError, "其他错误")))
	assert.False(t, IsNotFound(nil))
}

func TestIsIndexRequiredOnlyMatchesCode(t *testing.T) {
	assert.True(t, IsIndexRequired(New(CodeIndexRequired, "x")))
	assert.False(t, IsIndexRequired(New(CodeDBError, "index 字样不触发")))
	assert.False(t, IsIndexRequired(nil))
}
