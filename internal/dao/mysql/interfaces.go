// Package mysql 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
package mysql

import (
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"match_chat_server/internal/model"
	"match_chat_server/pkg/errorx"
)

// ==================== 错误分类辅助函数 ====================

// classifyDBError 将底层数据库错误映射为带机器可读错误码的 CodeError
// 上层（会话编排）按错误码做穷尽分支，而不是匹配错误消息子串：
//   - gorm.ErrRecordNotFound / 表不存在      -> CodeNotFound
//   - 访问/命令被拒绝                        -> CodePermissionDenied
//   - 索引缺失（MySQL 1176）                  -> CodeIndexRequired，消息中带补救指引
//   - 其他                                   -> CodeDBError
func classifyDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1044, 1045, 1142: // access denied / command denied
			return errorx.Wrap(err, errorx.CodePermissionDenied, msg)
		case 1146: // table doesn't exist
			return errorx.Wrap(err, errorx.CodeNotFound, msg)
		case 1176: // key doesn't exist in table
			return errorx.Wrapf(err, errorx.CodeIndexRequired,
				"%s；缺少组合索引，请执行: CREATE INDEX idx_room_sent ON message (chat_room_id, sent_at)", msg)
		}
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// classifyDBErrorf 同 classifyDBError，支持格式化消息
func classifyDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return classifyDBError(err, fmt.Sprintf(format, args...))
}

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 uid 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByEmail 根据邮箱查找用户
	FindByEmail(email string) (*model.UserInfo, error)
	// FindByUsername 根据用户名查找用户
	FindByUsername(username string) (*model.UserInfo, error)
	// FindAllExcept 查找除指定用户外的所有用户
	FindAllExcept(excludeUuid string) ([]model.UserInfo, error)
	// Create 创建新用户
	Create(user *model.UserInfo) error
	// UpdateFields 按字段局部更新用户
	UpdateFields(uuid string, fields map[string]any) error
	// UpdateStatus 更新在线状态并刷新最近活跃时间
	UpdateStatus(uuid string, status string, lastActive time.Time) error
}

// ChatRoomRepository 聊天室数据访问接口
type ChatRoomRepository interface {
	// FindByUuid 根据房间 uuid 查找房间
	FindByUuid(uuid string) (*model.ChatRoom, error)
	// FindByMembers 按规范成员对（升序）查找既有房间
	FindByMembers(memberOne, memberTwo string) (*model.ChatRoom, error)
	// Create 创建房间
	Create(room *model.ChatRoom) error
	// UpdateLastMessage 更新房间的冗余最近消息字段
	UpdateLastMessage(roomUuid, content, senderId string, at time.Time) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// FindByRoomOrdered 取房间全量消息，按 sent_at 升序（uuid 兜底保证稳定序）
	FindByRoomOrdered(roomUuid string) ([]model.Message, error)
	// FindByUuid 根据消息雪花 ID 查找消息
	FindByUuid(uuid int64) (*model.Message, error)
	// Create 创建消息
	Create(message *model.Message) error
	// MarkAsRead 批量已读：房间内 sender != viewer 且状态 in (sent, delivered)
	// 的消息置为 read，单条原子批量更新，返回更新条数
	MarkAsRead(roomUuid, viewerUuid string) (int64, error)
	// AddDeletedForUser 幂等地把用户加入消息的 deleted_for_users
	AddDeletedForUser(uuid int64, userId string) error
	// MarkDeletedForEveryone 撤回消息：置 deleted_for_everyone 并记录时间
	MarkDeletedForEveryone(uuid int64, at time.Time) error
}
