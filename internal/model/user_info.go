// Package model 定义数据库实体模型
package model

import (
	"database/sql"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserInfo 用户模型
// 对应数据库 user_info 表，首次认证成功时若不存在则自动创建
type UserInfo struct {
	gorm.Model

	// Uuid 用户唯一标识，U + 时间戳随机串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户uuid"`

	// Name 显示昵称
	Name string `gorm:"column:name;type:varchar(50);not null;comment:昵称"`

	// Username 用户名，可选；3-30 位字母数字下划线，全局唯一（业务层校验）
	Username string `gorm:"column:username;index;type:varchar(30);comment:用户名"`

	// Email 登录邮箱
	Email string `gorm:"column:email;uniqueIndex;type:varchar(100);not null;comment:邮箱"`

	// Password bcrypt 哈希
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码哈希"`

	// PhotoURL 头像链接
	PhotoURL string `gorm:"column:photo_url;type:varchar(255);comment:头像url"`

	// Status 在线状态：online / offline
	// 登录、页面获得焦点时置 online；登出、页面关闭时置 offline（尽力而为）
	Status string `gorm:"column:status;type:varchar(10);not null;default:offline;comment:在线状态"`

	// LastActive 最近活跃时间，随状态变更一起刷新
	LastActive sql.NullTime `gorm:"column:last_active;comment:最近活跃时间"`

	// 个人资料字段
	Age      int                          `gorm:"column:age;comment:年龄"`
	Gender   string                       `gorm:"column:gender;type:varchar(10);comment:性别"`
	Bio      string                       `gorm:"column:bio;type:TEXT;comment:个人简介"`
	Interests datatypes.JSONSlice[string] `gorm:"column:interests;comment:兴趣标签，至多10个"`

	// 设置项
	NotificationsEnabled bool `gorm:"column:notifications_enabled;default:true;comment:通知开关"`
	DarkModeEnabled      bool `gorm:"column:dark_mode_enabled;default:false;comment:深色模式"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}
