package mysql

import (
	"time"

	"gorm.io/gorm"

	"match_chat_server/internal/model"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 根据 uid 查找用户
func (r *userRepository) FindByUuid(uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, classifyDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, classifyDBErrorf(err, "查询用户 email=%s", email)
	}
	return &user, nil
}

// FindByUsername 根据用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, classifyDBErrorf(err, "查询用户 username=%s", username)
	}
	return &user, nil
}

// FindAllExcept 查找除指定用户外的所有用户
func (r *userRepository) FindAllExcept(excludeUuid string) ([]model.UserInfo, error) {
	var users []model.UserInfo
	if err := r.db.Where("uuid <> ?", excludeUuid).Find(&users).Error; err != nil {
		return nil, classifyDBErrorf(err, "查询候选用户 exclude=%s", excludeUuid)
	}
	return users, nil
}

// Create 创建新用户
func (r *userRepository) Create(user *model.UserInfo) error {
	if err := r.db.Create(user).Error; err != nil {
		return classifyDBError(err, "创建用户")
	}
	return nil
}

// UpdateFields 按字段局部更新用户
func (r *userRepository) UpdateFields(uuid string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.Model(&model.UserInfo{}).Where("uuid = ?", uuid).Updates(fields).Error; err != nil {
		return classifyDBErrorf(err, "更新用户 uuid=%s", uuid)
	}
	return nil
}

// UpdateStatus 更新在线状态并刷新最近活跃时间
func (r *userRepository) UpdateStatus(uuid string, status string, lastActive time.Time) error {
	if err := r.db.Model(&model.UserInfo{}).Where("uuid = ?", uuid).Updates(map[string]any{
		"status":      status,
		"last_active": lastActive,
	}).Error; err != nil {
		return classifyDBErrorf(err, "更新用户状态 uuid=%s status=%s", uuid, status)
	}
	return nil
}
