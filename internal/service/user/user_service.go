// Package user 实现用户资料与设置
package user

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"match_chat_server/internal/dao/mysql"
	myredis "match_chat_server/internal/dao/redis"
	"match_chat_server/internal/model"
	"match_chat_server/pkg/constants"
	"match_chat_server/pkg/errorx"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// usernamePattern 用户名只允许字母、数字、下划线
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Service 用户服务
type Service struct {
	userRepo mysql.UserRepository
}

// NewService 创建用户服务
func NewService(userRepo mysql.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// GetProfile 获取用户资料
func (s *Service) GetProfile(userId string) (*model.UserInfo, error) {
	return s.userRepo.FindByUuid(userId)
}

// IsUsernameAvailable 检查用户名是否可用
// 规则：3-30 位字母数字下划线，全局唯一；已归属 selfId 自己的用户名视为可用
func (s *Service) IsUsernameAvailable(username, selfId string) (bool, error) {
	if len(username) < constants.USERNAME_MIN_LEN || len(username) > constants.USERNAME_MAX_LEN {
		return false, nil
	}
	if !usernamePattern.MatchString(username) {
		return false, nil
	}
	owner, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return true, nil
		}
		return false, err
	}
	return owner.Uuid == selfId, nil
}

// UpdateProfile 更新用户资料
// 用户名传空表示不修改；兴趣标签至多 10 个
func (s *Service) UpdateProfile(userId string, fields map[string]any) error {
	if username, ok := fields["username"].(string); ok && username != "" {
		available, err := s.IsUsernameAvailable(username, userId)
		if err != nil {
			return err
		}
		if !available {
			return errorx.New(errorx.CodeUsernameTaken, "用户名不可用")
		}
	}
	if interests, ok := fields["interests"].([]string); ok {
		if len(interests) > constants.MAX_INTERESTS {
			return errorx.Newf(errorx.CodeInvalidParam, "兴趣标签最多 %d 个", constants.MAX_INTERESTS)
		}
		// []string 不能直接作为 SQL 参数，转成 JSON 列类型落库
		fields["interests"] = datatypes.JSONSlice[string](interests)
	}
	if err := s.userRepo.UpdateFields(userId, fields); err != nil {
		return err
	}
	s.invalidateUserListCache()
	return nil
}

// UpdateSettings 更新设置项（通知开关、深色模式）
func (s *Service) UpdateSettings(userId string, notificationsEnabled, darkModeEnabled bool) error {
	return s.userRepo.UpdateFields(userId, map[string]any{
		"notifications_enabled": notificationsEnabled,
		"dark_mode_enabled":     darkModeEnabled,
	})
}

// ListUsers 返回除 selfId 外的全部用户
// 走 Redis 缓存：命中直接反序列化返回，未命中回源 MySQL 并异步回填
func (s *Service) ListUsers(ctx context.Context, selfId string) ([]model.UserInfo, error) {
	cacheKey := constants.UserListCacheKey + "_" + selfId
	cached, err := myredis.GetKey(ctx, cacheKey)
	if err == nil && cached != "" {
		var users []model.UserInfo
		if err := json.Unmarshal([]byte(cached), &users); err == nil {
			return users, nil
		}
	}

	users, err := s.userRepo.FindAllExcept(selfId)
	if err != nil {
		return nil, err
	}

	myredis.SubmitCacheTask(func() {
		data, err := json.Marshal(users)
		if err != nil {
			return
		}
		if err := myredis.SetKeyEx(context.Background(), cacheKey, string(data),
			time.Minute*constants.REDIS_TIMEOUT); err != nil {
			zap.L().Warn("cache user list", zap.Error(err))
		}
	})
	return users, nil
}

// invalidateUserListCache 资料变更后失效所有用户列表缓存
func (s *Service) invalidateUserListCache() {
	myredis.SubmitCacheTask(func() {
		if err := myredis.DelKeysWithPattern(context.Background(),
			constants.UserListCacheKey+"_*"); err != nil {
			zap.L().Warn("invalidate user list cache", zap.Error(err))
		}
	})
}
