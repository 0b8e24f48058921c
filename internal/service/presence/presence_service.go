// Package presence 维护用户在线状态
// 状态写入 MySQL（权威），同时异步维护 Redis 在线用户集合供匹配层快速查询
// 离线标记是尽力而为的：连接异常断开时可能残留 online，由最近活跃时间兜底判断
package presence

import (
	"context"
	"time"

	"match_chat_server/internal/dao/mysql"
	myredis "match_chat_server/internal/dao/redis"
	"match_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// Service 在线状态服务
type Service struct {
	userRepo mysql.UserRepository
}

// NewService 创建在线状态服务
func NewService(userRepo mysql.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// SetOnline 将用户标记为在线
// 登录成功、页面获得焦点、WebSocket 建连时调用
func (s *Service) SetOnline(userId string) error {
	now := time.Now()
	if err := s.userRepo.UpdateStatus(userId, constants.StatusOnline, now); err != nil {
		return err
	}
	myredis.SubmitCacheTask(func() {
		if err := myredis.AddToSet(context.Background(), constants.OnlineUsersKey, userId); err != nil {
			zap.L().Warn("add online user to redis set", zap.String("user_id", userId), zap.Error(err))
		}
	})
	return nil
}

// SetOffline 将用户标记为离线
// 登出、页面关闭、WebSocket 断开时调用，失败只记日志
func (s *Service) SetOffline(userId string) error {
	now := time.Now()
	if err := s.userRepo.UpdateStatus(userId, constants.StatusOffline, now); err != nil {
		return err
	}
	myredis.SubmitCacheTask(func() {
		if err := myredis.RemoveFromSet(context.Background(), constants.OnlineUsersKey, userId); err != nil {
			zap.L().Warn("remove online user from redis set", zap.String("user_id", userId), zap.Error(err))
		}
	})
	return nil
}

// Heartbeat 刷新最近活跃时间，保持在线标记
func (s *Service) Heartbeat(userId string) error {
	return s.userRepo.UpdateStatus(userId, constants.StatusOnline, time.Now())
}

// IsOnline 查询用户是否在 Redis 在线集合中
func (s *Service) IsOnline(ctx context.Context, userId string) (bool, error) {
	return myredis.IsSetMember(ctx, constants.OnlineUsersKey, userId)
}

// OnlineUsers 返回当前在线用户集合
func (s *Service) OnlineUsers(ctx context.Context) ([]string, error) {
	return myredis.GetSetMembers(ctx, constants.OnlineUsersKey)
}
