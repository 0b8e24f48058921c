// Package match 实现随机匹配与聊天室创建
// 候选池为除自己外的全部注册用户，不按在线状态过滤：
// 离线过滤依赖"页面关闭时置 offline"的尽力写，残留脏状态会让候选池越缩越小，
// 宁可匹配到离线用户也不让匹配功能随时间退化
package match

import (
	"match_chat_server/internal/dao/mysql"
	"match_chat_server/internal/model"
	"match_chat_server/pkg/constants"
	"match_chat_server/pkg/errorx"
	"match_chat_server/pkg/util/random"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service 匹配服务
type Service struct {
	userRepo mysql.UserRepository
	roomRepo mysql.ChatRoomRepository
}

// NewService 创建匹配服务
func NewService(userRepo mysql.UserRepository, roomRepo mysql.ChatRoomRepository) *Service {
	return &Service{userRepo: userRepo, roomRepo: roomRepo}
}

// EnsureUser 自愈：确保自己的用户记录存在
// 匹配前调用，记录缺失时按传入资料补建，已存在则不动
func (s *Service) EnsureUser(self *model.UserInfo) error {
	_, err := s.userRepo.FindByUuid(self.Uuid)
	if err == nil {
		return nil
	}
	if !errorx.IsNotFound(err) {
		return err
	}
	if self.Status == "" {
		self.Status = constants.StatusOnline
	}
	zap.L().Info("self-heal: creating missing user record", zap.String("user_id", self.Uuid))
	return s.userRepo.Create(self)
}

// FindRandomMatch 从候选池中等概率随机挑选一个用户
// 候选池为空时返回 (nil, nil)，由上层转换为用户可读的提示
func (s *Service) FindRandomMatch(selfId string) (*model.UserInfo, error) {
	candidates, err := s.userRepo.FindAllExcept(selfId)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	picked := candidates[random.PickIndex(len(candidates))]
	return &picked, nil
}

// SelectUser 从用户列表中选定指定用户
func (s *Service) SelectUser(selfId, targetId string) (*model.UserInfo, error) {
	if targetId == selfId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能选择自己")
	}
	return s.userRepo.FindByUuid(targetId)
}

// ListUsers 返回除自己外的全部用户，供用户列表模式展示
func (s *Service) ListUsers(selfId string) ([]model.UserInfo, error) {
	return s.userRepo.FindAllExcept(selfId)
}

// CreateChatRoom 为成员对获取聊天室
// 成员对按 uid 升序规范化；同一成员对复用既有房间而不是重复创建
func (s *Service) CreateChatRoom(a, b string) (*model.ChatRoom, error) {
	if a == b {
		return nil, errorx.New(errorx.CodeInvalidParam, "成员对不能是同一用户")
	}
	one, two := model.SortMembers(a, b)

	room, err := s.roomRepo.FindByMembers(one, two)
	if err == nil {
		return room, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}

	room = &model.ChatRoom{
		Uuid:      "R" + uuid.New().String(),
		MemberOne: one,
		MemberTwo: two,
	}
	if err := s.roomRepo.Create(room); err != nil {
		// 并发创建同一成员对时唯一约束可能失败，回查一次
		if existing, findErr := s.roomRepo.FindByMembers(one, two); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return room, nil
}
