// Package auth 实现注册、登录与令牌刷新
package auth

import (
	"context"
	"time"

	"match_chat_server/internal/dao/mysql"
	myredis "match_chat_server/internal/dao/redis"
	"match_chat_server/internal/model"
	"match_chat_server/internal/service/presence"
	"match_chat_server/pkg/errorx"
	"match_chat_server/pkg/util/jwt"
	"match_chat_server/pkg/util/random"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// refreshTokenKeyPrefix Refresh Token 在 Redis 中的键前缀
const refreshTokenKeyPrefix = "refresh_token:"

// TokenPair 登录成功后下发的令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service 认证服务
type Service struct {
	userRepo mysql.UserRepository
	presence *presence.Service
}

// NewService 创建认证服务
func NewService(userRepo mysql.UserRepository, presenceService *presence.Service) *Service {
	return &Service{userRepo: userRepo, presence: presenceService}
}

// Register 注册新用户
// 邮箱全局唯一；密码以 bcrypt 哈希存储
func (s *Service) Register(name, email, password string) (*model.UserInfo, error) {
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "该邮箱已注册")
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "密码哈希失败")
	}

	user := &model.UserInfo{
		Uuid:                 "U" + random.GetNowAndLenRandomString(13),
		Name:                 name,
		Email:                email,
		Password:             string(hashed),
		NotificationsEnabled: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	zap.L().Info("user registered", zap.String("user_id", user.Uuid))
	return user, nil
}

// Login 校验凭证并下发令牌对
// 登录成功后将用户置为在线，Refresh Token 存入 Redis 以支持撤销
func (s *Service) Login(ctx context.Context, email, password string) (*model.UserInfo, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, errorx.New(errorx.CodeInvalidPassword, "密码错误")
	}

	pair, err := s.issueTokens(ctx, user.Uuid)
	if err != nil {
		return nil, nil, err
	}

	if err := s.presence.SetOnline(user.Uuid); err != nil {
		zap.L().Warn("set online on login", zap.String("user_id", user.Uuid), zap.Error(err))
	}
	return user, pair, nil
}

// Logout 撤销 Refresh Token 并将用户置为离线
func (s *Service) Logout(ctx context.Context, userId string) error {
	if err := myredis.DelKeyIfExists(ctx, refreshTokenKeyPrefix+userId); err != nil {
		zap.L().Warn("revoke refresh token", zap.String("user_id", userId), zap.Error(err))
	}
	return s.presence.SetOffline(userId)
}

// RefreshToken 用 Refresh Token 换取新的令牌对
// 校验 Redis 中记录的 token_id，换发后旧 Refresh Token 作废
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Subject != "refresh_token" {
		return nil, errorx.New(errorx.CodeUnauthorized, "token 类型错误")
	}
	stored, err := myredis.GetKeyNilIsErr(ctx, refreshTokenKeyPrefix+claims.UserID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "refresh token 已失效")
	}
	if stored != claims.TokenID {
		return nil, errorx.New(errorx.CodeUnauthorized, "refresh token 已被替换")
	}
	return s.issueTokens(ctx, claims.UserID)
}

// issueTokens 签发令牌对并登记 Refresh Token
func (s *Service) issueTokens(ctx context.Context, userId string) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(userId)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "签发 access token 失败")
	}
	refreshToken, tokenId, err := jwt.GenerateRefreshToken(userId)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "签发 refresh token 失败")
	}
	if err := myredis.SetKeyEx(ctx, refreshTokenKeyPrefix+userId, tokenId, 7*24*time.Hour); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
