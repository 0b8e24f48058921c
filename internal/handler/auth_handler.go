// 本文件处理注册、登录、令牌相关的 API 请求
package handler

import (
	"match_chat_server/internal/dto/request"
	"match_chat_server/internal/dto/respond"
	"match_chat_server/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	authSvc *auth.Service
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 用户注册
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	user, err := h.authSvc.Register(req.Name, req.Email, req.Password)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewUserInfoRespond(user))
}

// Login 用户登录
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	user, pair, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.LoginRespond{
		User:         respond.NewUserInfoRespond(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout 用户登出
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userId := c.GetString("user_id")
	if err := h.authSvc.Logout(c.Request.Context(), userId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RefreshToken 刷新令牌对
// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	pair, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, pair)
}
