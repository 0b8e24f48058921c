// 本文件处理用户资料与设置相关的 API 请求
package handler

import (
	"match_chat_server/internal/dto/request"
	"match_chat_server/internal/dto/respond"
	"match_chat_server/internal/service/presence"
	"match_chat_server/internal/service/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	userSvc     *user.Service
	presenceSvc *presence.Service
}

// NewUserHandler 创建用户处理器
func NewUserHandler(userSvc *user.Service, presenceSvc *presence.Service) *UserHandler {
	return &UserHandler{userSvc: userSvc, presenceSvc: presenceSvc}
}

// GetProfile 获取自己的资料
// GET /user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userId := c.GetString("user_id")
	u, err := h.userSvc.GetProfile(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.NewUserInfoRespond(u))
}

// UpdateProfile 更新资料
// PUT /user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	userId := c.GetString("user_id")

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Username != nil {
		fields["username"] = *req.Username
	}
	if req.PhotoURL != nil {
		fields["photo_url"] = *req.PhotoURL
	}
	if req.Age != nil {
		fields["age"] = *req.Age
	}
	if req.Gender != nil {
		fields["gender"] = *req.Gender
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Interests != nil {
		fields["interests"] = req.Interests
	}
	if len(fields) == 0 {
		HandleSuccess(c, nil)
		return
	}
	if err := h.userSvc.UpdateProfile(userId, fields); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UpdateSettings 更新设置项
// PUT /user/settings
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	userId := c.GetString("user_id")
	if err := h.userSvc.UpdateSettings(userId, req.NotificationsEnabled, req.DarkModeEnabled); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// CheckUsername 检查用户名是否可用
// GET /user/username/check?username=xxx
func (h *UserHandler) CheckUsername(c *gin.Context) {
	var req request.CheckUsernameRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	userId := c.GetString("user_id")
	available, err := h.userSvc.IsUsernameAvailable(req.Username, userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"available": available})
}

// ListUsers 获取可聊用户列表（除自己外的全部用户，带实时在线状态）
// GET /user/list
func (h *UserHandler) ListUsers(c *gin.Context) {
	userId := c.GetString("user_id")
	users, err := h.userSvc.ListUsers(c.Request.Context(), userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	summaries := respond.NewUserSummaryList(users)
	// 在线集合读取失败时退化为落库状态
	if online, err := h.presenceSvc.OnlineUsers(c.Request.Context()); err == nil {
		set := make(map[string]struct{}, len(online))
		for _, uid := range online {
			set[uid] = struct{}{}
		}
		respond.ApplyPresence(summaries, set)
	} else {
		zap.L().Warn("load online user set", zap.Error(err))
	}
	HandleSuccess(c, summaries)
}
