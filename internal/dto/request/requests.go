// Package request 定义 HTTP/WebSocket 入参结构
package request

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=64"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest 更新资料请求
// 指针字段区分"未提交"与"清空"
type UpdateProfileRequest struct {
	Name      *string  `json:"name" binding:"omitempty,min=1,max=50"`
	Username  *string  `json:"username" binding:"omitempty,min=3,max=30"`
	PhotoURL  *string  `json:"photo_url" binding:"omitempty,url"`
	Age       *int     `json:"age" binding:"omitempty,gte=0,lte=150"`
	Gender    *string  `json:"gender" binding:"omitempty,max=10"`
	Bio       *string  `json:"bio" binding:"omitempty,max=500"`
	Interests []string `json:"interests" binding:"omitempty,max=10,dive,min=1,max=30"`
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	NotificationsEnabled bool `json:"notifications_enabled"`
	DarkModeEnabled      bool `json:"dark_mode_enabled"`
}

// CheckUsernameRequest 用户名可用性检查
type CheckUsernameRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
}
