// Package router 提供 HTTP 路由注册
package router

import (
	"match_chat_server/internal/handler"
	"match_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.registerAuthRoutes(r)
	rt.registerUserRoutes(r)
	rt.registerWsRoutes(r)
}

// registerAuthRoutes 认证路由
func (rt *Router) registerAuthRoutes(r *gin.Engine) {
	group := r.Group("/auth")
	{
		group.POST("/register", rt.handlers.Auth.Register)
		group.POST("/login", rt.handlers.Auth.Login)
		group.POST("/refresh", rt.handlers.Auth.RefreshToken)
		group.POST("/logout", middleware.JWTAuth(), rt.handlers.Auth.Logout)
	}
}

// registerUserRoutes 用户路由，全部需要认证
func (rt *Router) registerUserRoutes(r *gin.Engine) {
	group := r.Group("/user", middleware.JWTAuth())
	{
		group.GET("/profile", rt.handlers.User.GetProfile)
		group.PUT("/profile", rt.handlers.User.UpdateProfile)
		group.PUT("/settings", rt.handlers.User.UpdateSettings)
		group.GET("/username/check", rt.handlers.User.CheckUsername)
		group.GET("/list", rt.handlers.User.ListUsers)
	}
}

// registerWsRoutes WebSocket 路由，token 在建连时校验
func (rt *Router) registerWsRoutes(r *gin.Engine) {
	r.GET("/ws/connect", rt.handlers.Ws.Connect)
}
