// 本文件聚合所有 Handler，作为依赖注入入口
package handler

import (
	"match_chat_server/internal/gateway/websocket"
	"match_chat_server/internal/service/auth"
	"match_chat_server/internal/service/presence"
	"match_chat_server/internal/service/user"
)

// Handlers Handler 聚合对象
type Handlers struct {
	Auth *AuthHandler
	User *UserHandler
	Ws   *WsHandler
}

// NewHandlers 创建全部 Handler
func NewHandlers(authSvc *auth.Service, userSvc *user.Service, presenceSvc *presence.Service, gateway *websocket.Gateway) *Handlers {
	return &Handlers{
		Auth: NewAuthHandler(authSvc),
		User: NewUserHandler(userSvc, presenceSvc),
		Ws:   NewWsHandler(gateway),
	}
}
