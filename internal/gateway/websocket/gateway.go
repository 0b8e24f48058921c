// Package websocket 实现实时连接网关
// 每条连接绑定一个会话编排器：前端指令经连接下发到会话，
// 会话的每次状态变更整体序列化后推回前端
package websocket

import (
	"net/http"
	"sync"

	"match_chat_server/internal/dao/mysql"
	"match_chat_server/internal/service/presence"
	"match_chat_server/internal/service/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 允许任意来源连接，前端与后端通常不同源
var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway WebSocket 网关
type Gateway struct {
	sessionDeps session.Deps
	presence    *presence.Service
	userRepo    mysql.UserRepository
	clients     sync.Map // userId -> *ChatClient
}

// NewGateway 创建网关
func NewGateway(deps session.Deps, presenceSvc *presence.Service, userRepo mysql.UserRepository) *Gateway {
	return &Gateway{
		sessionDeps: deps,
		presence:    presenceSvc,
		userRepo:    userRepo,
	}
}

// HandleConnection 升级 HTTP 连接并启动读写协程
// 同一用户重复建连时旧连接被踢掉
func (g *Gateway) HandleConnection(c *gin.Context, userId string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket upgrade", zap.Error(err))
		return
	}

	client := newChatClient(g, conn, userId)
	if old, loaded := g.clients.Swap(userId, client); loaded {
		old.(*ChatClient).close()
	}

	if err := g.presence.SetOnline(userId); err != nil {
		zap.L().Warn("set online on connect", zap.String("user_id", userId), zap.Error(err))
	}

	go client.writePump()
	go client.readPump()
	zap.L().Info("websocket connected", zap.String("user_id", userId))
}

// dropClient 连接关闭后的清理
func (g *Gateway) dropClient(client *ChatClient) {
	// 仅当映射表里还是自己时才移除，避免误删新连接
	if current, ok := g.clients.Load(client.userId); ok && current == client {
		g.clients.Delete(client.userId)
		if err := g.presence.SetOffline(client.userId); err != nil {
			zap.L().Warn("set offline on disconnect",
				zap.String("user_id", client.userId), zap.Error(err))
		}
	}
	zap.L().Info("websocket disconnected", zap.String("user_id", client.userId))
}
