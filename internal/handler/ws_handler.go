// 本文件处理 WebSocket 建连请求
package handler

import (
	"net/http"

	"match_chat_server/internal/gateway/websocket"
	"match_chat_server/pkg/errorx"
	"match_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 建连处理器
type WsHandler struct {
	gateway *websocket.Gateway
}

// NewWsHandler 创建 WebSocket 处理器
func NewWsHandler(gateway *websocket.Gateway) *WsHandler {
	return &WsHandler{gateway: gateway}
}

// Connect 升级连接
// GET /ws/connect?token=xxx
// 浏览器的 WebSocket API 无法自定义请求头，token 经查询参数传递
func (h *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "缺少 token",
		})
		return
	}
	claims, err := jwt.ParseToken(token)
	if err != nil {
		zap.L().Warn("websocket token invalid", zap.Error(err))
		HandleError(c, err)
		return
	}
	if claims.Subject != "access_token" {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "token 类型错误"))
		return
	}
	h.gateway.HandleConnection(c, claims.UserID)
}
