// 本文件实现单条连接的读写协程与指令分发
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"match_chat_server/internal/model"
	"match_chat_server/internal/service/session"
	"match_chat_server/pkg/constants"
	"match_chat_server/pkg/errorx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 心跳参数：pingPeriod 必须小于 pongWait
const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// 前端指令动作
const (
	ActionFindRandom   = "find_random"
	ActionSelectUser   = "select_user"
	ActionSend         = "send"
	ActionTyping       = "typing"
	ActionMarkRead     = "mark_read"
	ActionShowUserList = "show_user_list"
	ActionGoBack       = "go_back"
	ActionVisible      = "visible"
)

// Command 前端指令
type Command struct {
	Action   string `json:"action"`
	TargetId string `json:"target_id,omitempty"` // select_user 使用
	Content  string `json:"content,omitempty"`   // send 使用
	Visible  *bool  `json:"visible,omitempty"`   // visible 使用
}

// stateEnvelope 下行状态帧
type stateEnvelope struct {
	Type string        `json:"type"`
	Data session.State `json:"data"`
}

// ChatClient 单条 WebSocket 连接
type ChatClient struct {
	gateway   *Gateway
	conn      *websocket.Conn
	userId    string
	session   *session.Session
	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// newChatClient 创建连接对象并绑定会话
func newChatClient(g *Gateway, conn *websocket.Conn, userId string) *ChatClient {
	client := &ChatClient{
		gateway: g,
		conn:    conn,
		userId:  userId,
		sendCh:  make(chan []byte, constants.CHANNEL_SIZE),
		done:    make(chan struct{}),
	}
	client.session = session.NewSession(userId, g.sessionDeps, client.pushState)
	return client
}

// pushState 把会话状态推入下行队列
// 队列满时丢弃最旧的一帧：状态是全量快照，旧帧可以被新帧覆盖
func (c *ChatClient) pushState(state session.State) {
	data, err := json.Marshal(stateEnvelope{Type: "state", Data: state})
	if err != nil {
		zap.L().Error("marshal session state", zap.Error(err))
		return
	}
	for {
		select {
		case c.sendCh <- data:
			return
		case <-c.done:
			return
		default:
			select {
			case <-c.sendCh:
			default:
			}
		}
	}
}

// readPump 读取前端指令并分发
// pong 应答同时作为在线心跳，刷新最近活跃时间
func (c *ChatClient) readPump() {
	defer c.close()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := c.gateway.presence.Heartbeat(c.userId); err != nil {
			zap.L().Warn("presence heartbeat", zap.String("user_id", c.userId), zap.Error(err))
		}
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("websocket read", zap.String("user_id", c.userId), zap.Error(err))
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			zap.L().Warn("invalid command payload", zap.String("user_id", c.userId), zap.Error(err))
			continue
		}
		c.dispatch(cmd)
	}
}

// dispatch 分发单条指令到会话
func (c *ChatClient) dispatch(cmd Command) {
	ctx := context.Background()
	switch cmd.Action {
	case ActionFindRandom:
		c.session.FindRandomMatch(ctx, c.selfProfile())
	case ActionSelectUser:
		c.session.SelectUser(ctx, cmd.TargetId)
	case ActionSend:
		c.session.Send(ctx, cmd.Content)
	case ActionTyping:
		c.session.SetTyping(ctx)
	case ActionMarkRead:
		c.session.MarkRead(ctx)
	case ActionShowUserList:
		c.session.ShowUserList()
	case ActionGoBack:
		c.session.GoBack()
	case ActionVisible:
		if cmd.Visible != nil {
			c.session.SetVisible(ctx, *cmd.Visible)
		}
	default:
		zap.L().Warn("unknown command action",
			zap.String("user_id", c.userId), zap.String("action", cmd.Action))
	}
}

// selfProfile 取自己的资料，供匹配前的自愈补建
// 记录缺失时退化为仅含 uid 的最小资料
func (c *ChatClient) selfProfile() *model.UserInfo {
	self, err := c.gateway.userRepo.FindByUuid(c.userId)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Warn("load self profile", zap.String("user_id", c.userId), zap.Error(err))
		}
		return &model.UserInfo{Uuid: c.userId, Name: "User"}
	}
	return self
}

// writePump 把下行队列中的帧写到连接，并按周期发送 ping
func (c *ChatClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.sendCh:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				zap.L().Warn("websocket write", zap.String("user_id", c.userId), zap.Error(err))
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

// close 关闭连接并释放会话资源，幂等
func (c *ChatClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.session.Close()
		if err := c.conn.Close(); err != nil {
			zap.L().Debug("close websocket", zap.Error(err))
		}
		c.gateway.dropClient(c)
	})
}
