// Package session 实现单个用户的会话编排
// 把匹配、消息订阅、输入状态、在线状态聚合为一份可下发的会话状态，
// 每次变更后整体推送给连接层
//
// 并发模型：所有状态变更都在会话锁内完成；每次房间切换递增 epoch，
// 旧房间的异步回调（延迟订阅、快照、输入信号）凭 epoch 识别自己已过期并放弃写入
package session

import (
	"context"
	"sync"
	"time"

	"match_chat_server/internal/dto/respond"
	"match_chat_server/internal/model"
	"match_chat_server/internal/service/channel"
	"match_chat_server/internal/service/match"
	"match_chat_server/internal/service/presence"
	"match_chat_server/internal/service/typing"
	"match_chat_server/pkg/constants"
	"match_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// 用户可读的错误文案
const (
	msgNoUsersAvailable = "No users available. Try again later when more users are online."
	msgPermissionDenied = "You don't have permission to access this chat."
	msgUserNotFound     = "User not found."
	msgGenericFailure   = "Something went wrong. Please try again."
)

// State 会话状态快照，整体下发给客户端
type State struct {
	MatchedUser       *respond.UserSummary  `json:"matchedUser"`
	Finding           bool                  `json:"finding"`
	Error             string                `json:"error,omitempty"`
	ChatRoomId        string                `json:"chatRoomId,omitempty"`
	Messages          []respond.ChatMessage `json:"messages"`
	IndexingError     bool                  `json:"indexingError"`
	IsRecipientTyping bool                  `json:"isRecipientTyping"`
	UserListMode      bool                  `json:"userListMode"`
}

// Deps 会话依赖的各项服务
type Deps struct {
	Match    *match.Service
	Channel  *channel.Service
	Typing   *typing.Service
	Presence *presence.Service

	// SubscribeDelay 房间确定到消息订阅建立之间的等待
	SubscribeDelay time.Duration
	// TypingDebounce 输入防抖间隔
	TypingDebounce time.Duration
}

// Session 单用户会话
type Session struct {
	userId string
	deps   Deps
	emit   func(State) // 状态推送回调，由连接层提供

	mu           sync.Mutex
	epoch        int // 房间代次，teardown 时递增
	emitSeq      uint64
	state        State
	visible      bool
	msgSub       *channel.Subscription
	typingCancel func()
	debouncer    *typing.Debouncer
	delayTimer   *time.Timer

	// emitMu 串行化状态推送，emittedSeq 拦截晚到的旧帧
	emitMu     sync.Mutex
	emittedSeq uint64
}

// NewSession 创建会话
func NewSession(userId string, deps Deps, emit func(State)) *Session {
	if deps.SubscribeDelay == 0 {
		deps.SubscribeDelay = constants.SUBSCRIBE_DELAY
	}
	if deps.TypingDebounce == 0 {
		deps.TypingDebounce = constants.TYPING_DEBOUNCE
	}
	return &Session{
		userId:  userId,
		deps:    deps,
		emit:    emit,
		visible: true,
		state:   State{Messages: []respond.ChatMessage{}},
	}
}

// Snapshot 返回当前状态快照
func (sess *Session) Snapshot() State {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// emitUnlock 在锁内取快照，解锁后推送
// 约定：调用方持锁进入，本函数负责解锁
// 推送按快照产生顺序串行：若更新的快照已送出，旧快照直接丢弃
func (sess *Session) emitUnlock() {
	sess.emitSeq++
	seq := sess.emitSeq
	snapshot := sess.state
	sess.mu.Unlock()
	if sess.emit == nil {
		return
	}
	sess.emitMu.Lock()
	defer sess.emitMu.Unlock()
	if seq <= sess.emittedSeq {
		return
	}
	sess.emittedSeq = seq
	sess.emit(snapshot)
}

// FindRandomMatch 随机匹配
// 清空上一个会话的全部状态后进入 finding，匹配成功则建房并延迟建立消息订阅
func (sess *Session) FindRandomMatch(ctx context.Context, self *model.UserInfo) {
	myEpoch := sess.reset(State{Finding: true, Messages: []respond.ChatMessage{}})

	if err := sess.deps.Match.EnsureUser(self); err != nil {
		sess.failFinding(myEpoch, err)
		return
	}
	matched, err := sess.deps.Match.FindRandomMatch(sess.userId)
	if err != nil {
		sess.failFinding(myEpoch, err)
		return
	}
	if matched == nil {
		sess.mu.Lock()
		if sess.epoch != myEpoch {
			sess.mu.Unlock()
			return
		}
		sess.state.Finding = false
		sess.state.Error = msgNoUsersAvailable
		sess.emitUnlock()
		return
	}
	sess.enterRoom(ctx, myEpoch, matched)
}

// SelectUser 从用户列表中选定用户开聊
func (sess *Session) SelectUser(ctx context.Context, targetId string) {
	myEpoch := sess.reset(State{Finding: true, Messages: []respond.ChatMessage{}})

	matched, err := sess.deps.Match.SelectUser(sess.userId, targetId)
	if err != nil {
		sess.failFinding(myEpoch, err)
		return
	}
	sess.enterRoom(ctx, myEpoch, matched)
}

// enterRoom 建房、落状态、调度延迟订阅
func (sess *Session) enterRoom(ctx context.Context, myEpoch int, matched *model.UserInfo) {
	room, err := sess.deps.Match.CreateChatRoom(sess.userId, matched.Uuid)
	if err != nil {
		sess.failFinding(myEpoch, err)
		return
	}

	matchedView := respond.NewUserSummary(matched)
	// Redis 在线集合比落库的状态字段实时，命中则覆盖
	if online, err := sess.deps.Presence.IsOnline(ctx, matched.Uuid); err == nil && online {
		matchedView.Status = constants.StatusOnline
	}

	sess.mu.Lock()
	if sess.epoch != myEpoch {
		sess.mu.Unlock()
		return
	}
	sess.state.Finding = false
	sess.state.MatchedUser = matchedView
	sess.state.ChatRoomId = room.Uuid
	roomId := room.Uuid
	otherId := matched.Uuid
	// 存储层创建到可查询之间可能有传播延迟，稍等再订阅
	sess.delayTimer = time.AfterFunc(sess.deps.SubscribeDelay, func() {
		sess.attachRoom(ctx, myEpoch, roomId, otherId)
	})
	sess.emitUnlock()
}

// attachRoom 建立消息订阅、输入信号订阅与防抖器
func (sess *Session) attachRoom(ctx context.Context, myEpoch int, roomId, otherId string) {
	sess.mu.Lock()
	if sess.epoch != myEpoch {
		sess.mu.Unlock()
		return
	}
	sess.debouncer = typing.NewDebouncer(sess.deps.Typing, roomId, sess.userId, sess.deps.TypingDebounce)
	sess.mu.Unlock()

	msgSub, err := sess.deps.Channel.Subscribe(roomId, sess.userId,
		func(messages []model.Message) { sess.onSnapshot(myEpoch, messages) },
		func(err error) { sess.onQueryError(myEpoch, err) },
	)
	if err != nil {
		zap.L().Error("subscribe room messages",
			zap.String("room_id", roomId), zap.Error(err))
		sess.mu.Lock()
		if sess.epoch == myEpoch {
			sess.state.Error = translateError(err)
			sess.emitUnlock()
			return
		}
		sess.mu.Unlock()
		return
	}

	signals, cancel, err := sess.deps.Typing.SubscribeTyping(ctx, roomId, otherId)
	if err != nil {
		zap.L().Warn("subscribe typing signals",
			zap.String("room_id", roomId), zap.Error(err))
	}
	// 订阅只投递之后的变化，对方可能在挂接前就已开始输入，补读一次当前值
	initialTyping := sess.deps.Typing.GetTypingStatus(ctx, roomId, otherId)

	sess.mu.Lock()
	if sess.epoch != myEpoch {
		sess.mu.Unlock()
		msgSub.Unsubscribe()
		if cancel != nil {
			cancel()
		}
		return
	}
	sess.msgSub = msgSub
	sess.typingCancel = cancel
	if initialTyping && !sess.state.IsRecipientTyping {
		sess.state.IsRecipientTyping = true
		sess.emitUnlock()
	} else {
		sess.mu.Unlock()
	}

	if signals != nil {
		go sess.consumeTyping(myEpoch, signals)
	}
}

// onSnapshot 收到消息快照，整体替换本地消息列表
// 页面可见且快照中存在对方未读消息时，异步补一次已读；
// 已读落库后会触发带新状态的下一次快照，不会形成循环
func (sess *Session) onSnapshot(myEpoch int, messages []model.Message) {
	sess.mu.Lock()
	if sess.epoch != myEpoch {
		sess.mu.Unlock()
		return
	}
	sess.state.Messages = respond.NewChatMessageList(messages)
	sess.state.IndexingError = false // 成功快照视为索引问题已解除，错误路径随后会重新置位
	needRead := sess.visible && hasUnreadFrom(messages, sess.userId)
	sess.emitUnlock()
	if needRead {
		go sess.MarkRead(context.Background())
	}
}

// hasUnreadFrom 快照中是否存在对方发送且尚未读的消息
func hasUnreadFrom(messages []model.Message, selfId string) bool {
	for i := range messages {
		if messages[i].SenderId != selfId &&
			messages[i].NormalizedStatus() != constants.MessageRead {
			return true
		}
	}
	return false
}

// onQueryError 订阅查询失败
// 缺索引是可区分的降级状态；其他错误已在通道层记录日志，这里不打断会话
func (sess *Session) onQueryError(myEpoch int, err error) {
	sess.mu.Lock()
	if sess.epoch != myEpoch {
		sess.mu.Unlock()
		return
	}
	if errorx.IsIndexRequired(err) {
		sess.state.IndexingError = true
	}
	sess.emitUnlock()
}

// consumeTyping 消费对方的输入信号
func (sess *Session) consumeTyping(myEpoch int, signals <-chan model.TypingSignal) {
	for signal := range signals {
		sess.mu.Lock()
		if sess.epoch != myEpoch {
			sess.mu.Unlock()
			return
		}
		if sess.state.IsRecipientTyping == signal.IsTyping {
			sess.mu.Unlock()
			continue
		}
		sess.state.IsRecipientTyping = signal.IsTyping
		sess.emitUnlock()
	}
}

// Send 发送消息
// 发送前立即结束自己的输入状态，对方不应同时看到新消息和"正在输入"
func (sess *Session) Send(ctx context.Context, content string) {
	sess.mu.Lock()
	roomId := sess.state.ChatRoomId
	debouncer := sess.debouncer
	sess.mu.Unlock()
	if roomId == "" {
		return
	}

	if debouncer != nil {
		debouncer.Flush(ctx)
	}
	if _, err := sess.deps.Channel.SendMessage(ctx, roomId, sess.userId, content); err != nil {
		zap.L().Error("send message", zap.String("room_id", roomId), zap.Error(err))
		sess.mu.Lock()
		sess.state.Error = translateError(err)
		sess.emitUnlock()
	}
}

// MarkRead 批量已读，仅在页面可见时生效
func (sess *Session) MarkRead(ctx context.Context) {
	sess.mu.Lock()
	roomId := sess.state.ChatRoomId
	visible := sess.visible
	sess.mu.Unlock()
	if roomId == "" || !visible {
		return
	}
	if _, err := sess.deps.Channel.MarkMessagesAsRead(ctx, roomId, sess.userId); err != nil {
		zap.L().Warn("mark messages as read", zap.String("room_id", roomId), zap.Error(err))
	}
}

// SetTyping 记录一次键入
func (sess *Session) SetTyping(ctx context.Context) {
	sess.mu.Lock()
	debouncer := sess.debouncer
	sess.mu.Unlock()
	if debouncer != nil {
		debouncer.Touch(ctx)
	}
}

// SetVisible 页面可见性变化
// 可见时刷新在线状态并补一次已读；不可见时尽力置离线
func (sess *Session) SetVisible(ctx context.Context, visible bool) {
	sess.mu.Lock()
	sess.visible = visible
	sess.mu.Unlock()

	if visible {
		if err := sess.deps.Presence.SetOnline(sess.userId); err != nil {
			zap.L().Warn("set online on visible", zap.Error(err))
		}
		sess.MarkRead(ctx)
		return
	}
	if err := sess.deps.Presence.SetOffline(sess.userId); err != nil {
		zap.L().Warn("set offline on hidden", zap.Error(err))
	}
}

// ShowUserList 切换到用户列表模式，清空当前会话
func (sess *Session) ShowUserList() {
	sess.reset(State{UserListMode: true, Messages: []respond.ChatMessage{}})
	sess.mu.Lock()
	sess.emitUnlock()
}

// GoBack 返回初始界面，清空当前会话
func (sess *Session) GoBack() {
	sess.reset(State{Messages: []respond.ChatMessage{}})
	sess.mu.Lock()
	sess.emitUnlock()
}

// Close 关闭会话，释放全部订阅资源
func (sess *Session) Close() {
	sess.reset(State{Messages: []respond.ChatMessage{}})
}

// reset 拆除当前房间的全部资源并整体替换状态，返回新的 epoch
// 订阅的取消在锁外执行，避免与持有订阅锁的在途回调互等
func (sess *Session) reset(next State) int {
	sess.mu.Lock()
	sess.epoch++
	myEpoch := sess.epoch
	msgSub := sess.msgSub
	typingCancel := sess.typingCancel
	debouncer := sess.debouncer
	delayTimer := sess.delayTimer
	sess.msgSub = nil
	sess.typingCancel = nil
	sess.debouncer = nil
	sess.delayTimer = nil
	sess.state = next
	sess.mu.Unlock()

	if delayTimer != nil {
		delayTimer.Stop()
	}
	if msgSub != nil {
		msgSub.Unsubscribe()
	}
	if typingCancel != nil {
		typingCancel()
	}
	if debouncer != nil {
		debouncer.Stop()
	}
	return myEpoch
}

// failFinding 匹配流程失败，落用户可读的错误文案
func (sess *Session) failFinding(myEpoch int, err error) {
	zap.L().Error("match flow failed", zap.String("user_id", sess.userId), zap.Error(err))
	sess.mu.Lock()
	if sess.epoch != myEpoch {
		sess.mu.Unlock()
		return
	}
	sess.state.Finding = false
	sess.state.Error = translateError(err)
	sess.emitUnlock()
}

// translateError 按错误码翻译为用户可读文案，不做消息子串匹配
func translateError(err error) string {
	switch errorx.GetCode(err) {
	case errorx.CodePermissionDenied:
		return msgPermissionDenied
	case errorx.CodeNotFound, errorx.CodeUserNotExist:
		return msgUserNotFound
	default:
		return msgGenericFailure
	}
}
