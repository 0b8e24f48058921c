// 本文件实现输入状态的边沿触发防抖
// 首次键入立即写 true，后续键入只重置计时器；静默超过防抖间隔后写一次 false
package typing

import (
	"context"
	"sync"
	"time"
)

// Debouncer 单个 (房间, 用户) 的输入防抖器
type Debouncer struct {
	service    *Service
	chatRoomId string
	userId     string
	interval   time.Duration

	mu     sync.Mutex
	active bool // 当前是否处于"正在输入"状态
	timer  *time.Timer
}

// NewDebouncer 创建防抖器
func NewDebouncer(service *Service, chatRoomId, userId string, interval time.Duration) *Debouncer {
	return &Debouncer{
		service:    service,
		chatRoomId: chatRoomId,
		userId:     userId,
		interval:   interval,
	}
}

// Touch 记录一次键入
// 未处于输入状态时写 true（边沿），否则只重置静默计时器
func (d *Debouncer) Touch(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		d.active = true
		d.service.UpdateTypingStatus(ctx, d.chatRoomId, d.userId, true)
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.expire)
}

// expire 静默计时器到期，回写 false
func (d *Debouncer) expire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		return
	}
	d.active = false
	d.service.UpdateTypingStatus(context.Background(), d.chatRoomId, d.userId, false)
}

// Flush 立即结束输入状态
// 消息发出时调用：接收方不应在看到新消息的同时还看到"正在输入"
func (d *Debouncer) Flush(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.active {
		d.active = false
		d.service.UpdateTypingStatus(ctx, d.chatRoomId, d.userId, false)
	}
}

// Stop 停止防抖器，不再回写任何状态
// 会话切换或连接断开时调用
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.active = false
}
