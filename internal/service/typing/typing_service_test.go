package typing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"match_chat_server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSignalStore 记录每次写入的信号
type fakeSignalStore struct {
	mu      sync.Mutex
	writes  []model.TypingSignal
	setErr  error
	signals chan model.TypingSignal
}

var _ SignalStore = (*fakeSignalStore)(nil)

func newFakeSignalStore() *fakeSignalStore {
	return &fakeSignalStore{signals: make(chan model.TypingSignal, 16)}
}

func (f *fakeSignalStore) Set(_ context.Context, signal model.TypingSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.writes = append(f.writes, signal)
	return nil
}

func (f *fakeSignalStore) Get(_ context.Context, chatRoomId, userId string) (model.TypingSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.writes) - 1; i >= 0; i-- {
		w := f.writes[i]
		if w.ChatRoomId == chatRoomId && w.UserId == userId {
			return w, nil
		}
	}
	return model.TypingSignal{ChatRoomId: chatRoomId, UserId: userId}, nil
}

func (f *fakeSignalStore) Subscribe(_ context.Context, _, _ string) (<-chan model.TypingSignal, func(), error) {
	return f.signals, func() {}, nil
}

func (f *fakeSignalStore) recorded() []model.TypingSignal {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TypingSignal, len(f.writes))
	copy(out, f.writes)
	return out
}

func TestUpdateTypingStatusLastWriteWins(t *testing.T) {
	store := newFakeSignalStore()
	svc := NewService(store)
	ctx := context.Background()

	svc.UpdateTypingStatus(ctx, "room1", "U1", true)
	svc.UpdateTypingStatus(ctx, "room1", "U1", false)

	assert.False(t, svc.GetTypingStatus(ctx, "room1", "U1"))
}

func TestUpdateTypingStatusSwallowsWriteFailure(t *testing.T) {
	store := newFakeSignalStore()
	store.setErr = errors.New("redis down")
	svc := NewService(store)

	// 写失败不 panic、不上抛
	svc.UpdateTypingStatus(context.Background(), "room1", "U1", true)
	assert.Empty(t, store.recorded())
}

func TestGetTypingStatusDefaultsToFalse(t *testing.T) {
	svc := NewService(newFakeSignalStore())
	assert.False(t, svc.GetTypingStatus(context.Background(), "room1", "unknown"))
}

func TestDebouncerEdgeTriggered(t *testing.T) {
	store := newFakeSignalStore()
	svc := NewService(store)
	d := NewDebouncer(svc, "room1", "U1", 50*time.Millisecond)
	ctx := context.Background()

	// 连续键入只在首次产生 true
	d.Touch(ctx)
	d.Touch(ctx)
	d.Touch(ctx)
	writes := store.recorded()
	require.Len(t, writes, 1)
	assert.True(t, writes[0].IsTyping)

	// 静默超过防抖间隔后恰好写一次 false
	require.Eventually(t, func() bool {
		return len(store.recorded()) == 2
	}, time.Second, 5*time.Millisecond)
	writes = store.recorded()
	assert.False(t, writes[1].IsTyping)

	// 之后不再有任何写入
	time.Sleep(120 * time.Millisecond)
	assert.Len(t, store.recorded(), 2)
}

func TestDebouncerRetriggersAfterSilence(t *testing.T) {
	store := newFakeSignalStore()
	svc := NewService(store)
	d := NewDebouncer(svc, "room1", "U1", 30*time.Millisecond)
	ctx := context.Background()

	d.Touch(ctx)
	require.Eventually(t, func() bool { return len(store.recorded()) == 2 }, time.Second, 5*time.Millisecond)

	// 再次键入形成新的边沿
	d.Touch(ctx)
	writes := store.recorded()
	require.Len(t, writes, 3)
	assert.True(t, writes[2].IsTyping)
	d.Stop()
}

func TestDebouncerFlushWritesFalseImmediately(t *testing.T) {
	store := newFakeSignalStore()
	svc := NewService(store)
	d := NewDebouncer(svc, "room1", "U1", time.Hour) // 不依赖计时器
	ctx := context.Background()

	d.Touch(ctx)
	d.Flush(ctx)

	writes := store.recorded()
	require.Len(t, writes, 2)
	assert.True(t, writes[0].IsTyping)
	assert.False(t, writes[1].IsTyping)

	// 计时器已取消，不会出现第二次 false
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, store.recorded(), 2)
}

func TestDebouncerFlushWithoutTypingIsNoop(t *testing.T) {
	store := newFakeSignalStore()
	svc := NewService(store)
	d := NewDebouncer(svc, "room1", "U1", time.Hour)

	d.Flush(context.Background())
	assert.Empty(t, store.recorded())
}

func TestDebouncerStopSuppressesTrailingWrite(t *testing.T) {
	store := newFakeSignalStore()
	svc := NewService(store)
	d := NewDebouncer(svc, "room1", "U1", 30*time.Millisecond)

	d.Touch(context.Background())
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	// 只有起始的 true，Stop 之后没有 false 回写
	writes := store.recorded()
	require.Len(t, writes, 1)
	assert.True(t, writes[0].IsTyping)
}
