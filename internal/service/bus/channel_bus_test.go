package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelBrokerDeliversToRoomSubscribers(t *testing.T) {
	broker := NewChannelBroker()
	defer broker.Close()

	sub, err := broker.Subscribe("room1")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	event := Event{RoomID: "room1", Kind: KindMessageCreated, SenderID: "U1"}
	require.NoError(t, broker.Publish(context.Background(), event))

	select {
	case got := <-sub.Events():
		assert.Equal(t, event, got)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestChannelBrokerIsolatesRooms(t *testing.T) {
	broker := NewChannelBroker()
	defer broker.Close()

	sub, err := broker.Subscribe("room1")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, broker.Publish(context.Background(), Event{RoomID: "room2", Kind: KindMessageCreated}))

	select {
	case <-sub.Events():
		t.Fatal("received event for another room")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChannelBrokerFanOut(t *testing.T) {
	broker := NewChannelBroker()
	defer broker.Close()

	first, err := broker.Subscribe("room1")
	require.NoError(t, err)
	second, err := broker.Subscribe("room1")
	require.NoError(t, err)
	defer first.Unsubscribe()
	defer second.Unsubscribe()

	require.NoError(t, broker.Publish(context.Background(), Event{RoomID: "room1", Kind: KindMessageUpdated}))

	for _, sub := range []Subscription{first, second} {
		select {
		case got := <-sub.Events():
			assert.Equal(t, KindMessageUpdated, got.Kind)
		case <-time.After(time.Second):
			t.Fatal("subscriber missed event")
		}
	}
}

func TestUnsubscribeClosesChannelIdempotently(t *testing.T) {
	broker := NewChannelBroker()
	defer broker.Close()

	sub, err := broker.Subscribe("room1")
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe() // 重复取消不 panic

	_, open := <-sub.Events()
	assert.False(t, open)

	// 取消后发布不投递、不阻塞
	require.NoError(t, broker.Publish(context.Background(), Event{RoomID: "room1", Kind: KindMessageCreated}))
}

func TestCloseCancelsAllSubscriptions(t *testing.T) {
	broker := NewChannelBroker()

	sub, err := broker.Subscribe("room1")
	require.NoError(t, err)

	require.NoError(t, broker.Close())

	_, open := <-sub.Events()
	assert.False(t, open)

	// Close 之后再取消订阅是安全的
	sub.Unsubscribe()

	// 关闭后的发布与订阅不 panic
	require.NoError(t, broker.Publish(context.Background(), Event{RoomID: "room1"}))
}
