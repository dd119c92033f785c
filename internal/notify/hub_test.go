package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alebedev/helpboard/internal/common/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "ERROR")
	require.NoError(t, err)
	return log
}

func startHub(t *testing.T, cfg HubConfig) *Hub {
	t.Helper()
	hub := NewHub(testLogger(t), cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func receive(t *testing.T, sub *Subscriber) []byte {
	t.Helper()
	select {
	case data, ok := <-sub.C:
		require.True(t, ok, "subscriber channel closed unexpectedly")
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := startHub(t, HubConfig{})

	first := hub.Subscribe()
	second := hub.Subscribe()
	require.NotNil(t, first)
	require.NotNil(t, second)

	hub.Publish(Event{Type: TypeDeleteRequest, Payload: map[string]int{"request_id": 3}})

	for _, sub := range []*Subscriber{first, second} {
		var got Event
		require.NoError(t, json.Unmarshal(receive(t, sub), &got))
		assert.Equal(t, TypeDeleteRequest, got.Type)
	}
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	hub := startHub(t, HubConfig{SendBufSize: 1})

	slow := hub.Subscribe()
	fast := hub.Subscribe()
	require.NotNil(t, slow)
	require.NotNil(t, fast)

	// Fill the slow subscriber's buffer and keep publishing. The fast
	// subscriber must still see every event that fits its own buffer.
	for i := 0; i < 3; i++ {
		hub.Publish(Event{Type: TypeNewRequest, Payload: i})
		receive(t, fast)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := startHub(t, HubConfig{})

	sub := hub.Subscribe()
	require.NotNil(t, sub)

	hub.Unsubscribe(sub)

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestUnsubscribedClientReceivesNothing(t *testing.T) {
	hub := startHub(t, HubConfig{})

	gone := hub.Subscribe()
	stay := hub.Subscribe()
	require.NotNil(t, gone)
	require.NotNil(t, stay)

	hub.Unsubscribe(gone)
	// Wait until the hub processed the unregister; the close is observable.
	select {
	case <-gone.C:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for unregister")
	}

	hub.Publish(Event{Type: TypeNewRequest, Payload: "hello"})
	receive(t, stay)
	assert.Empty(t, gone.C)
}

func TestShutdownClosesSubscribersAndStopsRegistration(t *testing.T) {
	hub := NewHub(testLogger(t), HubConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()

	sub := hub.Subscribe()
	require.NotNil(t, sub)

	cancel()
	<-done

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	assert.Nil(t, hub.Subscribe())
}

func TestPublishNeverBlocksWhenQueueIsFull(t *testing.T) {
	// No Run loop draining the queue, so it fills immediately.
	hub := NewHub(testLogger(t), HubConfig{BroadcastQueueSize: 1})

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 10; i++ {
			hub.Publish(Event{Type: TypeNewRequest, Payload: i})
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full queue")
	}
}
