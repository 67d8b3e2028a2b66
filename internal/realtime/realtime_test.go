package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	id := uuid.MustParse("7f9c24e8-3b12-4fef-91e0-8a2b8f1c3d4e")
	assert.Equal(t, "messages:user:7f9c24e8-3b12-4fef-91e0-8a2b8f1c3d4e", Channel(id))
}

func TestHub_DeliversOnlyToReceiver(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	aliceCh, cancelAlice, err := hub.Subscribe(ctx, alice)
	require.NoError(t, err)
	defer cancelAlice()
	bobCh, cancelBob, err := hub.Subscribe(ctx, bob)
	require.NoError(t, err)
	defer cancelBob()

	msg := &models.Message{ID: uuid.New(), SenderID: alice, ReceiverID: bob, Content: "hi"}
	require.NoError(t, hub.Publish(ctx, msg))

	select {
	case payload := <-bobCh:
		var ev Event
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.Equal(t, "chat_message", ev.Type)
		assert.Equal(t, msg.ID, ev.Message.ID)
	case <-time.After(time.Second):
		t.Fatal("receiver got nothing")
	}
	assert.Empty(t, aliceCh)
}

func TestHub_CancelClosesAndUnregisters(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()
	user := uuid.New()

	ch, cancel, err := hub.Subscribe(ctx, user)
	require.NoError(t, err)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NoError(t, hub.Publish(ctx, &models.Message{ID: uuid.New(), ReceiverID: user}))
}

func TestStreamer_Serve(t *testing.T) {
	hub := NewHub()
	user := uuid.New()
	streamer := NewStreamer(hub, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamer.Serve(w, r, user)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := &models.Message{ID: uuid.New(), SenderID: uuid.New(), ReceiverID: user, Content: "ping"}
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs[user]) == 1
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Publish(context.Background(), msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, msg.ID, ev.Message.ID)
	assert.Equal(t, "ping", ev.Message.Content)
}

func TestStreamer_RejectsForeignOrigin(t *testing.T) {
	streamer := NewStreamer(NewHub(), []string{"https://app.example.com"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamer.Serve(w, r, uuid.New())
	}))
	defer srv.Close()

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
