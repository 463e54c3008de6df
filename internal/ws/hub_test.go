package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kanban/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesEveryOwnerConnection(t *testing.T) {
	hub := NewHub()
	a1 := NewClient("alice", nil, hub)
	a2 := NewClient("alice", nil, hub)
	b := NewClient("bob", nil, hub)
	c := NewClient("carol", nil, hub)
	for _, cl := range []*Client{a1, a2, b, c} {
		require.True(t, hub.Register(cl))
	}
	assert.Equal(t, 2, hub.Connections("alice"))

	hub.Publish([]string{"alice", "bob", "alice"}, domain.TaskEvent{Type: domain.EventTaskShared, TaskID: "t1"})

	for _, cl := range []*Client{a1, a2, b} {
		require.Len(t, cl.Send, 1)
		var ev domain.TaskEvent
		require.NoError(t, json.Unmarshal(<-cl.Send, &ev))
		assert.Equal(t, domain.TaskEvent{Type: domain.EventTaskShared, TaskID: "t1"}, ev)
	}
	assert.Empty(t, c.Send)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	cl := NewClient("alice", nil, hub)
	require.True(t, hub.Register(cl))

	for i := 0; i < sendBuffer+1; i++ {
		hub.Publish([]string{"alice"}, domain.TaskEvent{Type: domain.EventTaskUpdated, TaskID: "t"})
	}
	assert.Equal(t, 0, hub.Connections("alice"))

	hub.Unregister(cl)
}

func TestClosedHubRefusesClients(t *testing.T) {
	hub := NewHub()
	cl := NewClient("alice", nil, hub)
	require.True(t, hub.Register(cl))

	hub.Close()
	_, open := <-cl.Send
	assert.False(t, open)
	assert.False(t, hub.Register(NewClient("bob", nil, hub)))
}

func TestClientReceivesEventsOverWebsocket(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient("alice", conn, hub).Run()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish([]string{"alice"}, domain.TaskEvent{Type: domain.EventTaskCreated, TaskID: "t9"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev domain.TaskEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "t9", ev.TaskID)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections("alice") == 0 }, 2*time.Second, 10*time.Millisecond)
}
