package sync_test

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	synchub "pmstandards/internal/sync"
)

func startTCP(t *testing.T, hub *synchub.Hub) net.Addr {
	t.Helper()

	srv := synchub.NewServer("127.0.0.1:0", hub)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()
	t.Cleanup(func() {
		require.NoError(t, srv.Close())
		require.NoError(t, <-errCh)
	})

	require.Eventually(t, func() bool { return srv.ListenAddr() != nil }, 2*time.Second, 10*time.Millisecond)
	return srv.ListenAddr()
}

func TestServer_BroadcastsReloadEvents(t *testing.T) {
	hub := synchub.NewHub()
	addr := startTCP(t, hub)

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"type":"welcome"`)

	require.Eventually(t, func() bool { return hub.Stats().TCPClients == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.NotifyReload(synchub.ReloadEvent{Version: "v1", Standards: 3, At: time.Now().UTC()})

	line, err = r.ReadString('\n')
	require.NoError(t, err)
	var ev synchub.ReloadEvent
	require.NoError(t, json.Unmarshal([]byte(line), &ev))
	assert.Equal(t, synchub.ReloadEventType, ev.Type)
	assert.Equal(t, "v1", ev.Version)
	assert.Equal(t, 3, ev.Standards)

	last, ok := hub.Last()
	require.True(t, ok)
	assert.Equal(t, "v1", last.Version)
}

func TestWSHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := synchub.NewHub()
	hub.NotifyReload(synchub.ReloadEvent{Version: "v0"})

	router := gin.New()
	router.GET("/ws", synchub.WSHandler(hub))
	srv := httptest.NewServer(router)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"version":"v0"`)

	require.Eventually(t, func() bool { return hub.Stats().WSClients == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.NotifyReload(synchub.ReloadEvent{Version: "v1"})

	_, msg, err = ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"version":"v1"`)
}
