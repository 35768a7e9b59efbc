package bvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamConnectAndClose(t *testing.T) {
	srv := newWSServer(t)
	s := NewStream(wsURL(srv), 10*time.Millisecond, time.Second)

	require.NoError(t, s.Connect(context.Background()))
	assert.True(t, s.IsConnected())

	require.NoError(t, s.Close())
	assert.False(t, s.IsConnected())
	assert.NoError(t, s.Close())
}

func TestStreamStateConcurrentAccess(t *testing.T) {
	srv := newWSServer(t)
	s := NewStream(wsURL(srv), time.Millisecond, time.Second)
	require.NoError(t, s.Connect(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Read(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = s.Reconnect(ctx)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.IsConnected()
		}
	}()
	wg.Wait()

	assert.NoError(t, s.Close())
}

func TestDecodeTicks(t *testing.T) {
	rows := decodeTicks([]byte(`[{"COD_SIMB":"BNC","PRECIO":120},{"COD_SIMB":"","PRECIO":1}]`))
	require.Len(t, rows, 1)
	assert.Equal(t, "BNC", rows[0].Symbol)

	rows = decodeTicks([]byte(`{"COD_SIMB":"TDV","PRECIO":80}`))
	require.Len(t, rows, 1)
	assert.Equal(t, "TDV", rows[0].Symbol)

	assert.Empty(t, decodeTicks([]byte(`not json`)))
}
