package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// startEchoPeer runs a WebSocket peer that answers each ping with a
// pong whose remote timestamps are the ping's t0 plus a fixed remote
// offset.
func startEchoPeer(t *testing.T, remoteOffset float64) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var msg wireMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type != "ping" {
				continue
			}

			reply := wireMessage{
				Type: "pong",
				ID:   msg.ID,
				T0:   msg.T0,
				T1:   msg.T0 + remoteOffset,
				T2:   msg.T0 + remoteOffset + 1,
			}
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSTransport_RoundTrip(t *testing.T) {
	srv := startEchoPeer(t, 500)
	defer srv.Close()

	tr, err := DialWebSocket(wsURL(srv), WSOptions{
		NowMillis: func() float64 { return 12345 },
	})
	require.NoError(t, err)
	defer tr.Close()

	pongs := make(chan Pong, 1)
	tr.OnPong(func(p Pong) { pongs <- p })

	require.NoError(t, tr.SendPing(Ping{T0: 1000, ID: "1"}))

	select {
	case p := <-pongs:
		assert.Equal(t, "1", p.ID)
		assert.Equal(t, 1000.0, p.T0)
		assert.Equal(t, 1500.0, p.T1)
		assert.Equal(t, 1501.0, p.T2)
		assert.Equal(t, 12345.0, p.T3)
	case <-time.After(2 * time.Second):
		t.Fatal("no pong received")
	}
}

func TestWSTransport_ArrivalOrder(t *testing.T) {
	srv := startEchoPeer(t, 0)
	defer srv.Close()

	tr, err := DialWebSocket(wsURL(srv), WSOptions{})
	require.NoError(t, err)
	defer tr.Close()

	pongs := make(chan Pong, 3)
	tr.OnPong(func(p Pong) { pongs <- p })

	for i := 1; i <= 3; i++ {
		require.NoError(t, tr.SendPing(Ping{T0: float64(i), ID: string(rune('0' + i))}))
	}

	var ids []string
	for i := 0; i < 3; i++ {
		select {
		case p := <-pongs:
			ids = append(ids, p.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("missing pong")
		}
	}

	// The echo peer replies in order on a single connection; delivery
	// order must match.
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestWSTransport_RateLimited(t *testing.T) {
	srv := startEchoPeer(t, 0)
	defer srv.Close()

	tr, err := DialWebSocket(wsURL(srv), WSOptions{
		PingsPerSecond: 1,
		Burst:          1,
	})
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, tr.SendPing(Ping{T0: 1, ID: "a"}))

	err = tr.SendPing(Ping{T0: 2, ID: "b"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestWSTransport_CloseIdempotent(t *testing.T) {
	srv := startEchoPeer(t, 0)
	defer srv.Close()

	tr, err := DialWebSocket(wsURL(srv), WSOptions{})
	require.NoError(t, err)

	assert.NoError(t, tr.Close())
	assert.NoError(t, tr.Close())
}

func TestDialWebSocket_BadURL(t *testing.T) {
	_, err := DialWebSocket("ws://127.0.0.1:1/nowhere", WSOptions{})
	assert.Error(t, err)
}
