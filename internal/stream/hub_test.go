package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Tick    int     `json:"tick"`
	Burning float64 `json:"burning"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversPublishedFrames(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(frame{Tick: 3, Burning: 12.5})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, frame{Tick: 3, Burning: 12.5}, got)
}

func TestHubSendsLatestFrameOnConnect(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.Publish(frame{Tick: 1})
	hub.Publish(frame{Tick: 2})

	conn := dial(t, srv)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 2, got.Tick)
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	other := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Close()
	assert.Zero(t, hub.Clients())

	require.NoError(t, other.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := other.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestHubFramesArriveInPublishOrder(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	hub.Publish(frame{Tick: 0})
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for tick := 1; ; tick++ {
			select {
			case <-stop:
				return
			default:
			}
			hub.Publish(frame{Tick: tick})
			time.Sleep(100 * time.Microsecond)
		}
	}()
	defer func() {
		close(stop)
		<-done
	}()

	for c := 0; c < 20; c++ {
		conn := dial(t, srv)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		prev := -1
		for i := 0; i < 5; i++ {
			var got frame
			require.NoError(t, conn.ReadJSON(&got))
			require.Greater(t, got.Tick, prev, "client %d frame %d", c, i)
			prev = got.Tick
		}
		conn.Close()
	}
}
