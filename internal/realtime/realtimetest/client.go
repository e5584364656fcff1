// Package realtimetest is a minimal Socket.IO v4 client for tests, speaking the
// websocket transport directly.
package realtimetest

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const readTimeout = 2 * time.Second

type Client struct {
	conn *websocket.Conn
}

// Dial opens a socket on the default namespace of the server at baseURL (http://host:port).
func Dial(t testing.TB, baseURL string) *Client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/socket.io/?EIO=4&transport=websocket"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &Client{conn: conn}
	open := c.read(t)
	require.True(t, strings.HasPrefix(open, `0{`), "engine.io open packet, got %q", open)
	require.Contains(t, open, `"sid"`)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("40")))
	ack := c.read(t)
	require.True(t, strings.HasPrefix(ack, "40"), "socket.io connect packet, got %q", ack)
	return c
}

// Next returns the name and first argument of the next event.
func (c *Client) Next(t testing.TB) (string, json.RawMessage) {
	t.Helper()
	for {
		msg := c.read(t)
		if !strings.HasPrefix(msg, "42") {
			continue
		}
		var frame []json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(msg[2:]), &frame))
		require.NotEmpty(t, frame)

		var event string
		require.NoError(t, json.Unmarshal(frame[0], &event))
		if len(frame) < 2 {
			return event, nil
		}
		return event, frame[1]
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// read returns the next engine.io packet, answering pings on the way.
func (c *Client) read(t testing.TB) string {
	t.Helper()
	for {
		require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
		_, msg, err := c.conn.ReadMessage()
		require.NoError(t, err)
		if string(msg) == "2" {
			require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("3")))
			continue
		}
		return string(msg)
	}
}
