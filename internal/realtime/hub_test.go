package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"winelist/internal/realtime/realtimetest"
)

func newTestServer(t *testing.T, hub *Hub, snapshot SnapshotFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", hub.Handler(snapshot))
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv
}

func staticSnapshot(doc string) SnapshotFunc {
	return func(ctx context.Context) ([]byte, error) { return []byte(doc), nil }
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastDocument(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, staticSnapshot(`{"wines":[],"wineries":[]}`))

	a := realtimetest.Dial(t, srv.URL)
	b := realtimetest.Dial(t, srv.URL)
	waitForClients(t, hub, 2)

	for _, c := range []*realtimetest.Client{a, b} {
		event, data := c.Next(t)
		assert.Equal(t, EventDBUpdated, event)
		assert.JSONEq(t, `{"wines":[],"wineries":[]}`, string(data))
	}

	doc := []byte(`{"wines":[{"id":"w1"}],"wineries":[]}`)
	require.NoError(t, hub.BroadcastDocument(context.Background(), doc))

	for _, c := range []*realtimetest.Client{a, b} {
		event, data := c.Next(t)
		assert.Equal(t, EventDBUpdated, event)
		assert.JSONEq(t, string(doc), string(data))
	}

	require.NoError(t, a.Close())
	waitForClients(t, hub, 1)
	require.NoError(t, b.Close())
	waitForClients(t, hub, 0)
}

func TestHub_SnapshotFailureStillJoins(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("disk gone")
	})

	c := realtimetest.Dial(t, srv.URL)
	waitForClients(t, hub, 1)

	require.NoError(t, hub.BroadcastDocument(context.Background(), []byte(`{"v":1}`)))
	event, data := c.Next(t)
	assert.Equal(t, EventDBUpdated, event)
	assert.JSONEq(t, `{"v":1}`, string(data))
}

func TestHub_InitialDocumentPrecedesConcurrentBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	broadcastDone := make(chan error, 1)
	srv := newTestServer(t, hub, func(ctx context.Context) ([]byte, error) {
		// A save lands while the joining client is still reading the old document.
		go func() {
			broadcastDone <- hub.BroadcastDocument(context.Background(), []byte(`{"v":2}`))
		}()
		time.Sleep(100 * time.Millisecond)
		return []byte(`{"v":1}`), nil
	})

	c := realtimetest.Dial(t, srv.URL)
	_, first := c.Next(t)
	assert.JSONEq(t, `{"v":1}`, string(first))
	_, second := c.Next(t)
	assert.JSONEq(t, `{"v":2}`, string(second), "the newer document arrives last")
	require.NoError(t, <-broadcastDone)
}

func TestHub_LargeNumbersSurvive(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, staticSnapshot(`{"menu":[{"id":12345678901234567890}]}`))

	c := realtimetest.Dial(t, srv.URL)
	_, data := c.Next(t)
	assert.Contains(t, string(data), "12345678901234567890")
}

func TestHub_RejectsInvalidDocument(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	err := hub.BroadcastDocument(context.Background(), []byte(`{"wines":[`))
	assert.Error(t, err)
}

type fakeTransport struct {
	published [][]byte
	fn        func([]byte)
	failWith  error
}

func (f *fakeTransport) PublishUpdate(ctx context.Context, payload []byte) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.published = append(f.published, payload)
	f.fn(payload)
	return nil
}

func (f *fakeTransport) SubscribeUpdates(ctx context.Context, fn func([]byte)) error {
	f.fn = fn
	return nil
}

func TestRedisRelay(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, staticSnapshot(`{"v":0}`))
	c := realtimetest.Dial(t, srv.URL)
	waitForClients(t, hub, 1)
	_, initial := c.Next(t)
	assert.JSONEq(t, `{"v":0}`, string(initial))

	transport := &fakeTransport{}
	relay := NewRedisRelay(hub, transport, zap.NewNop())
	require.NoError(t, relay.Start(context.Background()))

	require.NoError(t, relay.BroadcastDocument(context.Background(), []byte(`{"v":1}`)))
	require.Len(t, transport.published, 1)
	assert.Equal(t, `{"v":1}`, string(transport.published[0]))
	_, data := c.Next(t)
	assert.JSONEq(t, `{"v":1}`, string(data))

	transport.failWith = errors.New("redis down")
	err := relay.BroadcastDocument(context.Background(), []byte(`{"v":2}`))
	assert.ErrorContains(t, err, "redis down")
	_, data = c.Next(t)
	assert.JSONEq(t, `{"v":2}`, string(data), "local clients still receive the update")
}
