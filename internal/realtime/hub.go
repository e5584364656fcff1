package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	EventDBUpdated = "db_updated"

	// Sockets join this room once they hold the current document.
	documentsRoom socket.Room = "documents"
)

// SnapshotFunc returns the document a newly connected client starts from.
type SnapshotFunc func(ctx context.Context) ([]byte, error)

// Hub is the Socket.IO server that fans document updates out to the clients
// connected to this process.
type Hub struct {
	io      *socket.Server
	log     *zap.Logger
	clients atomic.Int64

	// mu orders the initial document of a joining socket against broadcasts,
	// so a client never ends on an older document than the last one broadcast.
	mu sync.Mutex
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{io: socket.NewServer(nil, nil), log: log}
}

// Handler serves the Socket.IO transports. Every new connection first receives
// db_updated with the document returned by snapshot.
func (h *Hub) Handler(snapshot SnapshotFunc) http.Handler {
	h.io.On("connection", func(args ...any) {
		if len(args) == 0 {
			return
		}
		client, ok := args[0].(*socket.Socket)
		if !ok {
			return
		}
		h.join(client, snapshot)
	})
	return h.io.ServeHandler(nil)
}

func (h *Hub) join(client *socket.Socket, snapshot SnapshotFunc) {
	id := string(client.Id())

	h.mu.Lock()
	body, err := snapshot(context.Background())
	if err != nil {
		h.log.Warn("could not send initial document", zap.String("client_id", id), zap.Error(err))
	} else if payload, err := decodeDocument(body); err != nil {
		h.log.Warn("could not send initial document", zap.String("client_id", id), zap.Error(err))
	} else if err := client.Emit(EventDBUpdated, payload); err != nil {
		h.log.Warn("could not send initial document", zap.String("client_id", id), zap.Error(err))
	}
	client.Join(documentsRoom)
	h.mu.Unlock()

	total := h.clients.Add(1)
	h.log.Info("client connected to real-time sync", zap.String("client_id", id), zap.Int64("clients", total))

	client.On("disconnect", func(reason ...any) {
		total := h.clients.Add(-1)
		h.log.Info("client disconnected", zap.String("client_id", id), zap.Int64("clients", total), zap.Any("reason", reason))
	})
}

func (h *Hub) Count() int {
	return int(h.clients.Load())
}

// BroadcastDocument emits db_updated with the full document to every local client.
func (h *Hub) BroadcastDocument(ctx context.Context, doc []byte) error {
	payload, err := decodeDocument(doc)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.io.To(documentsRoom).Emit(EventDBUpdated, payload)
}

// Deliver is BroadcastDocument for documents arriving from another instance.
func (h *Hub) Deliver(doc []byte) {
	if err := h.BroadcastDocument(context.Background(), doc); err != nil {
		h.log.Warn("failed to deliver document update", zap.Error(err))
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.io.Close(nil)
}

// decodeDocument turns the stored text into the value emitted to clients.
// Numbers stay json.Number so large ids survive the round trip.
func decodeDocument(doc []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode document for broadcast: %w", err)
	}
	return v, nil
}
