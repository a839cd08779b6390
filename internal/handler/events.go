package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"medialib/internal/handler/ws"
	"medialib/internal/httputil"
	"medialib/internal/service/library"
)

// EventsHandler streams folder events to websocket clients. Each client
// first receives a snapshot of the store, then every event in publish order.
type EventsHandler struct {
	bus    *library.EventBus
	store  *library.FolderStore
	config *ws.Config
	logger *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(bus *library.EventBus, store *library.FolderStore, config *ws.Config, logger *slog.Logger) *EventsHandler {
	if config == nil {
		config = ws.DefaultConfig()
	}
	return &EventsHandler{
		bus:    bus,
		store:  store,
		config: config,
		logger: logger,
	}
}

type snapshotMessage struct {
	Kind  string      `json:"kind"`
	State interface{} `json:"state"`
}

// Stream upgrades the connection and pushes events until the client leaves
// GET /api/folders/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	requestID := httputil.GetRequestID(r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.config.OriginPatterns,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err, "request_id", requestID)
		return
	}
	closeStatus, closeReason := websocket.StatusInternalError, "event stream ended"
	defer func() { conn.Close(closeStatus, closeReason) }()

	// Clients only listen; CloseRead handles control frames and cancels on close
	ctx := conn.CloseRead(r.Context())

	// Subscribe before the snapshot so no event between the two is lost
	events := make(chan library.Event, h.config.SendBuffer)
	overflow := make(chan struct{})
	var overflowOnce sync.Once
	unsubscribe := h.bus.Subscribe(func(e library.Event) {
		select {
		case events <- e:
		default:
			overflowOnce.Do(func() { close(overflow) })
		}
	})
	defer unsubscribe()

	keepAlive := ws.NewKeepAlive(h.config.KeepAliveInterval, h.config.WriteTimeout)
	pingStopped := keepAlive.Start(ctx, conn, h.logger)
	defer keepAlive.Stop()

	h.logger.Info("event stream opened", "request_id", requestID)

	if err := h.write(ctx, conn, snapshotMessage{Kind: "snapshot", State: h.store.State()}); err != nil {
		h.logger.Debug("snapshot write failed", "error", err, "request_id", requestID)
		return
	}

	for {
		select {
		case e := <-events:
			if err := h.write(ctx, conn, e); err != nil {
				h.logger.Debug("event write failed", "error", err, "request_id", requestID)
				return
			}
		case <-overflow:
			h.logger.Warn("event stream client too slow, closing", "request_id", requestID)
			closeStatus, closeReason = websocket.StatusTryAgainLater, "event buffer overflow"
			return
		case <-pingStopped:
			// Pinging also ends with ctx; only a failed ping is abnormal
			if ctx.Err() != nil {
				closeStatus, closeReason = websocket.StatusNormalClosure, ""
				return
			}
			closeStatus, closeReason = websocket.StatusGoingAway, "keep-alive failed"
			return
		case <-ctx.Done():
			h.logger.Info("event stream closed", "request_id", requestID)
			closeStatus, closeReason = websocket.StatusNormalClosure, ""
			return
		}
	}
}

func (h *EventsHandler) write(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	writeCtx, cancel := context.WithTimeout(ctx, h.config.WriteTimeout)
	defer cancel()

	err := wsjson.Write(writeCtx, conn, v)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
