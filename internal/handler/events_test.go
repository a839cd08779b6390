package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"medialib/internal/handler/ws"
	"medialib/internal/service/library"
)

func TestEventsHandler_Stream(t *testing.T) {
	bus := library.NewEventBus(discardLogger())
	h := NewEventsHandler(bus, seededStore(), ws.DefaultConfig(), discardLogger())

	// endStream lets the test end the request context the handler runs under
	endStream := make(chan context.CancelFunc, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithCancel(r.Context())
		endStream <- cancel
		h.Stream(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg struct {
		Kind     string `json:"kind"`
		FolderID string `json:"folder_id"`
	}
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if msg.Kind != "snapshot" {
		t.Fatalf("first message kind = %q, want snapshot", msg.Kind)
	}

	bus.Publish(library.Event{Kind: library.EventDeleteComplete, FolderID: "videos"})
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if msg.Kind != string(library.EventDeleteComplete) || msg.FolderID != "videos" {
		t.Errorf("event = %+v, want delete_complete for videos", msg)
	}

	(<-endStream)()

	err = wsjson.Read(ctx, conn, &msg)
	if got := websocket.CloseStatus(err); got != websocket.StatusNormalClosure {
		t.Errorf("close status = %v (err %v), want %v", got, err, websocket.StatusNormalClosure)
	}
}
