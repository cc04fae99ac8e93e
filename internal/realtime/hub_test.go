package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func dialClient(t *testing.T, hub *Hub, userID int) *websocket.Conn {
	t.Helper()

	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		id, _ := strconv.Atoi(r.URL.Query().Get("user"))
		hub.Register(id, conn)
		close(registered)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + strconv.Itoa(userID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("registration timed out")
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return event
}

func TestPublishToUser(t *testing.T) {
	hub := startHub(t)
	conn := dialClient(t, hub, 2)

	hub.PublishToUser(2, Event{Type: EventMessageNotification})

	event := readEvent(t, conn)
	if event.Type != EventMessageNotification {
		t.Fatalf("unexpected event type %q", event.Type)
	}
}

func TestPublishToRoomReachesOnlyMembers(t *testing.T) {
	hub := startHub(t)
	member := dialClient(t, hub, 1)
	outsider := dialClient(t, hub, 2)

	hub.JoinRoom(5, 1)
	hub.PublishToRoom(5, Event{Type: EventMessageReceived})

	event := readEvent(t, member)
	if event.Type != EventMessageReceived {
		t.Fatalf("unexpected event type %q", event.Type)
	}

	outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := outsider.ReadMessage(); err == nil {
		t.Fatal("non-member must not receive room events")
	}
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	hub := startHub(t)
	conn := dialClient(t, hub, 1)

	hub.JoinRoom(5, 1)
	hub.PublishToRoom(5, Event{Type: EventMessageReceived})
	readEvent(t, conn)

	hub.LeaveRoom(5, 1)
	hub.PublishToRoom(5, Event{Type: EventMessageReceived})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("departed member must not receive room events")
	}
}

func TestPublishToUnknownUserIsDropped(t *testing.T) {
	hub := startHub(t)
	conn := dialClient(t, hub, 1)

	hub.PublishToUser(99, Event{Type: EventMessageNotification})
	hub.PublishToUser(1, Event{Type: EventConversationCreated})

	// the connected client still gets its own event afterwards
	event := readEvent(t, conn)
	if event.Type != EventConversationCreated {
		t.Fatalf("unexpected event type %q", event.Type)
	}
}

func TestHubMethodsReturnAfterShutdown(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	<-hub.done

	finished := make(chan struct{})
	go func() {
		hub.PublishToUser(1, Event{Type: EventMessageReceived})
		hub.PublishToRoom(5, Event{Type: EventMessageReceived})
		hub.JoinRoom(5, 1)
		hub.LeaveRoom(5, 1)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("hub call blocked after the run loop stopped")
	}
}
