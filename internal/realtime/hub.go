package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type client struct {
	userID int
	conn   *websocket.Conn
}

type roomOp struct {
	conversationID int
	userID         int
}

type userEvent struct {
	userID int
	event  Event
}

type roomEvent struct {
	conversationID int
	event          Event
}

// Hub owns every live websocket connection. One connection per user; a new
// connection for the same user replaces the old one. All state is touched
// only from the Run loop. Once Run returns, every hub method is a no-op, so
// requests still in flight during shutdown cannot block on a dead loop.
type Hub struct {
	clients map[int]*client
	rooms   map[int]map[int]struct{}

	register   chan *client
	unregister chan *client
	join       chan roomOp
	leave      chan roomOp
	toUser     chan userEvent
	toRoom     chan roomEvent
	done       chan struct{}

	errorLog *log.Logger
}

func NewHub(errorLog *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[int]*client),
		rooms:      make(map[int]map[int]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		join:       make(chan roomOp),
		leave:      make(chan roomOp),
		toUser:     make(chan userEvent),
		toRoom:     make(chan roomEvent),
		done:       make(chan struct{}),
		errorLog:   errorLog,
	}
}

func (h *Hub) Register(userID int, conn *websocket.Conn) {
	select {
	case h.register <- &client{userID: userID, conn: conn}:
	case <-h.done:
	}
}

func (h *Hub) Unregister(userID int, conn *websocket.Conn) {
	select {
	case h.unregister <- &client{userID: userID, conn: conn}:
	case <-h.done:
	}
}

func (h *Hub) JoinRoom(conversationID, userID int) {
	select {
	case h.join <- roomOp{conversationID: conversationID, userID: userID}:
	case <-h.done:
	}
}

func (h *Hub) LeaveRoom(conversationID, userID int) {
	select {
	case h.leave <- roomOp{conversationID: conversationID, userID: userID}:
	case <-h.done:
	}
}

func (h *Hub) PublishToUser(userID int, event Event) {
	select {
	case h.toUser <- userEvent{userID: userID, event: event}:
	case <-h.done:
	}
}

func (h *Hub) PublishToRoom(conversationID int, event Event) {
	select {
	case h.toRoom <- roomEvent{conversationID: conversationID, event: event}:
	case <-h.done:
	}
}

// Run processes hub traffic until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, c := range h.clients {
				writeClose(c.conn, websocket.CloseGoingAway, "server shutting down")
				c.conn.Close()
			}
			h.clients = make(map[int]*client)
			h.rooms = make(map[int]map[int]struct{})
			return

		case c := <-h.register:
			if old, ok := h.clients[c.userID]; ok && old.conn != c.conn {
				writeClose(old.conn, websocket.CloseNormalClosure, "replaced by a new connection")
				old.conn.Close()
			}
			h.clients[c.userID] = c

		case c := <-h.unregister:
			if cur, ok := h.clients[c.userID]; ok && cur.conn == c.conn {
				delete(h.clients, c.userID)
				for conversationID, members := range h.rooms {
					delete(members, c.userID)
					if len(members) == 0 {
						delete(h.rooms, conversationID)
					}
				}
				c.conn.Close()
			}

		case op := <-h.join:
			members, ok := h.rooms[op.conversationID]
			if !ok {
				members = make(map[int]struct{})
				h.rooms[op.conversationID] = members
			}
			members[op.userID] = struct{}{}

		case op := <-h.leave:
			if members, ok := h.rooms[op.conversationID]; ok {
				delete(members, op.userID)
				if len(members) == 0 {
					delete(h.rooms, op.conversationID)
				}
			}

		case ev := <-h.toUser:
			if c, ok := h.clients[ev.userID]; ok {
				h.send(c, ev.event)
			}

		case ev := <-h.toRoom:
			for userID := range h.rooms[ev.conversationID] {
				if c, ok := h.clients[userID]; ok {
					h.send(c, ev.event)
				}
			}
		}
	}
}

func (h *Hub) send(c *client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.errorLog.Printf("marshal %s event: %v", event.Type, err)
		return
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.errorLog.Printf("write to user %d: %v", c.userID, err)
		c.conn.Close()
		delete(h.clients, c.userID)
		for conversationID, members := range h.rooms {
			delete(members, c.userID)
			if len(members) == 0 {
				delete(h.rooms, conversationID)
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
