package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingPeriod   = (wsPongWait * 9) / 10
	wsMaxFrameSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClientFrame struct {
	Action         string `json:"action"`
	ConversationID int    `json:"conversation_id"`
	Text           string `json:"text"`
}

// serveWS upgrades the request and keeps the connection registered with the
// hub until the client goes away. Clients join a conversation room to get
// live message and read-receipt events while the conversation is open.
func (app *application) serveWS(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(int)
	if userID <= 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Printf("websocket upgrade: %v", err)
		return
	}

	app.hub.Register(userID, conn)

	joined := make(map[int]struct{})

	conn.SetReadLimit(wsMaxFrameSize)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	defer func() {
		close(done)
		for conversationID := range joined {
			app.hub.LeaveRoom(conversationID, userID)
		}
		app.hub.Unregister(userID, conn)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				app.errorLog.Printf("websocket read from user %d: %v", userID, err)
			}
			return
		}

		var frame wsClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}

		switch frame.Action {
		case "join_room":
			ok, err := app.chatService.IsParticipant(r.Context(), userID, frame.ConversationID)
			if err != nil || !ok {
				continue
			}
			app.hub.JoinRoom(frame.ConversationID, userID)
			joined[frame.ConversationID] = struct{}{}
		case "leave_room":
			app.hub.LeaveRoom(frame.ConversationID, userID)
			delete(joined, frame.ConversationID)
		case "send_message":
			if _, err := app.chatService.SendMessage(r.Context(), userID, frame.ConversationID, frame.Text); err != nil {
				app.errorLog.Printf("websocket send from user %d to conversation %d: %v", userID, frame.ConversationID, err)
			}
		}
	}
}
