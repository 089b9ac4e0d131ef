package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"learnmyway/internal/broker"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler bridges WebSocket connections to the broker.
type Handler struct {
	broker *broker.Broker
}

// NewHandler creates a new WebSocket handler
func NewHandler(b *broker.Broker) *Handler {
	return &Handler{broker: b}
}

// ServeWS handles GET /ws. The connection is accepted unauthenticated
// and gets one bounded window to present its credential as the first
// frame; anything else terminates it. The write pump only starts once
// authentication succeeds, so the handshake owns the socket until then.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := h.broker.Accept()

	if !h.authenticate(r.Context(), wsConn, conn) {
		return
	}

	go h.writePump(wsConn, conn)
	h.readPump(wsConn, conn)
}

// authenticate waits for the handshake frame and verifies it. On any
// failure the connection is closed with an auth failure close code.
func (h *Handler) authenticate(ctx context.Context, wsConn *websocket.Conn, conn *broker.Conn) bool {
	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(h.broker.AuthTimeout()))

	var env broker.Envelope
	if err := wsConn.ReadJSON(&env); err != nil {
		h.failAuth(wsConn, conn, "authentication timeout")
		return false
	}

	var p broker.AuthPayload
	if env.Type != broker.EventAuth || json.Unmarshal(env.Payload, &p) != nil || p.Token == "" {
		h.failAuth(wsConn, conn, "credential required")
		return false
	}

	identity, err := h.broker.Authenticate(ctx, conn, p.Token)
	if err != nil {
		h.failAuth(wsConn, conn, "authentication error")
		return false
	}

	ok := broker.Envelope{Type: broker.EventAuthOK}
	if data, err := json.Marshal(identity); err == nil {
		ok.Payload = data
	}
	frame, _ := json.Marshal(ok)

	wsConn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := wsConn.WriteMessage(websocket.TextMessage, frame); err != nil {
		h.broker.Close(conn)
		wsConn.Close()
		return false
	}

	return true
}

func (h *Handler) failAuth(wsConn *websocket.Conn, conn *broker.Conn, reason string) {
	wsConn.SetWriteDeadline(time.Now().Add(writeWait))
	wsConn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
	h.broker.Close(conn)
	wsConn.Close()
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *broker.Conn) {
	defer func() {
		h.broker.Close(conn)
		wsConn.Close()
	}()

	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env broker.Envelope
		if err := wsConn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		h.broker.Dispatch(conn, env)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *broker.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case frame, ok := <-conn.Outbox():
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
