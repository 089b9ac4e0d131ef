package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnmyway/internal/broker"
	"learnmyway/internal/model"
	ws "learnmyway/internal/transport/ws"
)

type stubVerifier map[string]model.Identity

func (v stubVerifier) Verify(_ context.Context, credential string) (model.Identity, error) {
	identity, ok := v[credential]
	if !ok {
		return model.Identity{}, errors.New("bad credential")
	}
	return identity, nil
}

func newTestServer(t *testing.T, authTimeout time.Duration) string {
	t.Helper()
	verifier := stubVerifier{
		"teacher-tok": {UserID: "t1", Role: model.RoleTeacher},
		"student-tok": {UserID: "s1", Role: model.RoleStudent, ClassAssignment: "7A"},
	}
	b := broker.New(verifier, authTimeout)
	srv := httptest.NewServer(http.HandlerFunc(ws.NewHandler(b).ServeWS))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(broker.Envelope{Type: typ, Payload: data}))
}

func read(t *testing.T, conn *websocket.Conn) broker.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env broker.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func authenticate(t *testing.T, conn *websocket.Conn, token string) model.Identity {
	t.Helper()
	send(t, conn, broker.EventAuth, broker.AuthPayload{Token: token})

	env := read(t, conn)
	require.Equal(t, broker.EventAuthOK, env.Type)

	var identity model.Identity
	require.NoError(t, json.Unmarshal(env.Payload, &identity))
	return identity
}

// confirmJoined round-trips a chat echo so the caller knows its join
// was processed before another socket acts on the room.
func confirmJoined(t *testing.T, conn *websocket.Conn, sessionID string) {
	t.Helper()
	send(t, conn, broker.EventChatMessage, map[string]string{
		"sessionId": sessionID,
		"text":      "join-sync",
	})
	env := read(t, conn)
	require.Equal(t, broker.EventChatMessage, env.Type)
}

func TestHandshakeSuccess(t *testing.T) {
	wsURL := newTestServer(t, time.Second)
	conn := dial(t, wsURL)

	identity := authenticate(t, conn, "student-tok")
	assert.Equal(t, "s1", identity.UserID)
	assert.Equal(t, "7A", identity.ClassAssignment)
}

func TestHandshakeBadTokenCloses(t *testing.T) {
	wsURL := newTestServer(t, time.Second)
	conn := dial(t, wsURL)

	send(t, conn, broker.EventAuth, broker.AuthPayload{Token: "invalid"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation),
		"expected policy violation close, got %v", err)
}

func TestHandshakeWrongFirstFrameCloses(t *testing.T) {
	wsURL := newTestServer(t, time.Second)
	conn := dial(t, wsURL)

	send(t, conn, broker.EventChatMessage, map[string]string{"sessionId": "room-1", "text": "hi"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestHandshakeTimeoutCloses(t *testing.T) {
	wsURL := newTestServer(t, 100*time.Millisecond)
	conn := dial(t, wsURL)

	// Present no credential at all.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestJoinAndChatOverSockets(t *testing.T) {
	wsURL := newTestServer(t, time.Second)

	teacher := dial(t, wsURL)
	student := dial(t, wsURL)
	authenticate(t, teacher, "teacher-tok")
	authenticate(t, student, "student-tok")

	send(t, teacher, broker.EventJoinSession, broker.JoinPayload{
		SessionID: "room-42", PeerID: "peer-t", DisplayName: "Ms. Frizzle", IsHost: true,
	})
	confirmJoined(t, teacher, "room-42")
	send(t, student, broker.EventJoinSession, broker.JoinPayload{
		SessionID: "room-42", PeerID: "peer-s", DisplayName: "Arnold",
	})

	env := read(t, teacher)
	require.Equal(t, broker.EventUserJoined, env.Type)
	var attrs broker.PeerAttrs
	require.NoError(t, json.Unmarshal(env.Payload, &attrs))
	assert.Equal(t, "Arnold", attrs.DisplayName)

	send(t, student, broker.EventChatMessage, map[string]string{
		"sessionId": "room-42",
		"text":      "hi",
	})

	for _, conn := range []*websocket.Conn{teacher, student} {
		env := read(t, conn)
		require.Equal(t, broker.EventChatMessage, env.Type)
		var fields map[string]string
		require.NoError(t, json.Unmarshal(env.Payload, &fields))
		assert.Equal(t, "hi", fields["text"])
	}
}

func TestDisconnectNotifiesRoomPeers(t *testing.T) {
	wsURL := newTestServer(t, time.Second)

	teacher := dial(t, wsURL)
	student := dial(t, wsURL)
	authenticate(t, teacher, "teacher-tok")
	authenticate(t, student, "student-tok")

	send(t, teacher, broker.EventJoinSession, broker.JoinPayload{
		SessionID: "room-42", PeerID: "peer-t", DisplayName: "Ms. Frizzle", IsHost: true,
	})
	confirmJoined(t, teacher, "room-42")
	send(t, student, broker.EventJoinSession, broker.JoinPayload{
		SessionID: "room-42", PeerID: "peer-s", DisplayName: "Arnold",
	})
	read(t, teacher) // user-joined

	student.Close()

	env := read(t, teacher)
	assert.Equal(t, broker.EventUserLeft, env.Type)
	var attrs broker.PeerAttrs
	require.NoError(t, json.Unmarshal(env.Payload, &attrs))
	assert.Equal(t, "peer-s", attrs.PeerID)
}
