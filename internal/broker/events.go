package broker

import (
	"encoding/json"
	"log"
)

// Client-to-server event types.
const (
	EventAuth        = "auth"
	EventJoinSession = "join-session"
	EventChatMessage = "chat-message"
	EventUpdateState = "update-state"
	EventForceMute   = "force-mute-student"
	EventKickStudent = "kick-student"
	EventEndSession  = "end-session"
)

// Server-to-client event types.
const (
	EventAuthOK              = "auth-ok"
	EventUserJoined          = "user-joined"
	EventUserLeft            = "user-left"
	EventForceMuteOut        = "force-mute"
	EventKicked              = "kicked"
	EventSessionEnded        = "session-ended"
	EventSessionNotification = "session-notification"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AuthPayload carries the handshake credential.
type AuthPayload struct {
	Token string `json:"token"`
}

// JoinPayload announces a peer joining a session room. IsHost is
// self-declared by the client and only echoed to peers; moderation
// privilege is decided server-side.
type JoinPayload struct {
	SessionID   string `json:"sessionId"`
	PeerID      string `json:"peerId"`
	DisplayName string `json:"displayName"`
	IsHost      bool   `json:"isHost"`
}

// PeerAttrs are the display attributes a peer announced on join,
// rebroadcast under user-joined and user-left.
type PeerAttrs struct {
	PeerID      string `json:"peerId"`
	DisplayName string `json:"displayName"`
	IsHost      bool   `json:"isHost"`
}

// StatePayload is a peer's media state announcement.
type StatePayload struct {
	SessionID  string `json:"sessionId,omitempty"`
	PeerID     string `json:"peerId"`
	IsMuted    bool   `json:"isMuted"`
	IsVideoOff bool   `json:"isVideoOff"`
}

// TargetPayload names the peer a moderation command applies to.
type TargetPayload struct {
	SessionID string `json:"sessionId,omitempty"`
	PeerID    string `json:"peerId"`
}

// SessionPayload names a session room and nothing else.
type SessionPayload struct {
	SessionID string `json:"sessionId"`
}

func marshalEvent(typ string, payload interface{}) []byte {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("broker: marshal %s payload: %v", typ, err)
			return nil
		}
		raw = data
	}

	frame, err := json.Marshal(Envelope{Type: typ, Payload: raw})
	if err != nil {
		log.Printf("broker: marshal %s envelope: %v", typ, err)
		return nil
	}
	return frame
}
