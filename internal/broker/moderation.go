package broker

import (
	"encoding/json"
	"log"
)

// Moderation relay. force-mute-student and kick-student reuse the room
// broadcast path, but because their payloads name a targeted peer they
// are gated on the sender actually being the room's recorded host. The
// host is set server-side when a teacher-role identity first joins the
// room; the client-declared isHost flag carries no privilege.
func (b *Broker) relayModeration(sender *Conn, typ string, payload json.RawMessage) {
	var p TargetPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.SessionID == "" {
		log.Printf("broker: dropping malformed %s from %s", typ, sender.ID)
		return
	}

	if !b.isRoomHost(sender, p.SessionID) {
		log.Printf("broker: rejecting %s from non-host %s in room %s", typ, sender.ID, p.SessionID)
		return
	}

	outType := EventForceMuteOut
	if typ == EventKickStudent {
		outType = EventKicked
	}

	b.broadcastRoom(p.SessionID, nil, marshalEvent(outType, TargetPayload{PeerID: p.PeerID}))
}

func (b *Broker) isRoomHost(conn *Conn, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if conn.state != stateAuthenticated {
		return false
	}
	rm, ok := b.rooms[sessionID]
	if !ok {
		return false
	}
	return rm.hostID != "" && rm.hostID == conn.identity.UserID
}
