package broker

import (
	"encoding/json"
	"log"

	"learnmyway/internal/model"
)

// Dispatch validates an inbound event, resolves its scope and fans it
// out to the scope's current members. Malformed events and events whose
// scope is empty are dropped; neither stops the dispatch path for other
// events.
func (b *Broker) Dispatch(sender *Conn, env Envelope) {
	switch env.Type {
	case EventJoinSession:
		b.dispatchJoin(sender, env.Payload)
	case EventChatMessage:
		b.dispatchChat(sender, env.Payload)
	case EventUpdateState:
		b.dispatchState(sender, env.Payload)
	case EventForceMute, EventKickStudent:
		b.relayModeration(sender, env.Type, env.Payload)
	case EventEndSession:
		b.dispatchEnd(sender, env.Payload)
	default:
		log.Printf("broker: dropping event with unknown type %q from %s", env.Type, sender.ID)
	}
}

func (b *Broker) dispatchJoin(sender *Conn, payload json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.SessionID == "" {
		log.Printf("broker: dropping malformed join-session from %s", sender.ID)
		return
	}

	attrs := PeerAttrs{PeerID: p.PeerID, DisplayName: p.DisplayName, IsHost: p.IsHost}
	if err := b.JoinRoom(sender, p.SessionID, attrs); err != nil {
		log.Printf("broker: join-session from %s rejected: %v", sender.ID, err)
		return
	}

	// The joining peer does not receive its own join echo.
	b.broadcastRoom(p.SessionID, sender, marshalEvent(EventUserJoined, attrs))
}

func (b *Broker) dispatchChat(sender *Conn, payload json.RawMessage) {
	// Chat payloads are freeform apart from the routing key. The key is
	// stripped before rebroadcast.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		log.Printf("broker: dropping malformed chat-message from %s", sender.ID)
		return
	}

	var sessionID string
	if raw, ok := fields["sessionId"]; ok {
		_ = json.Unmarshal(raw, &sessionID)
	}
	if sessionID == "" {
		log.Printf("broker: dropping chat-message without session from %s", sender.ID)
		return
	}
	delete(fields, "sessionId")

	b.broadcastRoom(sessionID, nil, marshalEvent(EventChatMessage, fields))
}

func (b *Broker) dispatchState(sender *Conn, payload json.RawMessage) {
	var p StatePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.SessionID == "" {
		log.Printf("broker: dropping malformed update-state from %s", sender.ID)
		return
	}

	sessionID := p.SessionID
	p.SessionID = ""
	b.broadcastRoom(sessionID, nil, marshalEvent(EventUpdateState, p))
}

func (b *Broker) dispatchEnd(sender *Conn, payload json.RawMessage) {
	var p SessionPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.SessionID == "" {
		log.Printf("broker: dropping malformed end-session from %s", sender.ID)
		return
	}

	// Receivers treat this as terminal and leave on their own; the room
	// itself is garbage-collected once its member set empties.
	b.broadcastRoom(p.SessionID, nil, marshalEvent(EventSessionEnded, nil))
}

// Notify fans a server-originated notification out to a class channel,
// or to every authenticated connection when the target is "All".
func (b *Broker) Notify(targetClass string, record interface{}) {
	if targetClass == "" {
		log.Printf("broker: dropping notification without target class")
		return
	}

	frame := marshalEvent(EventSessionNotification, record)
	if frame == nil {
		return
	}

	b.mu.Lock()
	var conns []*Conn
	if targetClass == model.TargetAll {
		conns = make([]*Conn, 0, len(b.conns))
		for _, conn := range b.conns {
			if conn.state == stateAuthenticated {
				conns = append(conns, conn)
			}
		}
	} else {
		ch := b.classes[targetClass]
		conns = make([]*Conn, 0, len(ch))
		for _, conn := range ch {
			conns = append(conns, conn)
		}
	}

	var dead []*Conn
	for _, conn := range conns {
		if !conn.enqueue(frame) {
			dead = append(dead, conn)
		}
	}
	b.mu.Unlock()

	b.closeDead(dead)
}

// broadcastRoom delivers one frame to every current member of a room,
// excluding at most one connection. A room with no members is a no-op.
// Member outboxes are filled under the registry lock, so all members
// observe room events in the order they were dispatched.
func (b *Broker) broadcastRoom(sessionID string, exclude *Conn, frame []byte) {
	if frame == nil {
		return
	}

	b.mu.Lock()
	rm, ok := b.rooms[sessionID]
	if !ok {
		b.mu.Unlock()
		return
	}

	var dead []*Conn
	for _, conn := range rm.snapshot(exclude) {
		if !conn.enqueue(frame) {
			dead = append(dead, conn)
		}
	}
	b.mu.Unlock()

	b.closeDead(dead)
}
