package broker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"learnmyway/internal/auth"
	"learnmyway/internal/model"
)

// Scope kinds accepted by MembersOf.
type Scope string

const (
	ScopeRoom   Scope = "room"
	ScopeClass  Scope = "class"
	ScopeGlobal Scope = "global"
)

// room is an ephemeral session room. It exists only while it has
// members; an empty room is deleted and indistinguishable from one that
// never existed.
type room struct {
	id      string
	hostID  string // user ID of the authoritative host, "" until a teacher joins
	members map[string]*member
}

type member struct {
	conn  *Conn
	attrs PeerAttrs
}

// Broker owns all live connection and channel state. It is an
// injectable value so tests can run isolated instances side by side.
//
// A single mutex serializes registry mutation and dispatch-time
// snapshots, which gives every scope the per-scope ordering guarantee:
// frames are enqueued to member outboxes under the lock, in acceptance
// order.
type Broker struct {
	verifier    auth.Verifier
	authTimeout time.Duration

	mu      sync.Mutex
	conns   map[string]*Conn
	rooms   map[string]*room
	classes map[string]map[string]*Conn // class assignment -> conn ID -> conn
}

func New(verifier auth.Verifier, authTimeout time.Duration) *Broker {
	if authTimeout <= 0 {
		authTimeout = 5 * time.Second
	}
	return &Broker{
		verifier:    verifier,
		authTimeout: authTimeout,
		conns:       make(map[string]*Conn),
		rooms:       make(map[string]*room),
		classes:     make(map[string]map[string]*Conn),
	}
}

// AuthTimeout is the bounded wait a connection gets to present its
// credential before it is closed.
func (b *Broker) AuthTimeout() time.Duration {
	return b.authTimeout
}

// Accept registers a new unauthenticated connection.
func (b *Broker) Accept() *Conn {
	conn := &Conn{
		ID:    uuid.NewString(),
		state: stateUnauthenticated,
		rooms: make(map[string]struct{}),
		send:  make(chan []byte, sendBuffer),
	}

	b.mu.Lock()
	b.conns[conn.ID] = conn
	b.mu.Unlock()

	return conn
}

// Authenticate calls the identity verifier exactly once for the
// connection. On success the identity is attached and the connection
// implicitly joins its class channel. On failure the connection is
// closed.
func (b *Broker) Authenticate(ctx context.Context, conn *Conn, credential string) (model.Identity, error) {
	b.mu.Lock()
	switch conn.state {
	case stateClosed:
		b.mu.Unlock()
		return model.Identity{}, ErrConnClosed
	case stateAuthenticated:
		b.mu.Unlock()
		return model.Identity{}, ErrAlreadyAuthenticated
	}
	b.mu.Unlock()

	// Verifier call is the only blocking operation in the broker; bound
	// it so a stalled verifier cannot hold the connection open.
	verifyCtx, cancel := context.WithTimeout(ctx, b.authTimeout)
	defer cancel()

	identity, err := b.verifier.Verify(verifyCtx, credential)
	if err != nil {
		b.Close(conn)
		return model.Identity{}, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch conn.state {
	case stateClosed:
		return model.Identity{}, ErrConnClosed
	case stateAuthenticated:
		return model.Identity{}, ErrAlreadyAuthenticated
	}

	conn.state = stateAuthenticated
	conn.identity = identity
	conn.class = ClassChannelOf(identity)

	if conn.class != "" {
		if b.classes[conn.class] == nil {
			b.classes[conn.class] = make(map[string]*Conn)
		}
		b.classes[conn.class][conn.ID] = conn
	}

	return identity, nil
}

// ClassChannelOf derives the class channel key for an identity. Only
// students with a class assignment belong to one.
func ClassChannelOf(identity model.Identity) string {
	if identity.Role != model.RoleStudent || identity.ClassAssignment == "" {
		return ""
	}
	return identity.ClassAssignment
}

// Close removes the connection from the registry and from every room
// and class channel it belonged to, synchronously. Peers in its former
// rooms are told it left before membership is dropped.
func (b *Broker) Close(conn *Conn) {
	if conn == nil {
		return
	}

	b.mu.Lock()

	if conn.state == stateClosed {
		b.mu.Unlock()
		return
	}

	var dead []*Conn
	for roomID := range conn.rooms {
		rm, ok := b.rooms[roomID]
		if !ok {
			continue
		}
		if mb, ok := rm.members[conn.ID]; ok {
			frame := marshalEvent(EventUserLeft, PeerAttrs{
				PeerID:      mb.attrs.PeerID,
				DisplayName: mb.attrs.DisplayName,
				IsHost:      mb.attrs.IsHost,
			})
			for _, other := range rm.members {
				if other.conn == conn {
					continue
				}
				if !other.conn.enqueue(frame) {
					dead = append(dead, other.conn)
				}
			}
		}
		delete(rm.members, conn.ID)
		if len(rm.members) == 0 {
			delete(b.rooms, roomID)
		}
	}
	conn.rooms = make(map[string]struct{})

	if conn.class != "" {
		if ch, ok := b.classes[conn.class]; ok {
			delete(ch, conn.ID)
			if len(ch) == 0 {
				delete(b.classes, conn.class)
			}
		}
	}

	delete(b.conns, conn.ID)
	conn.state = stateClosed
	close(conn.send)

	b.mu.Unlock()

	b.closeDead(dead)
}

// JoinRoom adds the connection to a session room, creating the room on
// first join. Re-joining updates the announced attributes in place. The
// first teacher-role identity in a room is recorded as its host.
func (b *Broker) JoinRoom(conn *Conn, sessionID string, attrs PeerAttrs) error {
	if sessionID == "" {
		return fmt.Errorf("session id required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if conn.state != stateAuthenticated {
		if conn.state == stateClosed {
			return ErrConnClosed
		}
		return ErrNotAuthenticated
	}

	rm, ok := b.rooms[sessionID]
	if !ok {
		rm = &room{id: sessionID, members: make(map[string]*member)}
		b.rooms[sessionID] = rm
	}

	if rm.hostID == "" && conn.identity.Role == model.RoleTeacher {
		rm.hostID = conn.identity.UserID
	}

	if mb, ok := rm.members[conn.ID]; ok {
		mb.attrs = attrs
	} else {
		rm.members[conn.ID] = &member{conn: conn, attrs: attrs}
	}
	conn.rooms[sessionID] = struct{}{}

	return nil
}

// LeaveRoom removes the connection's room membership. The room is
// deleted once its member set is empty.
func (b *Broker) LeaveRoom(conn *Conn, sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(conn.rooms, sessionID)
	rm, ok := b.rooms[sessionID]
	if !ok {
		return
	}
	delete(rm.members, conn.ID)
	if len(rm.members) == 0 {
		delete(b.rooms, sessionID)
	}
}

// MembersOf returns a snapshot of connection IDs in a scope. Membership
// changes after the call do not affect the returned set.
func (b *Broker) MembersOf(kind Scope, key string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []string
	switch kind {
	case ScopeRoom:
		if rm, ok := b.rooms[key]; ok {
			for id := range rm.members {
				ids = append(ids, id)
			}
		}
	case ScopeClass:
		for id := range b.classes[key] {
			ids = append(ids, id)
		}
	case ScopeGlobal:
		for id, conn := range b.conns {
			if conn.state == stateAuthenticated {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// roomSnapshot copies a room's member connections under the lock.
func (rm *room) snapshot(exclude *Conn) []*Conn {
	conns := make([]*Conn, 0, len(rm.members))
	for _, mb := range rm.members {
		if exclude != nil && mb.conn == exclude {
			continue
		}
		conns = append(conns, mb.conn)
	}
	return conns
}

// closeDead tears down receivers whose outboxes overflowed. Runs after
// the registry lock is released.
func (b *Broker) closeDead(dead []*Conn) {
	for _, conn := range dead {
		log.Printf("broker: closing slow receiver %s", conn.ID)
		b.Close(conn)
	}
}
