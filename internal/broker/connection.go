package broker

import (
	"learnmyway/internal/model"
)

type connState int

const (
	stateUnauthenticated connState = iota
	stateAuthenticated
	stateClosed
)

// sendBuffer bounds the per-connection outbox. A receiver that falls
// this far behind is treated as dead and closed.
const sendBuffer = 256

// Conn is one live client connection tracked by the broker. All fields
// other than ID are guarded by the owning Broker's lock.
type Conn struct {
	ID string

	state    connState
	identity model.Identity
	class    string              // cached class channel key, "" when not a member
	rooms    map[string]struct{} // session room IDs currently joined
	send     chan []byte
}

// Outbox is the stream of frames to deliver to the client. It is closed
// when the connection is closed.
func (c *Conn) Outbox() <-chan []byte {
	return c.send
}

// Identity returns the verified identity, or false before
// authentication succeeds.
func (c *Conn) Identity() (model.Identity, bool) {
	if c.state != stateAuthenticated {
		return model.Identity{}, false
	}
	return c.identity, true
}

// enqueue appends a frame to the outbox without blocking. It reports
// false when the buffer is full, which the caller treats as a dead
// receiver.
func (c *Conn) enqueue(frame []byte) bool {
	if c.state == stateClosed || frame == nil {
		return true
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}
