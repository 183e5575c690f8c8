package core

import "github.com/dkeye/RoomCounter/internal/domain"

// Frame is a raw encoded payload as it goes over the wire.
type Frame []byte

// SessionID identifies one live connection. It is never reused.
type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}

// Transport is a room-addressable publish/subscribe channel.
// Rooms here are broadcast groups only; it knows nothing of counters.
type Transport interface {
	// Join subscribes sid to the room's broadcast group.
	Join(sid SessionID, room domain.RoomID)
	// Leave unsubscribes sid from the room's broadcast group.
	Leave(sid SessionID, room domain.RoomID)
	// Emit sends v to a single connection.
	Emit(sid SessionID, v any) error
	// Broadcast sends v to every connection subscribed to room.
	Broadcast(room domain.RoomID, v any) PublishResult
	// Kick closes the connection; its disconnect is reported as usual.
	Kick(sid SessionID)
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID   domain.UserID `json:"id"`
	Name string        `json:"name"`
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	Counter     int           `json:"counter"`
	MemberCount int           `json:"member_count"`
}

type RoomSnapshot struct {
	ID      domain.RoomID `json:"id"`
	Counter int           `json:"counter"`
	Members []MemberDTO   `json:"members"`
}
