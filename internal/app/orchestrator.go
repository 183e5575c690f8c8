package app

import (
	"errors"
	"fmt"

	"github.com/dkeye/RoomCounter/internal/core"
	"github.com/dkeye/RoomCounter/internal/domain"
	"github.com/dkeye/RoomCounter/internal/metrics"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrNotJoined      = errors.New("session has not joined a room")
)

// Orchestrator turns inbound events into registry mutations and broadcasts.
// Every method must run on the Loop goroutine.
type Orchestrator struct {
	Rooms     *RoomRegistry
	Sessions  *Sessions
	Transport core.Transport
	Policy    Policy
}

func NewOrchestrator(t core.Transport, p Policy) *Orchestrator {
	return &Orchestrator{
		Rooms:     NewRoomRegistry(),
		Sessions:  NewSessions(),
		Transport: t,
		Policy:    p,
	}
}

func (o *Orchestrator) OnConnect(sid core.SessionID) {
	o.Sessions.Open(sid)
	metrics.Connections.Set(float64(o.Sessions.Len()))
}

// Join moves the session into req.RoomID under req's identity, leaving any
// previous room first. The room gets the full member list, the joining
// connection alone gets the counter. A new user id in the same room is added
// before the old one is removed, so a sole member's room and counter survive
// the identity change.
func (o *Orchestrator) Join(sid core.SessionID, req domain.JoinRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	sess, ok := o.Sessions.Get(sid)
	if !ok {
		return fmt.Errorf("join %s: %w", sid, ErrUnknownSession)
	}

	if sess.Joined() && sess.Room != req.RoomID {
		from := sess.Room
		o.depart(sess)
		log.Info().Str("module", "app.router").Str("sid", string(sid)).Str("from_room", string(from)).Msg("left previous room")
	}

	user := req.User()
	prev := sess.User
	o.Rooms.AddMember(req.RoomID, user)
	if sess.Joined() && prev.ID != user.ID {
		// identity change in the same room; the new id is in before the
		// old one goes so the room never empties in between
		o.release(req.RoomID, prev.ID, sid)
	}
	sess.join(req.RoomID, user)
	o.Transport.Join(sid, req.RoomID)
	metrics.Rooms.Set(float64(o.Rooms.Len()))

	log.Info().Str("module", "app.router").Str("sid", string(sid)).Str("room", string(req.RoomID)).Str("user", string(user.ID)).Msg("joined room")

	o.broadcast(req.RoomID, core.NewMembersUpdate(o.Rooms.Members(req.RoomID)))
	if err := o.Transport.Emit(sid, core.NewCounterUpdate(o.Rooms.GetOrCreateCounter(req.RoomID))); err != nil {
		log.Warn().Err(err).Str("module", "app.router").Str("sid", string(sid)).Msg("counter unicast failed")
	}
	return nil
}

// Increment bumps the counter of the session's room and broadcasts it.
func (o *Orchestrator) Increment(sid core.SessionID) error {
	sess, ok := o.Sessions.Get(sid)
	if !ok {
		return fmt.Errorf("increment %s: %w", sid, ErrUnknownSession)
	}
	if !sess.Joined() {
		return fmt.Errorf("increment %s: %w", sid, ErrNotJoined)
	}
	n := o.Rooms.Increment(sess.Room)
	log.Info().Str("module", "app.router").Str("sid", string(sid)).Str("room", string(sess.Room)).Int("count", n).Msg("counter incremented")
	o.broadcast(sess.Room, core.NewCounterUpdate(n))
	return nil
}

// Leave returns the session to Unjoined without closing the connection.
func (o *Orchestrator) Leave(sid core.SessionID) error {
	sess, ok := o.Sessions.Get(sid)
	if !ok {
		return fmt.Errorf("leave %s: %w", sid, ErrUnknownSession)
	}
	if !sess.Joined() {
		return fmt.Errorf("leave %s: %w", sid, ErrNotJoined)
	}
	o.depart(sess)
	return nil
}

func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	sess, ok := o.Sessions.Get(sid)
	if !ok {
		return
	}
	if sess.Joined() {
		o.depart(sess)
	}
	o.Sessions.Close(sid)
	metrics.Connections.Set(float64(o.Sessions.Len()))
}

// depart removes the session from its room and tells the remaining members.
func (o *Orchestrator) depart(sess *Session) {
	room, user := sess.Room, sess.User.ID
	o.Transport.Leave(sess.SID, room)
	sess.leave()
	members := o.release(room, user, sess.SID)
	metrics.Rooms.Set(float64(o.Rooms.Len()))
	log.Info().Str("module", "app.router").Str("sid", string(sess.SID)).Str("room", string(room)).Str("user", string(user)).Msg("left room")
	if len(members) > 0 {
		o.broadcast(room, core.NewMembersUpdate(members))
	}
}

// release drops user from room unless another live session still claims it.
func (o *Orchestrator) release(room domain.RoomID, user domain.UserID, sid core.SessionID) []core.MemberDTO {
	if o.Sessions.ClaimedElsewhere(room, user, sid) {
		return o.Rooms.Members(room)
	}
	return o.Rooms.RemoveMember(room, user)
}

func (o *Orchestrator) broadcast(room domain.RoomID, v any) {
	res := o.Transport.Broadcast(room, v)
	log.Debug().Str("module", "app.router").Str("room", string(room)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	if len(res.Dropped) == 0 {
		return
	}
	metrics.BroadcastDropped.Add(float64(len(res.Dropped)))
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case KickMember:
			log.Warn().Str("module", "app.router").Str("sid", string(slow)).Str("room", string(room)).Msg("kicking slow member")
			o.Transport.Kick(slow)
		case NoAction:
		}
	}
}

// ListRooms and RoomSnapshot are read paths for the HTTP inspection API.
func (o *Orchestrator) ListRooms() []core.RoomInfo { return o.Rooms.List() }

func (o *Orchestrator) RoomSnapshot(id domain.RoomID) (core.RoomSnapshot, bool) {
	return o.Rooms.Snapshot(id)
}
