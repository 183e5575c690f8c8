package app

import (
	"github.com/dkeye/RoomCounter/internal/core"
	"github.com/dkeye/RoomCounter/internal/domain"
	"github.com/rs/zerolog/log"
)

type SessionState int

const (
	Unjoined SessionState = iota
	Joined
)

func (s SessionState) String() string {
	if s == Joined {
		return "joined"
	}
	return "unjoined"
}

// Session is the per-connection record of the room and identity it claims.
// It holds at most one (room, user) pair.
type Session struct {
	SID   core.SessionID
	State SessionState
	Room  domain.RoomID
	User  domain.User
}

func (s *Session) Joined() bool { return s.State == Joined }

func (s *Session) join(room domain.RoomID, user domain.User) {
	s.State = Joined
	s.Room = room
	s.User = user
}

func (s *Session) leave() {
	s.State = Unjoined
	s.Room = ""
	s.User = domain.User{}
}

// Sessions tracks every live connection. Like RoomRegistry it is owned by the Loop.
type Sessions struct {
	sessions map[core.SessionID]*Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[core.SessionID]*Session)}
}

// Open registers a fresh unjoined session. Opening an existing sid returns it unchanged.
func (r *Sessions) Open(sid core.SessionID) *Session {
	if s, ok := r.sessions[sid]; ok {
		return s
	}
	s := &Session{SID: sid}
	r.sessions[sid] = s
	log.Info().Str("module", "app.session").Str("sid", string(sid)).Msg("opened session")
	return s
}

func (r *Sessions) Get(sid core.SessionID) (*Session, bool) {
	s, ok := r.sessions[sid]
	return s, ok
}

func (r *Sessions) Close(sid core.SessionID) {
	delete(r.sessions, sid)
	log.Info().Str("module", "app.session").Str("sid", string(sid)).Msg("closed session")
}

// ClaimedElsewhere reports whether a session other than sid presents user
// in room.
func (r *Sessions) ClaimedElsewhere(room domain.RoomID, user domain.UserID, sid core.SessionID) bool {
	for id, s := range r.sessions {
		if id != sid && s.Joined() && s.Room == room && s.User.ID == user {
			return true
		}
	}
	return false
}

func (r *Sessions) Len() int { return len(r.sessions) }
