package app

import (
	"sort"

	"github.com/dkeye/RoomCounter/internal/core"
	"github.com/dkeye/RoomCounter/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomState struct {
	counter int
	// members in join order
	members []domain.User
}

func (s *roomState) indexOf(id domain.UserID) int {
	for i, u := range s.members {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (s *roomState) snapshot() []core.MemberDTO {
	out := make([]core.MemberDTO, 0, len(s.members))
	for _, u := range s.members {
		out = append(out, core.MemberDTO{ID: u.ID, Name: u.Name})
	}
	return out
}

// RoomRegistry is the in-memory store of room counters and membership.
// It is not safe for concurrent use; the Loop owns it.
type RoomRegistry struct {
	rooms map[domain.RoomID]*roomState
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomID]*roomState)}
}

func (r *RoomRegistry) getOrCreate(id domain.RoomID) *roomState {
	if s, ok := r.rooms[id]; ok {
		return s
	}
	s := &roomState{}
	r.rooms[id] = s
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
	return s
}

// GetOrCreateCounter returns the room's counter, creating the room at 0.
func (r *RoomRegistry) GetOrCreateCounter(id domain.RoomID) int {
	return r.getOrCreate(id).counter
}

// Increment bumps the room's counter and returns the new value.
func (r *RoomRegistry) Increment(id domain.RoomID) int {
	s := r.getOrCreate(id)
	s.counter++
	return s.counter
}

// AddMember inserts user unless its id is already present and returns the
// resulting member list.
func (r *RoomRegistry) AddMember(id domain.RoomID, user domain.User) []core.MemberDTO {
	s := r.getOrCreate(id)
	if s.indexOf(user.ID) < 0 {
		s.members = append(s.members, user)
		log.Info().Str("module", "app.registry").Str("room", string(id)).Str("user", string(user.ID)).Msg("member added")
	}
	return s.snapshot()
}

// RemoveMember drops the user by id. When the room becomes empty its entry,
// counter included, is deleted.
func (r *RoomRegistry) RemoveMember(id domain.RoomID, userID domain.UserID) []core.MemberDTO {
	s, ok := r.rooms[id]
	if !ok {
		return []core.MemberDTO{}
	}
	if i := s.indexOf(userID); i >= 0 {
		s.members = append(s.members[:i], s.members[i+1:]...)
		log.Info().Str("module", "app.registry").Str("room", string(id)).Str("user", string(userID)).Msg("member removed")
	}
	if len(s.members) == 0 {
		delete(r.rooms, id)
		log.Info().Str("module", "app.registry").Str("room", string(id)).Int("counter", s.counter).Msg("room deleted")
		return []core.MemberDTO{}
	}
	return s.snapshot()
}

// Members returns the room's member list; unknown rooms are empty.
func (r *RoomRegistry) Members(id domain.RoomID) []core.MemberDTO {
	s, ok := r.rooms[id]
	if !ok {
		return []core.MemberDTO{}
	}
	return s.snapshot()
}

func (r *RoomRegistry) Snapshot(id domain.RoomID) (core.RoomSnapshot, bool) {
	s, ok := r.rooms[id]
	if !ok {
		return core.RoomSnapshot{}, false
	}
	return core.RoomSnapshot{ID: id, Counter: s.counter, Members: s.snapshot()}, true
}

// List returns every room ordered by id.
func (r *RoomRegistry) List() []core.RoomInfo {
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for id, s := range r.rooms {
		out = append(out, core.RoomInfo{ID: id, Counter: s.counter, MemberCount: len(s.members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *RoomRegistry) Len() int { return len(r.rooms) }
