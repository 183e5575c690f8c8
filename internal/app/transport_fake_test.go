package app

import (
	"errors"

	"github.com/dkeye/RoomCounter/internal/core"
	"github.com/dkeye/RoomCounter/internal/domain"
)

// fakeTransport keeps room groups in memory and records every message per connection.
type fakeTransport struct {
	groups map[domain.RoomID][]core.SessionID
	inbox  map[core.SessionID][]any
	full   map[core.SessionID]bool
	kicked []core.SessionID
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		groups: make(map[domain.RoomID][]core.SessionID),
		inbox:  make(map[core.SessionID][]any),
		full:   make(map[core.SessionID]bool),
	}
}

func (f *fakeTransport) Join(sid core.SessionID, room domain.RoomID) {
	for _, s := range f.groups[room] {
		if s == sid {
			return
		}
	}
	f.groups[room] = append(f.groups[room], sid)
}

func (f *fakeTransport) Leave(sid core.SessionID, room domain.RoomID) {
	g := f.groups[room]
	for i, s := range g {
		if s == sid {
			f.groups[room] = append(g[:i], g[i+1:]...)
			break
		}
	}
	if len(f.groups[room]) == 0 {
		delete(f.groups, room)
	}
}

func (f *fakeTransport) Emit(sid core.SessionID, v any) error {
	if f.full[sid] {
		return errors.New("full")
	}
	f.inbox[sid] = append(f.inbox[sid], v)
	return nil
}

func (f *fakeTransport) Broadcast(room domain.RoomID, v any) core.PublishResult {
	var res core.PublishResult
	for _, sid := range f.groups[room] {
		if f.full[sid] {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		f.inbox[sid] = append(f.inbox[sid], v)
		res.SendTo++
	}
	return res
}

func (f *fakeTransport) Kick(sid core.SessionID) {
	f.kicked = append(f.kicked, sid)
}

// drain returns and clears the messages received by sid.
func (f *fakeTransport) drain(sid core.SessionID) []any {
	msgs := f.inbox[sid]
	delete(f.inbox, sid)
	return msgs
}
