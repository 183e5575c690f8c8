package app

import (
	"testing"

	"github.com/dkeye/RoomCounter/internal/domain"
)

func TestSessions_Lifecycle(t *testing.T) {
	r := NewSessions()

	s := r.Open("c1")
	if s.Joined() {
		t.Fatal("fresh session is joined")
	}
	if again := r.Open("c1"); again != s {
		t.Error("Open on existing sid returned a new session")
	}

	s.join("r1", domain.User{ID: "u1", Name: "Alice"})
	if !s.Joined() || s.Room != "r1" || s.User.ID != "u1" {
		t.Errorf("after join = %+v", s)
	}
	if s.State.String() != "joined" {
		t.Errorf("State = %s, want joined", s.State)
	}

	s.leave()
	if s.Joined() || s.Room != "" || s.User.ID != "" {
		t.Errorf("after leave = %+v", s)
	}

	r.Close("c1")
	if _, ok := r.Get("c1"); ok {
		t.Error("closed session still present")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestSessions_ClaimedElsewhere(t *testing.T) {
	r := NewSessions()
	r.Open("c1").join("r1", domain.User{ID: "u1", Name: "Alice"})
	r.Open("c2").join("r1", domain.User{ID: "u1", Name: "Alice"})
	r.Open("c3").join("r2", domain.User{ID: "u1", Name: "Alice"})

	if !r.ClaimedElsewhere("r1", "u1", "c1") {
		t.Error("c2 claim on r1/u1 not seen")
	}
	r.Close("c2")
	if r.ClaimedElsewhere("r1", "u1", "c1") {
		t.Error("claim in another room counted")
	}
}
