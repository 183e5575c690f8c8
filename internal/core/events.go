package core

// Event kinds as they appear in the "type" field of the wire envelope.
const (
	EventJoin      = "join"
	EventIncrement = "increment"
	EventLeave     = "leave"
	EventPing      = "ping"

	EventCounterUpdate = "counterUpdate"
	EventMembersUpdate = "membersUpdate"
	EventPong          = "pong"
)

// CounterUpdate carries a room's counter value.
type CounterUpdate struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func NewCounterUpdate(count int) CounterUpdate {
	return CounterUpdate{Type: EventCounterUpdate, Count: count}
}

// MembersUpdate carries the full member list of a room in join order.
type MembersUpdate struct {
	Type    string      `json:"type"`
	Members []MemberDTO `json:"members"`
}

func NewMembersUpdate(members []MemberDTO) MembersUpdate {
	if members == nil {
		members = []MemberDTO{}
	}
	return MembersUpdate{Type: EventMembersUpdate, Members: members}
}
