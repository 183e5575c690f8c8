package signal

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dkeye/RoomCounter/internal/core"
	"github.com/dkeye/RoomCounter/internal/domain"
	"github.com/rs/zerolog/log"
)

// Hub is the room-addressable side of the transport: it knows which
// connections are live and which broadcast groups they subscribe to.
type Hub struct {
	mu     sync.RWMutex
	conns  map[core.SessionID]core.SignalConnection
	groups map[domain.RoomID][]core.SessionID
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[core.SessionID]core.SignalConnection),
		groups: make(map[domain.RoomID][]core.SessionID),
	}
}

func (h *Hub) Register(sid core.SessionID, conn core.SignalConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[sid] = conn
	log.Info().Str("module", "signal.hub").Str("sid", string(sid)).Msg("registered connection")
}

// Unregister forgets the connection and drops it from every group.
func (h *Hub) Unregister(sid core.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, sid)
	for room := range h.groups {
		h.leaveLocked(sid, room)
	}
	log.Info().Str("module", "signal.hub").Str("sid", string(sid)).Msg("unregistered connection")
}

func (h *Hub) Join(sid core.SessionID, room domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.groups[room] {
		if s == sid {
			return
		}
	}
	h.groups[room] = append(h.groups[room], sid)
}

func (h *Hub) Leave(sid core.SessionID, room domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(sid, room)
}

func (h *Hub) leaveLocked(sid core.SessionID, room domain.RoomID) {
	g := h.groups[room]
	for i, s := range g {
		if s == sid {
			g = append(g[:i:i], g[i+1:]...)
			break
		}
	}
	if len(g) == 0 {
		delete(h.groups, room)
		return
	}
	h.groups[room] = g
}

func (h *Hub) Emit(sid core.SessionID, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("emit marshal: %w", err)
	}
	h.mu.RLock()
	conn, ok := h.conns[sid]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("emit %s: %w", sid, ErrConnClosed)
	}
	return conn.TrySend(data)
}

// Broadcast delivers v to the room's group in join order. Connections whose
// buffers are full are reported back instead of blocking.
func (h *Hub) Broadcast(room domain.RoomID, v any) core.PublishResult {
	res := core.PublishResult{}
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal.hub").Msg("broadcast marshal")
		return res
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sid := range h.groups[room] {
		conn, ok := h.conns[sid]
		if !ok {
			continue
		}
		if err := conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SendTo++
	}
	return res
}

func (h *Hub) Kick(sid core.SessionID) {
	h.mu.RLock()
	conn, ok := h.conns[sid]
	h.mu.RUnlock()
	if ok {
		conn.Close()
	}
}
