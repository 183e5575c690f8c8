package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/RoomCounter/internal/app"
	"github.com/dkeye/RoomCounter/internal/core"
	"github.com/dkeye/RoomCounter/internal/domain"
	"github.com/dkeye/RoomCounter/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			c.Close()
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.Opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping failed")
				c.Close()
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		if err := ctl.Loop.Submit(ctx, app.Event{Kind: app.EventDisconnect, SID: sid}); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("submit disconnect")
		}
		ctl.Hub.Unregister(sid)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.Opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.Opts.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.Opts.pongWait()))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(ctx, sid, c, data)
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, sid core.SessionID, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		metrics.EventsDropped.WithLabelValues(metrics.ReasonDecode).Inc()
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}

	switch env.Type {
	case core.EventJoin:
		ctl.handleJoin(ctx, sid, data)
	case core.EventIncrement, core.EventLeave:
		ctl.submit(ctx, app.Event{Kind: env.Type, SID: sid})
	case core.EventPing:
		ctl.handlePing(c)
	default:
		metrics.EventsDropped.WithLabelValues(metrics.ReasonUnknownEvent).Inc()
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *SignalWSController) handleJoin(ctx context.Context, sid core.SessionID, data []byte) {
	var p domain.JoinRequest
	if err := json.Unmarshal(data, &p); err != nil {
		metrics.EventsDropped.WithLabelValues(metrics.ReasonDecode).Inc()
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad join payload")
		return
	}
	ctl.submit(ctx, app.Event{Kind: core.EventJoin, SID: sid, Join: p})
}

func (ctl *SignalWSController) submit(ctx context.Context, ev app.Event) {
	if err := ctl.Loop.Submit(ctx, ev); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(ev.SID)).Str("event", ev.Kind).Msg("submit event")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
