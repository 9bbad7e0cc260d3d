package handler

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/net/packet"
	"github.com/skyraid/server/internal/player"
)

// readAction decodes the identifier and action shared by both input
// packets and checks the session may act for that aircraft.
func readAction(sess *net.Session, r *packet.Reader, deps *Deps) (*player.Player, player.Action, bool) {
	id := r.ReadInt32()
	action := player.Action(r.ReadInt32())
	if r.Err() != nil || !action.Valid() {
		deps.Log.Debug("malformed input", zap.Uint64("session", sess.ID), zap.Int32("action", int32(action)))
		return nil, 0, false
	}
	if !sess.Owns(id) {
		deps.Log.Warn("input for foreign aircraft", zap.Uint64("session", sess.ID), zap.Int32("player", id))
		return nil, 0, false
	}
	p := deps.Match.Player(id)
	if p == nil {
		return nil, 0, false
	}
	return p, action, true
}

// HandlePlayerEvent performs a discrete action and relays it to the other
// clients.
func HandlePlayerEvent(sess *net.Session, r *packet.Reader, deps *Deps) {
	p, action, ok := readAction(sess, r, deps)
	if !ok {
		return
	}
	p.HandleNetworkEvent(action, deps.Match.World.CommandQueue())
	deps.Sessions.Broadcast(packet.BuildPlayerEvent(packet.S_PLAYER_EVENT, p.Identifier(), int32(action)), sess)
}

// HandleRealtimeChange records a held or released realtime action and
// relays it to the other clients.
func HandleRealtimeChange(sess *net.Session, r *packet.Reader, deps *Deps) {
	p, action, ok := readAction(sess, r, deps)
	if !ok {
		return
	}
	enabled := r.ReadBool()
	if r.Err() != nil {
		return
	}
	p.HandleNetworkRealtimeChange(action, enabled)
	deps.Sessions.Broadcast(packet.BuildRealtimeChange(packet.S_PLAYER_REALTIME_CHANGE, p.Identifier(), int32(action), enabled), sess)
}

// HandlePositionUpdate accepts client-side positions for the session's own
// aircraft. The world clamps them to the view on its next update.
func HandlePositionUpdate(sess *net.Session, r *packet.Reader, deps *Deps) {
	positions, err := packet.ReadPositionUpdate(r)
	if err != nil {
		deps.Log.Debug("malformed position update", zap.Uint64("session", sess.ID), zap.Error(err))
		return
	}
	for _, p := range positions {
		if !sess.Owns(p.Identifier) {
			continue
		}
		if !finite(p.X) || !finite(p.Y) {
			deps.Log.Debug("non-finite position dropped",
				zap.Uint64("session", sess.ID),
				zap.Int32("player", p.Identifier),
			)
			continue
		}
		if a := deps.Match.World.GetAircraft(p.Identifier); a != nil && a.Node() != nil {
			a.Node().SetPosition(mgl64.Vec2{float64(p.X), float64(p.Y)})
		}
	}
}

// HandleGameEvent logs client-reported game actions. The server simulates
// the mission itself, so these never change state.
func HandleGameEvent(sess *net.Session, r *packet.Reader, deps *Deps) {
	typ := r.ReadInt32()
	deps.Log.Debug("client game event ignored",
		zap.Uint64("session", sess.ID),
		zap.Int32("type", typ),
		zap.Float32("x", r.ReadFloat32()),
		zap.Float32("y", r.ReadFloat32()),
	)
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
