package handler

import (
	"errors"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/net/packet"
	"github.com/skyraid/server/internal/world"
)

// HandleJoin gives a freshly accepted session its first aircraft. The
// session learns its identifier and the current mission state; everyone
// else learns about the newcomer.
func HandleJoin(sess *net.Session, deps *Deps) {
	a, err := deps.Match.Join(sess)
	if err != nil {
		refuse(sess, err, deps)
		return
	}
	sess.SetState(packet.StateInGame)

	pos := a.WorldPosition()
	sess.Send(packet.BuildSpawnSelf(a.Identifier(), float32(pos[0]), float32(pos[1])))
	sess.Send(buildInitialState(deps.Match.World, a.Identifier()))

	deps.Sessions.Broadcast(packet.BuildPlayerConnect(a.Identifier(), float32(pos[0]), float32(pos[1])), sess)
	deps.Sessions.Broadcast(packet.BuildBroadcastMessage("New player!"), sess)
	joined(sess, a, deps)
}

// HandleRequestCoopPartner adds a second aircraft to a session for a
// player sharing the keyboard.
func HandleRequestCoopPartner(sess *net.Session, _ *packet.Reader, deps *Deps) {
	a, err := deps.Match.Join(sess)
	if err != nil {
		deps.Log.Info("coop partner refused", zap.Uint64("session", sess.ID), zap.Error(err))
		sess.Send(packet.BuildBroadcastMessage(refusal(err)))
		return
	}
	pos := a.WorldPosition()
	sess.Send(packet.BuildAcceptCoopPartner(a.Identifier(), float32(pos[0]), float32(pos[1])))
	deps.Sessions.Broadcast(packet.BuildPlayerConnect(a.Identifier(), float32(pos[0]), float32(pos[1])), sess)
	joined(sess, a, deps)
}

func joined(sess *net.Session, a *world.Aircraft, deps *Deps) {
	deps.Log.Info("player joined",
		zap.Uint64("session", sess.ID),
		zap.Int32("player", a.Identifier()),
		zap.Int("players", deps.Match.Count()),
	)
	if deps.Bus != nil {
		event.Emit(deps.Bus, event.PlayerConnected{Identifier: a.Identifier(), SessionID: sess.ID})
	}
}

func refuse(sess *net.Session, err error, deps *Deps) {
	deps.Log.Info("join refused", zap.Uint64("session", sess.ID), zap.Error(err))
	sess.Send(packet.BuildBroadcastMessage(refusal(err)))
	sess.FlushOutput()
	sess.Close()
}

func refusal(err error) string {
	switch {
	case errors.Is(err, ErrMatchFull), errors.Is(err, world.ErrPlayerLimit):
		return "Server full"
	case errors.Is(err, ErrMatchOver):
		return "Mission already over"
	}
	return "Cannot join"
}

// buildInitialState describes every aircraft except self.
func buildInitialState(w *world.World, self int32) []byte {
	snap := w.Snapshot(0)
	infos := make([]packet.AircraftInfo, 0, len(snap.Aircraft))
	for _, a := range snap.Aircraft {
		if a.Identifier == self {
			continue
		}
		infos = append(infos, packet.AircraftInfo{
			Identifier: a.Identifier,
			X:          float32(a.X),
			Y:          float32(a.Y),
			Hitpoints:  a.Hitpoints,
			Missiles:   a.MissileAmmo,
		})
	}
	return packet.BuildInitialState(float32(snap.WorldHeight), float32(snap.BattlefieldY), infos)
}
