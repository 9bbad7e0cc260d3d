package handler

import (
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/net/packet"
)

// HandleQuit closes the session; HandleDisconnect does the cleanup once
// the input system notices.
func HandleQuit(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info("client quit", zap.Uint64("session", sess.ID))
	sess.Close()
}

// HandleDisconnect removes every aircraft the session controlled and tells
// the remaining clients.
func HandleDisconnect(sess *net.Session, deps *Deps) {
	for _, id := range sess.Identifiers {
		deps.Match.Leave(id)
		deps.Sessions.Broadcast(packet.BuildPlayerDisconnect(id), sess)
		if deps.Bus != nil {
			event.Emit(deps.Bus, event.PlayerDisconnected{Identifier: id, SessionID: sess.ID})
		}
	}
	if len(sess.Identifiers) > 0 {
		deps.Sessions.Broadcast(packet.BuildBroadcastMessage("An ally has disconnected."), sess)
	}
	deps.Log.Info("client disconnected",
		zap.Uint64("session", sess.ID),
		zap.Int32s("players", sess.Identifiers),
	)
	sess.Identifiers = nil
}
