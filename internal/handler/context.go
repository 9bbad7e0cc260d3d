// Package handler turns client packets into player input and roster changes.
package handler

import (
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/net/packet"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Log      *zap.Logger
	Match    *Match
	Sessions *net.SessionStore
	Bus      *event.Bus
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	inGame := []packet.SessionState{packet.StateInGame}
	anyState := []packet.SessionState{packet.StateConnected, packet.StateInGame}

	reg.Register(packet.C_PLAYER_EVENT, inGame,
		func(sess any, r *packet.Reader) {
			HandlePlayerEvent(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_PLAYER_REALTIME_CHANGE, inGame,
		func(sess any, r *packet.Reader) {
			HandleRealtimeChange(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_REQUEST_COOP_PARTNER, inGame,
		func(sess any, r *packet.Reader) {
			HandleRequestCoopPartner(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_POSITION_UPDATE, inGame,
		func(sess any, r *packet.Reader) {
			HandlePositionUpdate(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_GAME_EVENT, inGame,
		func(sess any, r *packet.Reader) {
			HandleGameEvent(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_QUIT, anyState,
		func(sess any, r *packet.Reader) {
			HandleQuit(sess.(*net.Session), r, deps)
		},
	)
}
