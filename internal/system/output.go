package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/skyraid/server/internal/core/system"
	"github.com/skyraid/server/internal/handler"
	"github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/net/packet"
	"github.com/skyraid/server/internal/player"
	"github.com/skyraid/server/internal/world"
)

// OutputSystem broadcasts a state snapshot every few ticks and flushes all
// session output buffers. Phase 4 (Output).
type OutputSystem struct {
	deps     *handler.Deps
	every    uint64
	lastTick uint64
	log      *zap.Logger
}

func NewOutputSystem(deps *handler.Deps, snapshotEvery int, log *zap.Logger) *OutputSystem {
	if snapshotEvery < 1 {
		snapshotEvery = 1
	}
	return &OutputSystem{deps: deps, every: uint64(snapshotEvery), log: log}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	m := s.deps.Match
	tick := m.Ticks()
	if m.Status() == player.MissionRunning && tick != s.lastTick && tick%s.every == 0 {
		s.lastTick = tick
		body, err := world.EncodeSnapshot(m.World.Snapshot(tick))
		if err != nil {
			s.log.Error("encode snapshot", zap.Error(err))
		} else {
			s.deps.Sessions.Broadcast(packet.BuildUpdateClientState(body), nil)
		}
	}

	s.deps.Sessions.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}
