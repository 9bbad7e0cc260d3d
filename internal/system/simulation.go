package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/core/event"
	coresys "github.com/skyraid/server/internal/core/system"
	"github.com/skyraid/server/internal/handler"
	"github.com/skyraid/server/internal/net/packet"
	"github.com/skyraid/server/internal/player"
	"github.com/skyraid/server/internal/world"
)

// SimulationSystem steps the mission, turns reported explosions into
// pickups and decides when the mission is over. Phase 2 (Update).
type SimulationSystem struct {
	deps   *handler.Deps
	policy world.PickupPolicy
	log    *zap.Logger
}

func NewSimulationSystem(deps *handler.Deps, policy world.PickupPolicy, log *zap.Logger) *SimulationSystem {
	s := &SimulationSystem{deps: deps, policy: policy, log: log}
	if deps.Bus != nil {
		event.Subscribe(deps.Bus, s.onEnemySpawned)
	}
	return s
}

func (s *SimulationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SimulationSystem) Update(dt time.Duration) {
	m := s.deps.Match

	// An empty server starts the next visitor on a fresh mission.
	if s.deps.Sessions.Count() == 0 {
		if m.Ticks() > 0 || m.Status() != player.MissionRunning {
			if err := m.Reset(); err != nil {
				s.log.Error("mission reset failed", zap.Error(err))
			}
		}
		return
	}
	if m.Status() != player.MissionRunning || m.Count() == 0 {
		return
	}

	q := m.World.CommandQueue()
	for _, p := range m.Players() {
		p.HandleRealtimeNetworkInput(q)
	}
	m.World.Update(dt.Seconds())
	m.Advance()

	for {
		act, ok := m.World.PollGameAction()
		if !ok {
			break
		}
		s.onGameAction(act)
	}

	switch {
	case m.World.HasPlayerReachedEnd():
		s.finish(player.MissionSuccess)
		s.deps.Sessions.Broadcast(packet.BuildMissionSuccess(), nil)
	case !m.World.HasAlivePlayer():
		s.finish(player.MissionFailure)
		s.deps.Sessions.Broadcast(packet.BuildBroadcastMessage("Mission failed"), nil)
	}
}

func (s *SimulationSystem) onGameAction(act command.GameAction) {
	if act.Type != command.EnemyExplode || s.policy == nil {
		return
	}
	typ, ok := s.policy.DropPickup(act.Aircraft, act.Position)
	if !ok {
		return
	}
	s.deps.Match.World.CreatePickup(act.Position, typ)
	s.deps.Sessions.Broadcast(packet.BuildSpawnPickup(int32(typ), float32(act.Position[0]), float32(act.Position[1])), nil)
}

func (s *SimulationSystem) onEnemySpawned(e event.EnemySpawned) {
	s.deps.Sessions.Broadcast(packet.BuildSpawnEnemy(int32(e.Type), float32(e.Position[0]), float32(e.Position[1])), nil)
}

func (s *SimulationSystem) finish(status player.MissionStatus) {
	m := s.deps.Match
	if !m.Finish(status) {
		return
	}
	s.log.Info("mission ended", zap.Stringer("status", status), zap.Uint64("ticks", m.Ticks()))
	if s.deps.Bus != nil {
		event.Emit(s.deps.Bus, event.MissionEnded{Success: status == player.MissionSuccess, Ticks: m.Ticks()})
	}
}
