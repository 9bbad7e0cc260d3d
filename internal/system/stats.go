package system

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/event"
	coresys "github.com/skyraid/server/internal/core/system"
	"github.com/skyraid/server/internal/persist"
)

// StatsSystem tallies gameplay events into a mission result and hands the
// result on once the mission ends. Phase 3 (PostUpdate).
type StatsSystem struct {
	sink *PersistenceSystem
	now  func() time.Time
	log  *zap.Logger

	startedAt time.Time
	enemies   int32
	pickups   int32
	players   map[int32]*persist.MissionPlayer
}

func NewStatsSystem(bus *event.Bus, sink *PersistenceSystem, log *zap.Logger) *StatsSystem {
	s := &StatsSystem{sink: sink, now: time.Now, log: log}
	s.reset()
	event.Subscribe(bus, s.onPlayerConnected)
	event.Subscribe(bus, s.onEnemyDestroyed)
	event.Subscribe(bus, s.onPickupCollected)
	event.Subscribe(bus, s.onPlayerDestroyed)
	event.Subscribe(bus, s.onMissionEnded)
	return s
}

func (s *StatsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *StatsSystem) Update(_ time.Duration) {}

func (s *StatsSystem) reset() {
	s.startedAt = time.Time{}
	s.enemies = 0
	s.pickups = 0
	s.players = make(map[int32]*persist.MissionPlayer)
}

func (s *StatsSystem) player(id int32) *persist.MissionPlayer {
	p, ok := s.players[id]
	if !ok {
		p = &persist.MissionPlayer{Identifier: id}
		s.players[id] = p
	}
	return p
}

func (s *StatsSystem) onPlayerConnected(e event.PlayerConnected) {
	if s.startedAt.IsZero() {
		s.startedAt = s.now()
	}
	s.player(e.Identifier)
}

func (s *StatsSystem) onEnemyDestroyed(e event.EnemyDestroyed) {
	s.enemies++
	if e.Killer != 0 {
		s.player(e.Killer).Kills++
	}
}

func (s *StatsSystem) onPickupCollected(e event.PickupCollected) {
	s.pickups++
	s.player(e.Identifier).Pickups++
}

func (s *StatsSystem) onPlayerDestroyed(e event.PlayerAircraftDestroyed) {
	s.player(e.Identifier).ShotDown = true
}

func (s *StatsSystem) onMissionEnded(e event.MissionEnded) {
	res := s.Result(e)
	s.log.Info("mission summary",
		zap.Bool("success", res.Success),
		zap.Int64("ticks", res.Ticks),
		zap.Int32("enemies", res.EnemiesDestroyed),
		zap.Int32("pickups", res.PickupsCollected),
		zap.Int("players", len(res.Players)),
	)
	if s.sink != nil {
		s.sink.Enqueue(res)
	}
	s.reset()
}

// Result builds the mission result from the current tallies.
func (s *StatsSystem) Result(e event.MissionEnded) *persist.MissionResult {
	end := s.now()
	start := s.startedAt
	if start.IsZero() {
		start = end
	}
	res := &persist.MissionResult{
		StartedAt:        start,
		EndedAt:          end,
		Success:          e.Success,
		Ticks:            int64(e.Ticks),
		EnemiesDestroyed: s.enemies,
		PickupsCollected: s.pickups,
	}
	for _, p := range s.players {
		res.Players = append(res.Players, *p)
	}
	sort.Slice(res.Players, func(i, j int) bool {
		return res.Players[i].Identifier < res.Players[j].Identifier
	})
	return res
}
