package system

import (
	"context"
	"errors"
	"math/rand"
	gonet "net"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/handler"
	"github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/net/packet"
	"github.com/skyraid/server/internal/persist"
	"github.com/skyraid/server/internal/player"
	"github.com/skyraid/server/internal/world"
)

const tick = time.Second / 60

type fakeSource struct {
	newCh  chan *net.Session
	deadCh chan uint64
}

func newFakeSource() *fakeSource {
	return &fakeSource{newCh: make(chan *net.Session, 8), deadCh: make(chan uint64, 8)}
}

func (f *fakeSource) NewSessions() <-chan *net.Session { return f.newCh }
func (f *fakeSource) DeadSessions() <-chan uint64      { return f.deadCh }

type fixedPolicy struct{ typ data.PickupType }

func (p fixedPolicy) DropPickup(data.AircraftType, mgl64.Vec2) (data.PickupType, bool) {
	return p.typ, true
}

type recordingStore struct {
	saved []*persist.MissionResult
	err   error
}

func (r *recordingStore) SaveMission(_ context.Context, m *persist.MissionResult) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.saved = append(r.saved, m)
	return int64(len(r.saved)), nil
}

type fixture struct {
	deps   *handler.Deps
	source *fakeSource
	input  *InputSystem
	events *EventDispatchSystem
	sim    *SimulationSystem
	output *OutputSystem
	nextID uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tables, err := data.LoadTables("../../data/yaml")
	require.NoError(t, err)
	bus := event.NewBus()

	opts := world.DefaultOptions()
	opts.Multiplayer = true
	opts.ScriptedEnemies = false
	match, err := handler.NewMatch(func() (*world.World, error) {
		return world.New(world.Config{Options: opts, Tables: tables, Rand: rand.New(rand.NewSource(1)), Bus: bus})
	}, 4, zap.NewNop())
	require.NoError(t, err)

	deps := &handler.Deps{Log: zap.NewNop(), Match: match, Sessions: net.NewSessionStore(), Bus: bus}
	reg := packet.NewRegistry(zap.NewNop())
	handler.RegisterAll(reg, deps)

	f := &fixture{
		deps:   deps,
		source: newFakeSource(),
		events: NewEventDispatchSystem(bus),
		sim:    NewSimulationSystem(deps, fixedPolicy{typ: data.FireRate}, zap.NewNop()),
		output: NewOutputSystem(deps, 2, zap.NewNop()),
	}
	f.input = NewInputSystem(f.source, reg, deps, 8, zap.NewNop())
	return f
}

// connect hands a new session to the input system.
func (f *fixture) connect(t *testing.T) *net.Session {
	t.Helper()
	a, _ := gonet.Pipe()
	f.nextID++
	s := net.NewSession(net.NewStreamConn(a), f.nextID, net.SessionOptions{InQueueSize: 8, OutQueueSize: 128}, zap.NewNop())
	t.Cleanup(s.Close)
	f.source.newCh <- s
	f.input.Update(tick)
	require.Equal(t, packet.StateInGame, s.State())
	return s
}

func drainOut(s *net.Session) []*packet.Reader {
	s.FlushOutput()
	var out []*packet.Reader
	for {
		select {
		case b := <-s.OutQueue:
			out = append(out, packet.NewReader(b))
		default:
			return out
		}
	}
}

func ofType(rs []*packet.Reader, typ int32) []*packet.Reader {
	var out []*packet.Reader
	for _, r := range rs {
		if r.Type() == typ {
			out = append(out, r)
		}
	}
	return out
}

func TestInputSystem_AdmitsAndDispatches(t *testing.T) {
	f := newFixture(t)
	s := f.connect(t)
	assert.Equal(t, []int32{1}, s.Identifiers)
	assert.Len(t, ofType(drainOut(s), packet.S_SPAWN_SELF), 1, "early flush delivers the welcome")

	s.InQueue <- packet.BuildRealtimeChange(packet.C_PLAYER_REALTIME_CHANGE, 1, int32(player.MoveLeft), true)
	f.input.Update(tick)
	assert.True(t, f.deps.Match.Player(1).HoldsAction(player.MoveLeft))
}

func TestInputSystem_DisconnectsClosedSessions(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t)
	b := f.connect(t)
	drainOut(b)

	a.InQueue <- packet.BuildPlayerEvent(packet.C_PLAYER_EVENT, 1, int32(player.LaunchMissile))
	a.Close()
	f.input.Update(tick)

	assert.Nil(t, f.deps.Sessions.Get(a.ID))
	assert.Nil(t, f.deps.Match.Player(1))
	got := drainOut(b)
	assert.Empty(t, ofType(got, packet.S_PLAYER_EVENT), "input from a closed session is dropped")
	assert.Len(t, ofType(got, packet.S_PLAYER_DISCONNECT), 1)

	f.source.deadCh <- a.ID
	assert.NotPanics(t, func() { f.input.Update(tick) })
}

func TestSimulationSystem_AppliesHeldActions(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	start := f.deps.Match.World.GetAircraft(1).Position()

	f.deps.Match.Player(1).HandleNetworkRealtimeChange(player.MoveLeft, true)
	for i := 0; i < 10; i++ {
		f.sim.Update(tick)
	}
	assert.Less(t, f.deps.Match.World.GetAircraft(1).Position()[0], start[0])
	assert.Equal(t, uint64(10), f.deps.Match.Ticks())
}

func TestSimulationSystem_IdleWithoutSessions(t *testing.T) {
	f := newFixture(t)
	s := f.connect(t)
	f.sim.Update(tick)
	require.Equal(t, uint64(1), f.deps.Match.Ticks())

	s.Close()
	f.input.Update(tick)
	f.sim.Update(tick)
	assert.Zero(t, f.deps.Match.Ticks(), "an empty server resets the mission")
	assert.Zero(t, f.deps.Match.Count())
}

func TestSimulationSystem_MissionFailure(t *testing.T) {
	f := newFixture(t)
	s := f.connect(t)
	drainOut(s)

	f.deps.Match.World.GetAircraft(1).Remove()
	f.sim.Update(tick)

	assert.Equal(t, player.MissionFailure, f.deps.Match.Status())
	assert.Len(t, ofType(drainOut(s), packet.S_BROADCAST_MESSAGE), 1)

	ticks := f.deps.Match.Ticks()
	f.sim.Update(tick)
	assert.Equal(t, ticks, f.deps.Match.Ticks(), "a finished mission is frozen")
}

func TestSimulationSystem_MissionSuccess(t *testing.T) {
	f := newFixture(t)
	s := f.connect(t)
	drainOut(s)

	var ended []event.MissionEnded
	event.Subscribe(f.deps.Bus, func(e event.MissionEnded) { ended = append(ended, e) })

	f.deps.Match.World.SetWorldHeight(100)
	f.sim.Update(tick)

	assert.Equal(t, player.MissionSuccess, f.deps.Match.Status())
	assert.Len(t, ofType(drainOut(s), packet.S_MISSION_SUCCESS), 1)

	f.events.Update(tick)
	require.Len(t, ended, 1)
	assert.True(t, ended[0].Success)
}

func TestSimulationSystem_ExplosionDropsPickup(t *testing.T) {
	f := newFixture(t)
	s := f.connect(t)
	drainOut(s)

	f.sim.onGameAction(command.GameAction{Type: command.EnemyExplode, Aircraft: data.Raptor, Position: mgl64.Vec2{200, 4000}})

	got := ofType(drainOut(s), packet.S_SPAWN_PICKUP)
	require.Len(t, got, 1)
	assert.Equal(t, int32(data.FireRate), got[0].ReadInt32())
	assert.Equal(t, float32(200), got[0].ReadFloat32())
}

func TestSimulationSystem_RelaysEnemySpawns(t *testing.T) {
	f := newFixture(t)
	s := f.connect(t)
	drainOut(s)

	event.Emit(f.deps.Bus, event.EnemySpawned{Type: data.Avenger, Position: mgl64.Vec2{10, 20}})
	f.events.Update(tick)

	got := ofType(drainOut(s), packet.S_SPAWN_ENEMY)
	require.Len(t, got, 1)
	assert.Equal(t, int32(data.Avenger), got[0].ReadInt32())
}

func TestOutputSystem_SnapshotCadence(t *testing.T) {
	f := newFixture(t)
	s := f.connect(t)
	drainOut(s)

	var snapshots int
	for i := 0; i < 6; i++ {
		f.sim.Update(tick)
		f.output.Update(tick)
		for _, r := range ofType(drainOut(s), packet.S_UPDATE_CLIENT_STATE) {
			snap, err := world.DecodeSnapshot(r.Rest())
			require.NoError(t, err)
			assert.Zero(t, snap.Tick%2)
			require.Len(t, snap.Aircraft, 1)
			assert.Equal(t, int32(1), snap.Aircraft[0].Identifier)
			snapshots++
		}
	}
	assert.Equal(t, 3, snapshots)

	f.output.Update(tick)
	assert.Empty(t, ofType(drainOut(s), packet.S_UPDATE_CLIENT_STATE), "one snapshot per tick")
}

func TestStatsSystem_TalliesIntoResult(t *testing.T) {
	bus := event.NewBus()
	store := &recordingStore{}
	persistSys := NewPersistenceSystem(store, zap.NewNop())
	stats := NewStatsSystem(bus, persistSys, zap.NewNop())
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now := base
	stats.now = func() time.Time { return now }
	dispatch := NewEventDispatchSystem(bus)

	event.Emit(bus, event.PlayerConnected{Identifier: 2})
	event.Emit(bus, event.PlayerConnected{Identifier: 1})
	event.Emit(bus, event.EnemyDestroyed{Type: data.Raptor, Killer: 1})
	event.Emit(bus, event.EnemyDestroyed{Type: data.Raptor, Killer: 1})
	event.Emit(bus, event.EnemyDestroyed{Type: data.Avenger})
	event.Emit(bus, event.PickupCollected{Identifier: 2, Type: data.HealthRefill})
	event.Emit(bus, event.PlayerAircraftDestroyed{Identifier: 2})
	dispatch.Update(tick)

	now = base.Add(time.Minute)
	event.Emit(bus, event.MissionEnded{Success: true, Ticks: 3600})
	dispatch.Update(tick)
	persistSys.Update(tick)

	require.Len(t, store.saved, 1)
	res := store.saved[0]
	assert.True(t, res.Success)
	assert.Equal(t, int64(3600), res.Ticks)
	assert.Equal(t, base, res.StartedAt)
	assert.Equal(t, base.Add(time.Minute), res.EndedAt)
	assert.Equal(t, int32(3), res.EnemiesDestroyed)
	assert.Equal(t, int32(1), res.PickupsCollected)
	assert.Equal(t, []persist.MissionPlayer{
		{Identifier: 1, Kills: 2},
		{Identifier: 2, Pickups: 1, ShotDown: true},
	}, res.Players)

	// Tallies start over for the next mission.
	event.Emit(bus, event.MissionEnded{Ticks: 1})
	dispatch.Update(tick)
	persistSys.Update(tick)
	require.Len(t, store.saved, 2)
	assert.Zero(t, store.saved[1].EnemiesDestroyed)
	assert.Empty(t, store.saved[1].Players)
}

func TestPersistenceSystem_FailuresAreDropped(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	s := NewPersistenceSystem(store, zap.NewNop())
	s.Enqueue(&persist.MissionResult{})
	s.Update(tick)
	assert.Empty(t, s.pending)

	nop := NewPersistenceSystem(nil, zap.NewNop())
	nop.Enqueue(&persist.MissionResult{})
	nop.Flush()
	assert.Empty(t, nop.pending)
}
