package handler

import (
	"math"
	"math/rand"
	gonet "net"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/net/packet"
	"github.com/skyraid/server/internal/player"
	"github.com/skyraid/server/internal/world"
)

func newDeps(t *testing.T, maxPlayers int) *Deps {
	t.Helper()
	tables, err := data.LoadTables("../../data/yaml")
	require.NoError(t, err)
	bus := event.NewBus()

	opts := world.DefaultOptions()
	opts.Multiplayer = true
	opts.ScriptedEnemies = false
	factory := func() (*world.World, error) {
		return world.New(world.Config{
			Options: opts,
			Tables:  tables,
			Rand:    rand.New(rand.NewSource(1)),
			Bus:     bus,
		})
	}
	m, err := NewMatch(factory, maxPlayers, zap.NewNop())
	require.NoError(t, err)
	return &Deps{
		Log:      zap.NewNop(),
		Match:    m,
		Sessions: net.NewSessionStore(),
		Bus:      bus,
	}
}

var nextSessionID uint64

func newSession(t *testing.T, deps *Deps) *net.Session {
	t.Helper()
	a, _ := gonet.Pipe()
	nextSessionID++
	s := net.NewSession(net.NewStreamConn(a), nextSessionID, net.SessionOptions{InQueueSize: 8, OutQueueSize: 64}, zap.NewNop())
	t.Cleanup(s.Close)
	deps.Sessions.Add(s)
	return s
}

// sent flushes sess and returns the packets queued for it.
func sent(sess *net.Session) []*packet.Reader {
	sess.FlushOutput()
	var out []*packet.Reader
	for {
		select {
		case data := <-sess.OutQueue:
			out = append(out, packet.NewReader(data))
		default:
			return out
		}
	}
}

func types(rs []*packet.Reader) []int32 {
	out := make([]int32, len(rs))
	for i, r := range rs {
		out[i] = r.Type()
	}
	return out
}

func join(t *testing.T, deps *Deps) *net.Session {
	t.Helper()
	s := newSession(t, deps)
	HandleJoin(s, deps)
	require.False(t, s.IsClosed())
	return s
}

func TestHandleJoin(t *testing.T) {
	deps := newDeps(t, 4)

	first := join(t, deps)
	got := sent(first)
	require.Equal(t, []int32{packet.S_SPAWN_SELF, packet.S_INITIAL_STATE}, types(got))
	assert.Equal(t, int32(1), got[0].ReadInt32())
	_, _, others, err := packet.ReadInitialState(got[1])
	require.NoError(t, err)
	assert.Empty(t, others)
	assert.Equal(t, packet.StateInGame, first.State())
	assert.Equal(t, []int32{1}, first.Identifiers)

	second := join(t, deps)
	got = sent(second)
	require.Len(t, got, 2)
	assert.Equal(t, int32(2), got[0].ReadInt32())
	_, _, others, err = packet.ReadInitialState(got[1])
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, int32(1), others[0].Identifier)
	assert.Equal(t, int32(100), others[0].Hitpoints)

	got = sent(first)
	assert.Equal(t, []int32{packet.S_PLAYER_CONNECT, packet.S_BROADCAST_MESSAGE}, types(got))
	assert.Equal(t, int32(2), got[0].ReadInt32())

	assert.Equal(t, 2, deps.Match.Count())
	assert.Equal(t, 2, deps.Bus.Pending())
	assert.NotNil(t, deps.Match.World.GetAircraft(2))
}

func TestHandleJoin_Full(t *testing.T) {
	deps := newDeps(t, 1)
	join(t, deps)

	s := newSession(t, deps)
	HandleJoin(s, deps)
	assert.True(t, s.IsClosed())
	assert.Equal(t, 1, deps.Match.Count())
}

func TestHandleJoin_AfterMissionOver(t *testing.T) {
	deps := newDeps(t, 4)
	join(t, deps)
	require.True(t, deps.Match.Finish(player.MissionFailure))
	assert.False(t, deps.Match.Finish(player.MissionSuccess), "outcome is final")
	assert.Equal(t, player.MissionFailure, deps.Match.Player(1).MissionStatus())

	s := newSession(t, deps)
	HandleJoin(s, deps)
	assert.True(t, s.IsClosed())
	assert.Equal(t, "Mission already over", refusal(ErrMatchOver))
}

func TestHandlePlayerEvent(t *testing.T) {
	deps := newDeps(t, 4)
	a := join(t, deps)
	b := join(t, deps)
	sent(a)
	sent(b)

	q := deps.Match.World.CommandQueue()
	HandlePlayerEvent(a, packet.NewReader(packet.BuildPlayerEvent(packet.C_PLAYER_EVENT, 1, int32(player.LaunchMissile))), deps)
	require.Equal(t, 1, q.Len())
	c := q.Pop()
	assert.Equal(t, category.PlayerAircraft, c.Category)
	assert.Equal(t, command.LaunchMissile{Identifier: 1}, c.Action)

	relayed := sent(b)
	require.Len(t, relayed, 1)
	assert.Equal(t, packet.S_PLAYER_EVENT, relayed[0].Type())
	assert.Empty(t, sent(a), "sender is not echoed")

	// Another session's aircraft, unknown actions and truncated packets are dropped.
	HandlePlayerEvent(a, packet.NewReader(packet.BuildPlayerEvent(packet.C_PLAYER_EVENT, 2, int32(player.Fire))), deps)
	HandlePlayerEvent(a, packet.NewReader(packet.BuildPlayerEvent(packet.C_PLAYER_EVENT, 1, 99)), deps)
	HandlePlayerEvent(a, packet.NewReader([]byte{0, 0, 0, 0, 1}), deps)
	assert.True(t, q.IsEmpty())
	assert.Empty(t, sent(b))
}

func TestHandleRealtimeChange(t *testing.T) {
	deps := newDeps(t, 4)
	a := join(t, deps)
	b := join(t, deps)
	sent(b)

	HandleRealtimeChange(a, packet.NewReader(packet.BuildRealtimeChange(packet.C_PLAYER_REALTIME_CHANGE, 1, int32(player.MoveLeft), true)), deps)
	assert.True(t, deps.Match.Player(1).HoldsAction(player.MoveLeft))

	relayed := sent(b)
	require.Len(t, relayed, 1)
	r := relayed[0]
	assert.Equal(t, packet.S_PLAYER_REALTIME_CHANGE, r.Type())
	assert.Equal(t, int32(1), r.ReadInt32())
	assert.Equal(t, int32(player.MoveLeft), r.ReadInt32())
	assert.True(t, r.ReadBool())

	// Missing enabled flag.
	HandleRealtimeChange(a, packet.NewReader(packet.BuildPlayerEvent(packet.C_PLAYER_REALTIME_CHANGE, 1, int32(player.Fire))), deps)
	assert.False(t, deps.Match.Player(1).HoldsAction(player.Fire))
}

func TestHandleRequestCoopPartner(t *testing.T) {
	deps := newDeps(t, 4)
	a := join(t, deps)
	b := join(t, deps)
	sent(a)
	sent(b)

	HandleRequestCoopPartner(a, nil, deps)
	got := sent(a)
	require.Len(t, got, 1)
	assert.Equal(t, packet.S_ACCEPT_COOP_PARTNER, got[0].Type())
	assert.Equal(t, int32(3), got[0].ReadInt32())
	assert.Equal(t, []int32{1, 3}, a.Identifiers)
	assert.Equal(t, []int32{packet.S_PLAYER_CONNECT}, types(sent(b)))
}

func TestHandlePositionUpdate(t *testing.T) {
	deps := newDeps(t, 4)
	a := join(t, deps)
	join(t, deps)
	other := deps.Match.World.GetAircraft(2).Position()

	HandlePositionUpdate(a, packet.NewReader(packet.BuildPositionUpdate([]packet.Position{
		{Identifier: 1, X: 300, Y: 4500},
		{Identifier: 2, X: 10, Y: 10},
	})), deps)

	assert.Equal(t, mgl64.Vec2{300, 4500}, deps.Match.World.GetAircraft(1).Position())
	assert.Equal(t, other, deps.Match.World.GetAircraft(2).Position())
}

func TestHandlePositionUpdate_DropsNonFinite(t *testing.T) {
	deps := newDeps(t, 4)
	a := join(t, deps)
	start := deps.Match.World.GetAircraft(1).Position()

	nan := float32(math.NaN())
	inf := float32(math.Inf(-1))
	for _, pos := range []packet.Position{
		{Identifier: 1, X: nan, Y: nan},
		{Identifier: 1, X: 300, Y: inf},
	} {
		HandlePositionUpdate(a, packet.NewReader(packet.BuildPositionUpdate([]packet.Position{pos})), deps)
		assert.Equal(t, start, deps.Match.World.GetAircraft(1).Position())
	}

	deps.Match.World.Update(1.0 / 60)
	assert.False(t, deps.Match.World.HasPlayerReachedEnd())
}

func TestHandleDisconnect(t *testing.T) {
	deps := newDeps(t, 4)
	a := join(t, deps)
	b := join(t, deps)
	sent(b)

	a.Close()
	HandleDisconnect(a, deps)

	assert.Nil(t, deps.Match.World.GetAircraft(1))
	assert.Nil(t, deps.Match.Player(1))
	assert.Equal(t, 1, deps.Match.Count())
	got := sent(b)
	require.Equal(t, []int32{packet.S_PLAYER_DISCONNECT, packet.S_BROADCAST_MESSAGE}, types(got))
	assert.Equal(t, int32(1), got[0].ReadInt32())
	assert.Empty(t, a.Identifiers)
}

func TestRegisterAll_StateGates(t *testing.T) {
	deps := newDeps(t, 4)
	reg := packet.NewRegistry(zap.NewNop())
	RegisterAll(reg, deps)

	s := newSession(t, deps)
	err := reg.Dispatch(s, s.State(), packet.BuildPlayerEvent(packet.C_PLAYER_EVENT, 1, 0))
	assert.Error(t, err, "input before joining")

	HandleJoin(s, deps)
	sent(s)
	require.NoError(t, reg.Dispatch(s, s.State(), packet.BuildPlayerEvent(packet.C_PLAYER_EVENT, 1, int32(player.Fire))))
	assert.Equal(t, 1, deps.Match.World.CommandQueue().Len())

	require.NoError(t, reg.Dispatch(s, s.State(), packet.BuildQuit()))
	assert.True(t, s.IsClosed())
}

func TestMatch_ResetRestartsIdentifiers(t *testing.T) {
	deps := newDeps(t, 4)
	join(t, deps)
	join(t, deps)
	deps.Match.Advance()
	old := deps.Match.World

	require.NoError(t, deps.Match.Reset())
	assert.NotSame(t, old, deps.Match.World)
	assert.Zero(t, deps.Match.Count())
	assert.Zero(t, deps.Match.Ticks())
	assert.Equal(t, player.MissionRunning, deps.Match.Status())

	s := join(t, deps)
	assert.Equal(t, []int32{1}, s.Identifiers)
}
