package player

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
)

type sent struct {
	realtime   bool
	identifier int32
	action     Action
	enabled    bool
}

type recordingSender struct {
	sent []sent
	err  error
}

func (s *recordingSender) SendPlayerEvent(identifier int32, action Action) error {
	s.sent = append(s.sent, sent{identifier: identifier, action: action})
	return s.err
}

func (s *recordingSender) SendRealtimeChange(identifier int32, action Action, enabled bool) error {
	s.sent = append(s.sent, sent{realtime: true, identifier: identifier, action: action, enabled: enabled})
	return s.err
}

type heldKeys map[Key]bool

func (h heldKeys) IsKeyPressed(k Key) bool { return h[k] }

func drain(q *command.Queue) []command.Command {
	var out []command.Command
	for !q.IsEmpty() {
		out = append(out, q.Pop())
	}
	return out
}

func TestCommandFor(t *testing.T) {
	cases := []struct {
		action Action
		want   command.Action
	}{
		{MoveLeft, command.Move{Identifier: 3, Direction: mgl64.Vec2{-1, 0}}},
		{MoveRight, command.Move{Identifier: 3, Direction: mgl64.Vec2{1, 0}}},
		{MoveUp, command.Move{Identifier: 3, Direction: mgl64.Vec2{0, -1}}},
		{MoveDown, command.Move{Identifier: 3, Direction: mgl64.Vec2{0, 1}}},
		{Fire, command.Fire{Identifier: 3}},
		{LaunchMissile, command.LaunchMissile{Identifier: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.action.String(), func(t *testing.T) {
			c := commandFor(tc.action, 3)
			assert.Equal(t, category.PlayerAircraft, c.Category)
			assert.Equal(t, tc.want, c.Action)
		})
	}
	assert.Panics(t, func() { commandFor(ActionCount, 3) })
}

func TestAction_Realtime(t *testing.T) {
	for a := Action(0); a < ActionCount; a++ {
		assert.Equal(t, a != LaunchMissile, a.IsRealtime(), a.String())
	}
	assert.False(t, Action(-1).Valid())
	assert.Equal(t, "action(6)", ActionCount.String())
}

func TestKeyBinding(t *testing.T) {
	b := DefaultKeyBinding(1)
	a, ok := b.CheckAction(KeySpace)
	require.True(t, ok)
	assert.Equal(t, Fire, a)
	_, ok = b.CheckAction(KeyW)
	assert.False(t, ok)

	b.AssignKey(Fire, KeyF)
	assert.Equal(t, KeyF, b.AssignedKey(Fire))
	_, ok = b.CheckAction(KeySpace)
	assert.False(t, ok, "old key unbound")

	second := DefaultKeyBinding(2)
	assert.Equal(t, KeyR, second.AssignedKey(LaunchMissile))
	assert.Equal(t, KeyUnknown, (&KeyBinding{keys: map[Key]Action{}}).AssignedKey(Fire))
}

func TestKeyBinding_RealtimeActionsSkipsDiscrete(t *testing.T) {
	b := DefaultKeyBinding(1)
	held := heldKeys{KeyLeft: true, KeySpace: true, KeyM: true}
	assert.Equal(t, []Action{MoveLeft, Fire}, b.RealtimeActions(held))
}

func TestOfflineLocal_EventPushesDiscreteCommand(t *testing.T) {
	p := New(1, DefaultKeyBinding(1), nil, nil)
	q := command.NewQueue()

	p.HandleEvent(Event{Kind: KeyPressed, Key: KeyM}, q)
	p.HandleEvent(Event{Kind: KeyReleased, Key: KeyM}, q)
	p.HandleEvent(Event{Kind: KeyPressed, Key: KeySpace}, q)

	got := drain(q)
	require.Len(t, got, 1, "only the press of a discrete action becomes a command")
	assert.Equal(t, command.LaunchMissile{Identifier: 1}, got[0].Action)
}

func TestOfflineLocal_RealtimeInput(t *testing.T) {
	p := New(1, DefaultKeyBinding(1), nil, nil)
	q := command.NewQueue()

	p.HandleRealtimeInput(heldKeys{KeyUp: true, KeySpace: true}, q)
	got := drain(q)
	require.Len(t, got, 2)
	assert.Equal(t, command.Move{Identifier: 1, Direction: mgl64.Vec2{0, -1}}, got[0].Action)
	assert.Equal(t, command.Fire{Identifier: 1}, got[1].Action)
}

func TestOnlineLocal_SendsInsteadOfPushing(t *testing.T) {
	s := &recordingSender{}
	p := New(4, DefaultKeyBinding(1), s, nil)
	q := command.NewQueue()

	p.HandleEvent(Event{Kind: KeyPressed, Key: KeyM}, q)
	p.HandleEvent(Event{Kind: KeyPressed, Key: KeyLeft}, q)
	p.HandleEvent(Event{Kind: KeyReleased, Key: KeyLeft}, q)

	assert.True(t, q.IsEmpty())
	assert.Equal(t, []sent{
		{identifier: 4, action: LaunchMissile},
		{realtime: true, identifier: 4, action: MoveLeft, enabled: true},
		{realtime: true, identifier: 4, action: MoveLeft, enabled: false},
	}, s.sent)

	// Held keys still drive the local aircraft for prediction.
	p.HandleRealtimeInput(heldKeys{KeyRight: true}, q)
	assert.Equal(t, 1, q.Len())
}

func TestOnlineLocal_SendErrorIsNotFatal(t *testing.T) {
	s := &recordingSender{err: errors.New("closed")}
	p := New(4, DefaultKeyBinding(1), s, nil)
	q := command.NewQueue()
	assert.NotPanics(t, func() { p.HandleEvent(Event{Kind: KeyPressed, Key: KeyM}, q) })
	assert.Len(t, s.sent, 1)
}

func TestRemote_Proxies(t *testing.T) {
	p := New(2, nil, nil, nil)
	q := command.NewQueue()
	require.False(t, p.IsLocal())

	p.HandleEvent(Event{Kind: KeyPressed, Key: KeyM}, q)
	p.HandleRealtimeInput(heldKeys{KeyUp: true}, q)
	assert.True(t, q.IsEmpty(), "remote players ignore local input")

	p.HandleNetworkRealtimeChange(MoveDown, true)
	p.HandleNetworkRealtimeChange(Fire, true)
	p.HandleNetworkRealtimeChange(Fire, false)
	assert.True(t, p.HoldsAction(MoveDown))
	assert.False(t, p.HoldsAction(Fire))

	p.HandleRealtimeNetworkInput(q)
	p.HandleRealtimeNetworkInput(q)
	got := drain(q)
	require.Len(t, got, 2, "proxy repeats every frame")
	assert.Equal(t, command.Move{Identifier: 2, Direction: mgl64.Vec2{0, 1}}, got[0].Action)

	p.HandleNetworkEvent(LaunchMissile, q)
	got = drain(q)
	require.Len(t, got, 1)
	assert.Equal(t, command.LaunchMissile{Identifier: 2}, got[0].Action)

	assert.Panics(t, func() { p.HandleNetworkRealtimeChange(ActionCount, true) })
}

func TestLocal_IgnoresNetworkRealtimeInput(t *testing.T) {
	p := New(1, DefaultKeyBinding(1), nil, nil)
	p.HandleNetworkRealtimeChange(Fire, true)
	q := command.NewQueue()
	p.HandleRealtimeNetworkInput(q)
	assert.True(t, q.IsEmpty())
}

func TestDisableAllRealtimeActions(t *testing.T) {
	s := &recordingSender{}
	p := New(7, nil, s, nil)
	p.HandleNetworkRealtimeChange(MoveUp, true)

	p.DisableAllRealtimeActions()

	assert.False(t, p.HoldsAction(MoveUp))
	require.Len(t, s.sent, 5)
	for _, m := range s.sent {
		assert.True(t, m.realtime)
		assert.False(t, m.enabled)
		assert.NotEqual(t, LaunchMissile, m.action)
	}
}

func TestMissionStatus(t *testing.T) {
	p := New(1, nil, nil, nil)
	assert.Equal(t, MissionRunning, p.MissionStatus())
	p.SetMissionStatus(MissionFailure)
	assert.Equal(t, "failure", p.MissionStatus().String())
	assert.Equal(t, int32(1), p.Identifier())
}
