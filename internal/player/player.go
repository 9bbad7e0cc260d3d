// Package player turns key input and network messages into aircraft commands.
package player

import (
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/command"
)

// MissionStatus is the outcome as seen by one player.
type MissionStatus int

const (
	MissionRunning MissionStatus = iota
	MissionSuccess
	MissionFailure
)

func (s MissionStatus) String() string {
	switch s {
	case MissionRunning:
		return "running"
	case MissionSuccess:
		return "success"
	case MissionFailure:
		return "failure"
	}
	return "unknown"
}

// EventKind distinguishes key presses from releases.
type EventKind int

const (
	KeyPressed EventKind = iota
	KeyReleased
)

// Event is one discrete key event from the input backend.
type Event struct {
	Kind EventKind
	Key  Key
}

// Sender carries a local player's input to the server.
type Sender interface {
	SendPlayerEvent(identifier int32, action Action) error
	SendRealtimeChange(identifier int32, action Action, enabled bool) error
}

// Player drives one aircraft. A player with a key binding is local; one
// without is a remote proxy fed from the network. A player without a Sender
// is offline and pushes its commands straight into the queue.
type Player struct {
	identifier int32
	binding    *KeyBinding
	sender     Sender
	proxies    [ActionCount]bool
	status     MissionStatus
	log        *zap.Logger
}

func New(identifier int32, binding *KeyBinding, sender Sender, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{
		identifier: identifier,
		binding:    binding,
		sender:     sender,
		log:        log.With(zap.Int32("player", identifier)),
	}
}

func (p *Player) Identifier() int32 { return p.identifier }

// IsLocal reports whether the player has a key binding.
func (p *Player) IsLocal() bool { return p.binding != nil }

func (p *Player) SetMissionStatus(s MissionStatus) { p.status = s }
func (p *Player) MissionStatus() MissionStatus     { return p.status }

// HandleEvent reacts to a discrete key event. Online, presses of discrete
// actions and changes of realtime actions are sent to the server; offline,
// discrete actions become commands at once.
func (p *Player) HandleEvent(ev Event, q *command.Queue) {
	if p.binding == nil {
		return
	}
	action, ok := p.binding.CheckAction(ev.Key)
	if !ok {
		return
	}

	if !action.IsRealtime() {
		if ev.Kind != KeyPressed {
			return
		}
		if p.sender == nil {
			q.Push(commandFor(action, p.identifier))
			return
		}
		if err := p.sender.SendPlayerEvent(p.identifier, action); err != nil {
			p.log.Warn("send player event", zap.Stringer("action", action), zap.Error(err))
		}
		return
	}

	if p.sender != nil {
		if err := p.sender.SendRealtimeChange(p.identifier, action, ev.Kind == KeyPressed); err != nil {
			p.log.Warn("send realtime change", zap.Stringer("action", action), zap.Error(err))
		}
	}
}

// HandleRealtimeInput pushes a command for every held realtime key of a
// local player.
func (p *Player) HandleRealtimeInput(keys KeyState, q *command.Queue) {
	if p.binding == nil {
		return
	}
	for _, a := range p.binding.RealtimeActions(keys) {
		q.Push(commandFor(a, p.identifier))
	}
}

// HandleRealtimeNetworkInput pushes a command for every realtime action a
// remote player currently holds.
func (p *Player) HandleRealtimeNetworkInput(q *command.Queue) {
	if p.IsLocal() {
		return
	}
	for a := Action(0); a < ActionCount; a++ {
		if p.proxies[a] && a.IsRealtime() {
			q.Push(commandFor(a, p.identifier))
		}
	}
}

// HandleNetworkEvent performs a discrete action received from the network.
func (p *Player) HandleNetworkEvent(action Action, q *command.Queue) {
	q.Push(commandFor(action, p.identifier))
}

// HandleNetworkRealtimeChange records whether a remote player holds action.
func (p *Player) HandleNetworkRealtimeChange(action Action, enabled bool) {
	if !action.Valid() {
		panic("player: realtime change for " + action.String())
	}
	p.proxies[action] = enabled
}

// HoldsAction reports the last realtime state received for action.
func (p *Player) HoldsAction(action Action) bool {
	return action.Valid() && p.proxies[action]
}

// DisableAllRealtimeActions tells the server every realtime action was
// released, typically when the window loses focus.
func (p *Player) DisableAllRealtimeActions() {
	for a := Action(0); a < ActionCount; a++ {
		p.proxies[a] = false
		if !a.IsRealtime() || p.sender == nil {
			continue
		}
		if err := p.sender.SendRealtimeChange(p.identifier, a, false); err != nil {
			p.log.Warn("send realtime release", zap.Stringer("action", a), zap.Error(err))
		}
	}
}
