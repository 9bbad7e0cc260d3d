package player

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
)

// Action is something a player can ask their aircraft to do. The numeric
// values travel on the wire.
type Action int32

const (
	MoveLeft Action = iota
	MoveRight
	MoveUp
	MoveDown
	Fire
	LaunchMissile
	ActionCount
)

var actionNames = [ActionCount]string{"move_left", "move_right", "move_up", "move_down", "fire", "launch_missile"}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("action(%d)", int32(a))
	}
	return actionNames[a]
}

// Valid reports whether a is a known action. Wire input must be checked
// with Valid before it reaches a Player.
func (a Action) Valid() bool { return a >= 0 && a < ActionCount }

// IsRealtime reports whether the action repeats every frame while its key
// is held, as opposed to firing once per key press.
func (a Action) IsRealtime() bool {
	switch a {
	case MoveLeft, MoveRight, MoveUp, MoveDown, Fire:
		return true
	}
	return false
}

// commandFor builds the command that performs action for the aircraft with identifier.
func commandFor(action Action, identifier int32) command.Command {
	var act command.Action
	switch action {
	case MoveLeft:
		act = command.Move{Identifier: identifier, Direction: mgl64.Vec2{-1, 0}}
	case MoveRight:
		act = command.Move{Identifier: identifier, Direction: mgl64.Vec2{1, 0}}
	case MoveUp:
		act = command.Move{Identifier: identifier, Direction: mgl64.Vec2{0, -1}}
	case MoveDown:
		act = command.Move{Identifier: identifier, Direction: mgl64.Vec2{0, 1}}
	case Fire:
		act = command.Fire{Identifier: identifier}
	case LaunchMissile:
		act = command.LaunchMissile{Identifier: identifier}
	default:
		panic(fmt.Sprintf("player: %s out of range", action))
	}
	return command.Command{Category: category.PlayerAircraft, Action: act}
}
