// Package command holds the typed messages that gameplay code broadcasts into
// the scene graph. A Command pairs a category mask with one Action; the scene
// graph visits every node whose category intersects the mask and hands the
// action to an executor that switches on its concrete type.
package command

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/ecs"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/media"
)

// Action is the closed set of command payloads.
type Action interface {
	action()
}

// Command is a value type: it never owns the nodes it acts on.
type Command struct {
	Category category.Type
	Action   Action
}

func (c Command) String() string {
	return fmt.Sprintf("%T@%b", c.Action, c.Category)
}

// Move accelerates the player aircraft with Identifier by Direction * max speed.
type Move struct {
	Identifier int32
	Direction  mgl64.Vec2
}

// Fire requests continuous gunfire from the player aircraft with Identifier.
type Fire struct {
	Identifier int32
}

// LaunchMissile requests one missile from the player aircraft with Identifier.
type LaunchMissile struct {
	Identifier int32
}

// SpawnBullets attaches the gunfire of Source to the receiving node.
type SpawnBullets struct {
	Source ecs.EntityID
}

// SpawnMissile attaches one guided missile fired by Source to the receiving node.
type SpawnMissile struct {
	Source ecs.EntityID
}

// DropPickup attaches a pickup at Source's position to the receiving node.
type DropPickup struct {
	Source ecs.EntityID
}

// CollectEnemies records every live receiving enemy as a guidance candidate.
type CollectEnemies struct{}

// GuideMissiles steers every guided receiving projectile toward the nearest
// collected enemy.
type GuideMissiles struct{}

// RemoveOutsideBattlefield removes receiving entities that left the battlefield.
type RemoveOutsideBattlefield struct{}

// PlaySound asks the sound node to play Effect at Position.
type PlaySound struct {
	Effect   media.SoundEffect
	Position mgl64.Vec2
}

// NotifyNetwork hands a game action to the network node.
type NotifyNetwork struct {
	Action GameAction
}

func (Move) action()                     {}
func (Fire) action()                     {}
func (LaunchMissile) action()            {}
func (SpawnBullets) action()             {}
func (SpawnMissile) action()             {}
func (DropPickup) action()               {}
func (CollectEnemies) action()           {}
func (GuideMissiles) action()            {}
func (RemoveOutsideBattlefield) action() {}
func (PlaySound) action()                {}
func (NotifyNetwork) action()            {}

// GameActionType enumerates events the simulation reports to the network layer.
type GameActionType int32

const (
	EnemyExplode GameActionType = iota
)

// GameAction is a network-relevant event with its world position.
type GameAction struct {
	Type     GameActionType
	Aircraft data.AircraftType // the aircraft that exploded
	Position mgl64.Vec2
}
