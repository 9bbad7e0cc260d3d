package event

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/core/ecs"
	"github.com/skyraid/server/internal/data"
)

// Gameplay events, emitted by the world during a tick.

type EnemySpawned struct {
	Node     ecs.EntityID
	Type     data.AircraftType
	Position mgl64.Vec2
}

type EnemyDestroyed struct {
	Node     ecs.EntityID
	Type     data.AircraftType
	Position mgl64.Vec2
	// Killer is the identifier of the player credited, or 0.
	Killer int32
}

type PlayerAircraftDestroyed struct {
	Identifier int32
	Position   mgl64.Vec2
}

type PickupCollected struct {
	Identifier int32
	Type       data.PickupType
}

// Session events, emitted by the server systems.

type PlayerConnected struct {
	Identifier int32
	SessionID  uint64
}

type PlayerDisconnected struct {
	Identifier int32
	SessionID  uint64
}

// MissionEnded is emitted once when the mission succeeds or every player is down.
type MissionEnded struct {
	Success bool
	Ticks   uint64
}
