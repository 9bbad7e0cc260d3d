package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/scene"
)

// Body is the state every entity variant shares: velocity and hitpoints.
// Hitpoints never go below zero, and zero hitpoints means destroyed.
type Body struct {
	node      *scene.Node
	velocity  mgl64.Vec2
	hitpoints int32
	destroyed bool
}

func newBody(hitpoints int32) Body {
	return Body{hitpoints: hitpoints}
}

// Node is the scene node the body was attached to, nil before spawning.
func (b *Body) Node() *scene.Node { return b.node }

func (b *Body) bind(n *scene.Node) { b.node = n }

func (b *Body) Velocity() mgl64.Vec2     { return b.velocity }
func (b *Body) SetVelocity(v mgl64.Vec2) { b.velocity = v }
func (b *Body) Accelerate(v mgl64.Vec2)  { b.velocity = b.velocity.Add(v) }

func (b *Body) Hitpoints() int32  { return b.hitpoints }
func (b *Body) IsDestroyed() bool { return b.destroyed }

// SetHitpoints overwrites the hitpoints of a live body. A non-positive value
// destroys it. Destroyed bodies are not revived.
func (b *Body) SetHitpoints(points int32) {
	if b.destroyed {
		return
	}
	if points <= 0 {
		b.Destroy()
		return
	}
	b.hitpoints = points
}

// Repair adds points to a live body.
func (b *Body) Repair(points int32) {
	if b.destroyed || points <= 0 {
		return
	}
	b.hitpoints += points
}

// Damage subtracts points, destroying the body once it reaches zero.
func (b *Body) Damage(points int32) {
	if b.destroyed || points <= 0 {
		return
	}
	b.hitpoints -= points
	if b.hitpoints <= 0 {
		b.Destroy()
	}
}

func (b *Body) Destroy() {
	b.hitpoints = 0
	b.destroyed = true
}

// Position is the local position of the node, or zero before spawning.
func (b *Body) Position() mgl64.Vec2 {
	if b.node == nil {
		return mgl64.Vec2{}
	}
	return b.node.Position
}

func (b *Body) WorldPosition() mgl64.Vec2 {
	if b.node == nil {
		return mgl64.Vec2{}
	}
	return b.node.WorldPosition()
}

func (b *Body) integrate(n *scene.Node, dt float64) {
	n.Move(b.velocity.Mul(dt))
}

// Entity is implemented by every variant that carries a Body.
type Entity interface {
	scene.Behavior
	body() *Body
	// Remove destroys the entity and makes it eligible for pruning at once.
	Remove()
}

func (b *Body) body() *Body { return b }
