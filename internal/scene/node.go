package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/core/ecs"
	"github.com/skyraid/server/internal/media"
)

// Behavior is the per-variant capability surface of a node.
type Behavior interface {
	Category() category.Type
	// UpdateCurrent advances the node itself; children are updated afterwards.
	UpdateCurrent(n *Node, dt float64, q *command.Queue)
	// LocalBounds is the collision box in node space. Empty means the node
	// never collides.
	LocalBounds() Rect
	IsDestroyed() bool
	IsMarkedForRemoval() bool
	DrawCurrent(t media.Target, world mgl64.Mat3)
}

// Base is a no-op Behavior to embed in variants that only override a few methods.
type Base struct{}

func (Base) Category() category.Type                      { return category.None }
func (Base) UpdateCurrent(*Node, float64, *command.Queue) {}
func (Base) LocalBounds() Rect                            { return Rect{} }
func (Base) IsDestroyed() bool                            { return false }
func (Base) IsMarkedForRemoval() bool                     { return false }
func (Base) DrawCurrent(media.Target, mgl64.Mat3)         {}

// Group is a pure grouping node such as a scene layer.
type Group struct {
	Base
	Cat category.Type
}

func (g Group) Category() category.Type { return g.Cat }

// Node is one slot of the graph arena. Children are owned handles; Parent is
// a non-owning back-reference.
type Node struct {
	Transform
	Behavior Behavior

	id       ecs.EntityID
	parent   ecs.EntityID
	children []ecs.EntityID
	graph    *Graph
}

func (n *Node) ID() ecs.EntityID     { return n.id }
func (n *Node) Parent() ecs.EntityID { return n.parent }
func (n *Node) Graph() *Graph        { return n.graph }

// Children returns a copy of the child handles in order.
func (n *Node) Children() []ecs.EntityID {
	out := make([]ecs.EntityID, len(n.children))
	copy(out, n.children)
	return out
}

func (n *Node) Category() category.Type { return n.Behavior.Category() }

func (n *Node) SetPosition(p mgl64.Vec2) { n.Position = p }
func (n *Node) Move(d mgl64.Vec2)        { n.Position = n.Position.Add(d) }
func (n *Node) SetRotation(deg float64)  { n.Rotation = deg }

// WorldTransform composes every ancestor's transform with this node's.
// It is recomputed on every call.
func (n *Node) WorldTransform() mgl64.Mat3 {
	m := n.Matrix()
	for p := n.parent; !p.IsZero(); {
		pn, ok := n.graph.nodes.Get(p)
		if !ok {
			break
		}
		m = pn.Matrix().Mul3(m)
		p = pn.parent
	}
	return m
}

func (n *Node) WorldPosition() mgl64.Vec2 {
	return TransformPoint(n.WorldTransform(), mgl64.Vec2{})
}

// BoundingRect is the world-space AABB of the node's collision box.
func (n *Node) BoundingRect() Rect {
	lb := n.Behavior.LocalBounds()
	if lb.Empty() {
		return Rect{}
	}
	return TransformRect(n.WorldTransform(), lb)
}
