// Package scene implements the arena-backed scene graph: a tree of nodes
// addressed by generational handles, with depth-first update, draw, command
// broadcast, wreck pruning and pairwise collision enumeration.
package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/core/ecs"
	"github.com/skyraid/server/internal/media"
)

// Executor carries out a command on one matching node.
type Executor interface {
	Execute(cmd command.Command, n *Node, dt float64)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(cmd command.Command, n *Node, dt float64)

func (f ExecutorFunc) Execute(cmd command.Command, n *Node, dt float64) { f(cmd, n, dt) }

// Pair is an unordered collision pair stored with the lower handle first.
type Pair struct {
	A, B ecs.EntityID
}

func MakePair(a, b ecs.EntityID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Graph owns every node. Nodes are created detached and become part of the
// tree once attached under the root or a descendant of it.
type Graph struct {
	pool  *ecs.EntityPool
	nodes *ecs.Arena[Node]
	root  ecs.EntityID
}

func NewGraph() *Graph {
	g := &Graph{
		pool:  ecs.NewEntityPool(),
		nodes: ecs.NewArena[Node](),
	}
	g.root = g.New(Group{}).id
	return g
}

func (g *Graph) Root() ecs.EntityID { return g.root }

// Len returns the number of live nodes, attached or not.
func (g *Graph) Len() int { return g.nodes.Len() }

// Node resolves a handle. Stale handles report false.
func (g *Graph) Node(id ecs.EntityID) (*Node, bool) {
	if !g.pool.Alive(id) {
		return nil, false
	}
	return g.nodes.Get(id)
}

// Alive reports whether id still names a node.
func (g *Graph) Alive(id ecs.EntityID) bool {
	return g.pool.Alive(id) && g.nodes.Has(id)
}

// New allocates a detached node driven by b.
func (g *Graph) New(b Behavior) *Node {
	id := g.pool.Create()
	n := &Node{
		Transform: identityTransform(),
		Behavior:  b,
		id:        id,
		graph:     g,
	}
	g.nodes.Set(id, n)
	return n
}

func (g *Graph) mustNode(id ecs.EntityID) *Node {
	n, ok := g.Node(id)
	if !ok {
		panic(fmt.Sprintf("scene: stale node handle %#x", uint64(id)))
	}
	return n
}

// AttachChild transfers ownership of the detached node child to parent.
func (g *Graph) AttachChild(parent, child ecs.EntityID) {
	p := g.mustNode(parent)
	c := g.mustNode(child)
	if !c.parent.IsZero() || child == g.root {
		panic(fmt.Sprintf("scene: node %#x already has a parent", uint64(child)))
	}
	c.parent = parent
	p.children = append(p.children, child)
}

// DetachChild removes child from parent's children and hands ownership back
// to the caller. It returns the zero handle when child is not a child of parent.
func (g *Graph) DetachChild(parent, child ecs.EntityID) ecs.EntityID {
	p, ok := g.Node(parent)
	if !ok {
		return 0
	}
	for i, id := range p.children {
		if id != child {
			continue
		}
		p.children = append(p.children[:i], p.children[i+1:]...)
		if c, ok := g.Node(child); ok {
			c.parent = 0
		}
		return child
	}
	return 0
}

// Destroy frees id and its whole subtree, detaching it first if needed.
func (g *Graph) Destroy(id ecs.EntityID) {
	n, ok := g.Node(id)
	if !ok || id == g.root {
		return
	}
	if !n.parent.IsZero() {
		g.DetachChild(n.parent, id)
	}
	g.free(n)
}

func (g *Graph) free(n *Node) {
	for _, c := range n.children {
		if cn, ok := g.Node(c); ok {
			g.free(cn)
		}
	}
	n.children = nil
	g.nodes.Remove(n.id)
	g.pool.Destroy(n.id)
}

// Update runs every node's UpdateCurrent, parent before children.
func (g *Graph) Update(dt float64, q *command.Queue) {
	g.update(g.root, dt, q)
}

func (g *Graph) update(id ecs.EntityID, dt float64, q *command.Queue) {
	n, ok := g.Node(id)
	if !ok {
		return
	}
	n.Behavior.UpdateCurrent(n, dt, q)
	// range over the slice header taken now; nodes attached meanwhile wait a frame
	for _, c := range n.children {
		g.update(c, dt, q)
	}
}

// OnCommand hands cmd to exec for every node whose category intersects the
// command's mask, walking the whole tree.
func (g *Graph) OnCommand(cmd command.Command, dt float64, exec Executor) {
	g.onCommand(g.root, cmd, dt, exec)
}

func (g *Graph) onCommand(id ecs.EntityID, cmd command.Command, dt float64, exec Executor) {
	n, ok := g.Node(id)
	if !ok {
		return
	}
	if n.Category().Matches(cmd.Category) {
		exec.Execute(cmd, n, dt)
	}
	for _, c := range n.children {
		g.onCommand(c, cmd, dt, exec)
	}
}

// RemoveWrecks drops every node whose removal predicate holds, together with
// its subtree, and returns how many nodes were dropped directly.
func (g *Graph) RemoveWrecks() int {
	return g.removeWrecks(g.root)
}

func (g *Graph) removeWrecks(id ecs.EntityID) int {
	n, ok := g.Node(id)
	if !ok {
		return 0
	}
	removed := 0
	kept := n.children[:0]
	for _, c := range n.children {
		cn, ok := g.Node(c)
		if !ok {
			continue
		}
		if cn.Behavior.IsMarkedForRemoval() {
			g.free(cn)
			removed++
			continue
		}
		kept = append(kept, c)
	}
	n.children = kept
	for _, c := range n.children {
		removed += g.removeWrecks(c)
	}
	return removed
}

// CheckSceneCollision pairs every node under id with every node under
// pairing and records intersecting, non-destroyed, distinct pairs in out.
func (g *Graph) CheckSceneCollision(id, pairing ecs.EntityID, out map[Pair]struct{}) {
	g.checkNodeCollision(id, pairing, out)
	p, ok := g.Node(pairing)
	if !ok {
		return
	}
	for _, c := range p.children {
		g.CheckSceneCollision(id, c, out)
	}
}

func (g *Graph) checkNodeCollision(id, other ecs.EntityID, out map[Pair]struct{}) {
	n, ok := g.Node(id)
	if !ok {
		return
	}
	if id != other {
		if o, ok := g.Node(other); ok && collides(n, o) {
			out[MakePair(id, other)] = struct{}{}
		}
	}
	for _, c := range n.children {
		g.checkNodeCollision(c, other, out)
	}
}

func collides(a, b *Node) bool {
	if a.Behavior.IsDestroyed() || b.Behavior.IsDestroyed() {
		return false
	}
	return a.BoundingRect().Intersects(b.BoundingRect())
}

// CollisionPairs enumerates all colliding pairs of the tree, ordered by handle.
func (g *Graph) CollisionPairs() []Pair {
	set := make(map[Pair]struct{})
	g.CheckSceneCollision(g.root, g.root, set)
	pairs := make([]Pair, 0, len(set))
	for p := range set {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// Draw asks every node to render itself with its accumulated world transform.
func (g *Graph) Draw(t media.Target) {
	g.draw(g.root, t, mgl64.Ident3())
}

func (g *Graph) draw(id ecs.EntityID, t media.Target, parent mgl64.Mat3) {
	n, ok := g.Node(id)
	if !ok {
		return
	}
	world := parent.Mul3(n.Matrix())
	n.Behavior.DrawCurrent(t, world)
	for _, c := range n.children {
		g.draw(c, t, world)
	}
}
