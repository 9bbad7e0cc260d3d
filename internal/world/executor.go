package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/core/ecs"
	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/media"
	"github.com/skyraid/server/internal/scene"
)

// execute runs one command on one matching node.
func (w *World) execute(cmd command.Command, n *scene.Node, dt float64) {
	switch act := cmd.Action.(type) {
	case command.Move:
		if a := playerWithID(n, act.Identifier); a != nil {
			a.Accelerate(act.Direction.Mul(a.MaxSpeed()))
		}
	case command.Fire:
		if a := playerWithID(n, act.Identifier); a != nil {
			a.Fire()
		}
	case command.LaunchMissile:
		if a := playerWithID(n, act.Identifier); a != nil {
			a.LaunchMissile()
		}
	case command.SpawnBullets:
		if src, srcNode := w.source(act.Source); src != nil {
			w.createBullets(n, src, srcNode)
		}
	case command.SpawnMissile:
		if src, srcNode := w.source(act.Source); src != nil {
			w.createProjectile(n, src, srcNode, data.Missile, 0, 0.5)
		}
	case command.DropPickup:
		if src, srcNode := w.source(act.Source); src != nil {
			w.dropPickup(n, src, srcNode)
		}
	case command.CollectEnemies:
		if a, ok := n.Behavior.(*Aircraft); ok && !a.IsAllied() && !a.IsDestroyed() {
			w.activeEnemies = append(w.activeEnemies, n.ID())
		}
	case command.GuideMissiles:
		if p, ok := n.Behavior.(*Projectile); ok && p.IsGuided() {
			w.guide(p, n)
		}
	case command.RemoveOutsideBattlefield:
		if e, ok := n.Behavior.(Entity); ok && !w.BattlefieldBounds().Intersects(n.BoundingRect()) {
			e.Remove()
		}
	case command.PlaySound:
		if s, ok := n.Behavior.(*SoundNode); ok {
			s.PlaySound(act.Effect, act.Position)
		}
	case command.NotifyNetwork:
		if nn, ok := n.Behavior.(*NetworkNode); ok {
			nn.NotifyGameAction(act.Action)
		}
	default:
		panic(fmt.Sprintf("world: unhandled command %T", cmd.Action))
	}
}

func playerWithID(n *scene.Node, identifier int32) *Aircraft {
	a, ok := n.Behavior.(*Aircraft)
	if !ok || a.identifier != identifier {
		return nil
	}
	return a
}

// source resolves the aircraft that issued a spawn command. It may already
// have been pruned, in which case nothing spawns.
func (w *World) source(id ecs.EntityID) (*Aircraft, *scene.Node) {
	n, ok := w.graph.Node(id)
	if !ok {
		return nil, nil
	}
	a, ok := n.Behavior.(*Aircraft)
	if !ok {
		return nil, nil
	}
	return a, n
}

// spreadOffsets are the x offsets, in sprite widths, per spread level.
var spreadOffsets = [maxSpreadLevel][]float64{
	{0},
	{-0.5, 0.5},
	{-0.5, 0, 0.5},
}

func (w *World) createBullets(layer *scene.Node, src *Aircraft, srcNode *scene.Node) {
	typ := data.EnemyBullet
	if src.IsAllied() {
		typ = data.AlliedBullet
	}
	for _, x := range spreadOffsets[src.spreadLevel-1] {
		w.createProjectile(layer, src, srcNode, typ, x, 0.5)
	}
}

// createProjectile fires typ from src. Offsets are fractions of the source
// sprite size, mirrored for allied aircraft which fly up the screen.
func (w *World) createProjectile(layer *scene.Node, src *Aircraft, srcNode *scene.Node, typ data.ProjectileType, xOffset, yOffset float64) {
	p := NewProjectile(typ, w.tables.Projectiles)
	p.owner = src.identifier

	size := src.spriteSize()
	offset := mgl64.Vec2{xOffset * size[0], yOffset * size[1]}
	sign := 1.0
	if src.IsAllied() {
		sign = -1
	}
	pos := srcNode.WorldPosition().Add(offset.Mul(sign))
	w.spawn(layer.ID(), p, pos)
	p.SetVelocity(mgl64.Vec2{0, p.MaxSpeed() * sign})
}

func (w *World) dropPickup(layer *scene.Node, src *Aircraft, srcNode *scene.Node) {
	pos := srcNode.WorldPosition()
	typ, ok := w.policy.DropPickup(src.typ, pos)
	if !ok {
		return
	}
	w.spawn(layer.ID(), NewPickup(typ, w.tables.Pickups), pos)
}

// guide steers p toward the nearest enemy collected this frame.
func (w *World) guide(p *Projectile, n *scene.Node) {
	from := n.WorldPosition()
	best := math.Inf(1)
	var target *scene.Node
	for _, id := range w.activeEnemies {
		en, ok := w.graph.Node(id)
		if !ok || en.Behavior.IsDestroyed() {
			continue
		}
		if d := scene.Distance(from, en.WorldPosition()); d < best {
			best = d
			target = en
		}
	}
	if target != nil {
		p.GuideTowards(target.WorldPosition())
	}
}

// matchCategories orders a pair so that the first node matches c1 and the
// second c2.
func matchCategories(a, b *scene.Node, c1, c2 category.Type) (*scene.Node, *scene.Node, bool) {
	ca, cb := a.Category(), b.Category()
	switch {
	case ca.Matches(c1) && cb.Matches(c2):
		return a, b, true
	case cb.Matches(c1) && ca.Matches(c2):
		return b, a, true
	}
	return nil, nil, false
}

func (w *World) handleCollisions() {
	for _, pair := range w.graph.CollisionPairs() {
		a, okA := w.graph.Node(pair.A)
		b, okB := w.graph.Node(pair.B)
		if !okA || !okB || a.Behavior.IsDestroyed() || b.Behavior.IsDestroyed() {
			continue
		}

		if first, second, ok := matchCategories(a, b, category.PlayerAircraft, category.EnemyAircraft); ok {
			player := first.Behavior.(*Aircraft)
			enemy := second.Behavior.(*Aircraft)
			player.Damage(enemy.Hitpoints())
			enemy.Destroy()
			w.enemyDestroyed(enemy, second, player.identifier)
			w.playerHit(player, first)
		} else if first, second, ok := matchCategories(a, b, category.PlayerAircraft, category.Pickup); ok {
			player := first.Behavior.(*Aircraft)
			pickup := second.Behavior.(*Pickup)
			pickup.Apply(player)
			pickup.Destroy()
			player.playLocalSound(first, w.queue, media.SoundCollectPickup)
			if w.bus != nil {
				event.Emit(w.bus, event.PickupCollected{Identifier: player.identifier, Type: pickup.typ})
			}
		} else if first, second, ok := w.matchProjectileHit(a, b); ok {
			aircraft := first.Behavior.(*Aircraft)
			projectile := second.Behavior.(*Projectile)
			aircraft.Damage(projectile.Damage())
			projectile.Destroy()
			if aircraft.IsAllied() {
				w.playerHit(aircraft, first)
			} else if aircraft.IsDestroyed() {
				w.enemyDestroyed(aircraft, first, projectile.owner)
			}
		}
	}
}

func (w *World) matchProjectileHit(a, b *scene.Node) (*scene.Node, *scene.Node, bool) {
	if first, second, ok := matchCategories(a, b, category.PlayerAircraft, category.EnemyProjectile); ok {
		return first, second, true
	}
	return matchCategories(a, b, category.EnemyAircraft, category.AlliedProjectile)
}

func (w *World) enemyDestroyed(enemy *Aircraft, n *scene.Node, killer int32) {
	if w.bus == nil {
		return
	}
	event.Emit(w.bus, event.EnemyDestroyed{
		Node:     n.ID(),
		Type:     enemy.typ,
		Position: n.WorldPosition(),
		Killer:   killer,
	})
}

func (w *World) playerHit(player *Aircraft, n *scene.Node) {
	if !player.IsDestroyed() {
		return
	}
	w.log.Info("player aircraft destroyed", zap.Int32("player", player.identifier))
	if w.bus != nil {
		event.Emit(w.bus, event.PlayerAircraftDestroyed{Identifier: player.identifier, Position: n.WorldPosition()})
	}
}
