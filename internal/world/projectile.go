package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/media"
	"github.com/skyraid/server/internal/scene"
)

// approachRate is how hard a guided projectile turns toward its target.
const approachRate = 200.0

// Projectile is a bullet or missile.
type Projectile struct {
	Body
	typ             data.ProjectileType
	stats           *data.ProjectileData
	targetDirection mgl64.Vec2
	owner           int32 // identifier of the firing player, 0 for enemies
}

func NewProjectile(typ data.ProjectileType, table *data.ProjectileTable) *Projectile {
	return &Projectile{
		Body:  newBody(1),
		typ:   typ,
		stats: table.Get(typ),
	}
}

func (p *Projectile) Type() data.ProjectileType { return p.typ }
func (p *Projectile) Damage() int32             { return p.stats.Damage }
func (p *Projectile) MaxSpeed() float64         { return p.stats.Speed }
func (p *Projectile) Owner() int32              { return p.owner }

// IsGuided reports whether the projectile steers toward enemies.
func (p *Projectile) IsGuided() bool { return p.typ == data.Missile }

func (p *Projectile) Category() category.Type {
	if p.typ == data.EnemyBullet {
		return category.EnemyProjectile
	}
	return category.AlliedProjectile
}

// GuideTowards aims a guided projectile at target, in world coordinates.
func (p *Projectile) GuideTowards(target mgl64.Vec2) {
	if !p.IsGuided() {
		return
	}
	p.targetDirection = scene.UnitVector(target.Sub(p.WorldPosition()))
}

// TargetDirection is the unit vector the projectile is steering along.
func (p *Projectile) TargetDirection() mgl64.Vec2 { return p.targetDirection }

func (p *Projectile) Remove() { p.Destroy() }

func (p *Projectile) IsMarkedForRemoval() bool { return p.destroyed }

func (p *Projectile) LocalBounds() scene.Rect {
	r := p.stats.TextureRect
	return scene.CenteredRect(float64(r.Width), float64(r.Height))
}

func (p *Projectile) UpdateCurrent(n *scene.Node, dt float64, q *command.Queue) {
	if p.destroyed {
		return
	}
	if p.IsGuided() {
		steer := p.targetDirection.Mul(approachRate * dt).Add(p.velocity)
		v := scene.UnitVector(steer).Mul(p.MaxSpeed())
		p.SetVelocity(v)
		n.SetRotation(mgl64.RadToDeg(math.Atan2(v[1], v[0])) + 90)
	}
	p.integrate(n, dt)
}

func (p *Projectile) DrawCurrent(t media.Target, world mgl64.Mat3) {
	t.DrawSprite(p.stats.TextureID, p.stats.TextureRect, world)
}
