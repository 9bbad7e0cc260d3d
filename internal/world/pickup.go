package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/media"
	"github.com/skyraid/server/internal/scene"
)

// Pickup is a collectable power-up.
type Pickup struct {
	Body
	typ   data.PickupType
	stats *data.PickupData
}

func NewPickup(typ data.PickupType, table *data.PickupTable) *Pickup {
	return &Pickup{
		Body:  newBody(1),
		typ:   typ,
		stats: table.Get(typ),
	}
}

func (p *Pickup) Type() data.PickupType { return p.typ }

func (p *Pickup) Category() category.Type { return category.Pickup }

// Apply grants the pickup's effect to a.
func (p *Pickup) Apply(a *Aircraft) {
	switch p.typ {
	case data.HealthRefill:
		a.Repair(p.stats.Amount)
	case data.MissileRefill:
		a.CollectMissiles(p.stats.Amount)
	case data.FireSpread:
		a.IncreaseSpread()
	case data.FireRate:
		a.IncreaseFireRate()
	}
}

func (p *Pickup) Remove() { p.Destroy() }

func (p *Pickup) IsMarkedForRemoval() bool { return p.destroyed }

func (p *Pickup) LocalBounds() scene.Rect {
	r := p.stats.TextureRect
	return scene.CenteredRect(float64(r.Width), float64(r.Height))
}

func (p *Pickup) UpdateCurrent(n *scene.Node, dt float64, q *command.Queue) {
	if !p.destroyed {
		p.integrate(n, dt)
	}
}

func (p *Pickup) DrawCurrent(t media.Target, world mgl64.Mat3) {
	t.DrawSprite(p.stats.TextureID, p.stats.TextureRect, world)
}
