package world

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/media"
	"github.com/skyraid/server/internal/scene"
)

const (
	maxFireRate     = 10
	maxSpreadLevel  = 3
	startMissiles   = 2
	explosionFrames = 16
	explosionFrame  = 256
	explosionLength = 1.0 // seconds
)

// Aircraft is a player or enemy plane.
type Aircraft struct {
	Body
	typ   data.AircraftType
	stats *data.AircraftData
	rng   *rand.Rand

	identifier int32

	firing           bool
	launchingMissile bool
	fireCountdown    float64
	fireRate         int32
	spreadLevel      int32
	missileAmmo      int32

	showExplosion  bool
	explosionBegan bool
	explosionTime  float64
	spawnedPickup  bool
	pickupsEnabled bool

	travelled      float64
	directionIndex int
}

// NewAircraft builds an aircraft of typ from its stat row. rng picks the
// explosion sound; nil gets a freshly seeded source.
func NewAircraft(typ data.AircraftType, table *data.AircraftTable, rng *rand.Rand) *Aircraft {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	stats := table.Get(typ)
	return &Aircraft{
		Body:           newBody(stats.Hitpoints),
		typ:            typ,
		stats:          stats,
		rng:            rng,
		fireRate:       1,
		spreadLevel:    1,
		missileAmmo:    startMissiles,
		showExplosion:  true,
		pickupsEnabled: true,
	}
}

func (a *Aircraft) Type() data.AircraftType { return a.typ }
func (a *Aircraft) Identifier() int32       { return a.identifier }
func (a *Aircraft) SetIdentifier(id int32)  { a.identifier = id }
func (a *Aircraft) MaxSpeed() float64       { return a.stats.Speed }
func (a *Aircraft) FireRate() int32         { return a.fireRate }
func (a *Aircraft) SpreadLevel() int32      { return a.spreadLevel }
func (a *Aircraft) MissileAmmo() int32      { return a.missileAmmo }
func (a *Aircraft) SetMissileAmmo(n int32)  { a.missileAmmo = n }

// IsAllied reports whether the aircraft flies for the players.
func (a *Aircraft) IsAllied() bool { return a.typ == data.Eagle }

func (a *Aircraft) Category() category.Type {
	if a.IsAllied() {
		return category.PlayerAircraft
	}
	return category.EnemyAircraft
}

func (a *Aircraft) IncreaseFireRate() {
	if a.fireRate < maxFireRate {
		a.fireRate++
	}
}

func (a *Aircraft) IncreaseSpread() {
	if a.spreadLevel < maxSpreadLevel {
		a.spreadLevel++
	}
}

func (a *Aircraft) CollectMissiles(count int32) {
	a.missileAmmo += count
}

// DisablePickups stops the aircraft from dropping a pickup when destroyed.
func (a *Aircraft) DisablePickups() { a.pickupsEnabled = false }

// Fire requests gunfire for this frame. Types without a fire interval never fire.
func (a *Aircraft) Fire() {
	if a.stats.FireInterval != 0 && !a.destroyed {
		a.firing = true
	}
}

// LaunchMissile requests one missile, spending ammo immediately.
func (a *Aircraft) LaunchMissile() {
	if a.missileAmmo > 0 && !a.destroyed {
		a.launchingMissile = true
		a.missileAmmo--
	}
}

// Remove destroys the aircraft without an explosion.
func (a *Aircraft) Remove() {
	a.Destroy()
	a.showExplosion = false
}

func (a *Aircraft) IsMarkedForRemoval() bool {
	return a.destroyed && (!a.showExplosion || a.explosionTime >= explosionLength)
}

func (a *Aircraft) LocalBounds() scene.Rect {
	r := a.stats.TextureRect
	return scene.CenteredRect(float64(r.Width), float64(r.Height))
}

func (a *Aircraft) UpdateCurrent(n *scene.Node, dt float64, q *command.Queue) {
	if a.destroyed {
		a.checkPickupDrop(n, q)
		a.explosionTime += dt
		if !a.explosionBegan {
			effect := media.SoundExplosion1
			if a.rng.Intn(2) == 1 {
				effect = media.SoundExplosion2
			}
			a.playLocalSound(n, q, effect)
			if !a.IsAllied() {
				pos := n.WorldPosition()
				q.Push(command.Command{
					Category: category.Network,
					Action: command.NotifyNetwork{
						Action: command.GameAction{Type: command.EnemyExplode, Aircraft: a.typ, Position: pos},
					},
				})
			}
			a.explosionBegan = true
		}
		return
	}
	a.checkProjectileLaunch(n, dt, q)
	a.updateMovementPattern(dt)
	a.integrate(n, dt)
}

// checkProjectileLaunch runs fire control. The countdown accumulates so the
// long-run rate is (fireRate+1)/interval, and an idle aircraft banks nothing.
func (a *Aircraft) checkProjectileLaunch(n *scene.Node, dt float64, q *command.Queue) {
	if !a.IsAllied() {
		a.Fire()
	}

	wantsFire := a.firing
	a.firing = false
	if wantsFire && a.fireCountdown <= 0 {
		effect := media.SoundEnemyGunfire
		if a.IsAllied() {
			effect = media.SoundAlliedGunfire
		}
		a.playLocalSound(n, q, effect)
		q.Push(command.Command{Category: category.Scene, Action: command.SpawnBullets{Source: n.ID()}})
		a.fireCountdown += a.stats.FireInterval / float64(a.fireRate+1)
	}
	if a.fireCountdown > 0 {
		a.fireCountdown -= dt
	}
	if !wantsFire && a.fireCountdown < 0 {
		a.fireCountdown = 0
	}

	if a.launchingMissile {
		a.playLocalSound(n, q, media.SoundLaunchMissile)
		q.Push(command.Command{Category: category.Scene, Action: command.SpawnMissile{Source: n.ID()}})
		a.launchingMissile = false
	}
}

// updateMovementPattern steers enemies along their AI legs.
func (a *Aircraft) updateMovementPattern(dt float64) {
	legs := a.stats.Directions
	if len(legs) == 0 {
		return
	}
	if a.travelled > legs[a.directionIndex].Distance {
		a.directionIndex = (a.directionIndex + 1) % len(legs)
		a.travelled = 0
	}
	rad := mgl64.DegToRad(legs[a.directionIndex].Angle + 90)
	speed := a.MaxSpeed()
	a.SetVelocity(mgl64.Vec2{speed * math.Cos(rad), speed * math.Sin(rad)})
	a.travelled += speed * dt
}

func (a *Aircraft) checkPickupDrop(n *scene.Node, q *command.Queue) {
	if !a.IsAllied() && a.pickupsEnabled && !a.spawnedPickup {
		q.Push(command.Command{Category: category.Scene, Action: command.DropPickup{Source: n.ID()}})
	}
	a.spawnedPickup = true
}

func (a *Aircraft) playLocalSound(n *scene.Node, q *command.Queue, effect media.SoundEffect) {
	q.Push(command.Command{
		Category: category.SoundEffect,
		Action:   command.PlaySound{Effect: effect, Position: n.WorldPosition()},
	})
}

// spriteSize is the on-screen size of the aircraft sprite.
func (a *Aircraft) spriteSize() mgl64.Vec2 {
	r := a.stats.TextureRect
	return mgl64.Vec2{float64(r.Width), float64(r.Height)}
}

func (a *Aircraft) DrawCurrent(t media.Target, world mgl64.Mat3) {
	if a.destroyed && a.showExplosion {
		frame := int(a.explosionTime / explosionLength * explosionFrames)
		if frame >= explosionFrames {
			frame = explosionFrames - 1
		}
		rect := media.TextureRect{Left: frame * explosionFrame, Width: explosionFrame, Height: explosionFrame}
		t.DrawSprite(media.TextureExplosion, rect, world)
		return
	}
	t.DrawSprite(a.stats.TextureID, a.textureRect(), world)
}

// textureRect selects the roll frame: the base rect, then one and two widths
// to the right for rolling left and right.
func (a *Aircraft) textureRect() media.TextureRect {
	r := a.stats.TextureRect
	if !a.stats.HasRollAnimation {
		return r
	}
	switch vx := a.velocity[0]; {
	case vx < 0:
		r.Left += r.Width
	case vx > 0:
		r.Left += 2 * r.Width
	}
	return r
}
