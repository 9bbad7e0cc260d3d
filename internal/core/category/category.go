// Package category defines the role bitmask carried by every scene node.
// Commands are routed and collisions classified by intersecting masks.
package category

// Type is a set of gameplay roles.
type Type uint32

const (
	None             Type = 0
	Scene            Type = 1 << 0
	PlayerAircraft   Type = 1 << 1
	AlliedAircraft   Type = 1 << 2
	EnemyAircraft    Type = 1 << 3
	Pickup           Type = 1 << 4
	AlliedProjectile Type = 1 << 5
	EnemyProjectile  Type = 1 << 6
	ParticleSystem   Type = 1 << 7
	SoundEffect      Type = 1 << 8
	Network          Type = 1 << 9

	Aircraft   = PlayerAircraft | AlliedAircraft | EnemyAircraft
	Projectile = AlliedProjectile | EnemyProjectile
)

// Matches reports whether t shares at least one role with mask.
func (t Type) Matches(mask Type) bool {
	return t&mask != 0
}
