package data

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnknownType is returned when a table names a type the simulation does not know.
var ErrUnknownType = errors.New("unknown type")

// AircraftType selects an aircraft stat row.
type AircraftType int32

const (
	Eagle AircraftType = iota
	Raptor
	Avenger
	AircraftTypeCount
)

var aircraftNames = [AircraftTypeCount]string{"eagle", "raptor", "avenger"}

func (t AircraftType) String() string { return enumName(aircraftNames[:], int(t), "aircraft") }

func (t *AircraftType) UnmarshalYAML(n *yaml.Node) error {
	v, err := parseEnum(n, aircraftNames[:], "aircraft")
	*t = AircraftType(v)
	return err
}

// ProjectileType selects a projectile stat row.
type ProjectileType int32

const (
	AlliedBullet ProjectileType = iota
	EnemyBullet
	Missile
	ProjectileTypeCount
)

var projectileNames = [ProjectileTypeCount]string{"allied_bullet", "enemy_bullet", "missile"}

func (t ProjectileType) String() string { return enumName(projectileNames[:], int(t), "projectile") }

func (t *ProjectileType) UnmarshalYAML(n *yaml.Node) error {
	v, err := parseEnum(n, projectileNames[:], "projectile")
	*t = ProjectileType(v)
	return err
}

// PickupType selects a pickup stat row.
type PickupType int32

const (
	HealthRefill PickupType = iota
	MissileRefill
	FireSpread
	FireRate
	PickupTypeCount
)

var pickupNames = [PickupTypeCount]string{"health_refill", "missile_refill", "fire_spread", "fire_rate"}

func (t PickupType) String() string { return enumName(pickupNames[:], int(t), "pickup") }

func (t *PickupType) UnmarshalYAML(n *yaml.Node) error {
	v, err := parseEnum(n, pickupNames[:], "pickup")
	*t = PickupType(v)
	return err
}

// ParsePickupType resolves a pickup name such as "fire_rate".
func ParsePickupType(name string) (PickupType, error) {
	for i, n := range pickupNames {
		if n == name {
			return PickupType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: pickup %q", ErrUnknownType, name)
}

func enumName(names []string, v int, kind string) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, v)
	}
	return names[v]
}

func parseEnum(n *yaml.Node, names []string, kind string) (int, error) {
	var s string
	if err := n.Decode(&s); err != nil {
		return 0, err
	}
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("line %d: %w: %s %q", n.Line, ErrUnknownType, kind, s)
}
