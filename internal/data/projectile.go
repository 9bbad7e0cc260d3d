package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skyraid/server/internal/media"
)

// ProjectileData is the immutable stat row of one projectile type.
type ProjectileData struct {
	Type        ProjectileType    `yaml:"type"`
	Damage      int32             `yaml:"damage"`
	Speed       float64           `yaml:"speed"`
	Texture     string            `yaml:"texture"`
	TextureRect media.TextureRect `yaml:"texture_rect"`

	TextureID media.TextureID `yaml:"-"`
}

type projectileFile struct {
	Projectiles []ProjectileData `yaml:"projectiles"`
}

// ProjectileTable holds one row per ProjectileType.
type ProjectileTable struct {
	rows [ProjectileTypeCount]*ProjectileData
}

// LoadProjectileTable loads projectiles.yaml.
func LoadProjectileTable(path string) (*ProjectileTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read projectile table: %w", err)
	}
	var f projectileFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse projectile table: %w", err)
	}
	return NewProjectileTable(f.Projectiles)
}

func NewProjectileTable(rows []ProjectileData) (*ProjectileTable, error) {
	t := &ProjectileTable{}
	for i := range rows {
		r := rows[i]
		if r.Type < 0 || r.Type >= ProjectileTypeCount {
			return nil, fmt.Errorf("%w: projectile %d", ErrUnknownType, int32(r.Type))
		}
		if t.rows[r.Type] != nil {
			return nil, fmt.Errorf("projectile %s: duplicate row", r.Type)
		}
		if r.Damage <= 0 || r.Speed <= 0 {
			return nil, fmt.Errorf("projectile %s: damage and speed must be positive", r.Type)
		}
		tex, err := media.ParseTextureID(r.Texture)
		if err != nil {
			return nil, fmt.Errorf("projectile %s: %w", r.Type, err)
		}
		r.TextureID = tex
		t.rows[r.Type] = &r
	}
	for i, r := range t.rows {
		if r == nil {
			return nil, fmt.Errorf("projectile %s: missing row", ProjectileType(i))
		}
	}
	return t, nil
}

// Get returns the stat row of typ. An out-of-range type is a programming error.
func (t *ProjectileTable) Get(typ ProjectileType) *ProjectileData {
	if typ < 0 || typ >= ProjectileTypeCount {
		panic(fmt.Sprintf("data: %s out of range", typ))
	}
	return t.rows[typ]
}

func (t *ProjectileTable) Count() int {
	return len(t.rows)
}
