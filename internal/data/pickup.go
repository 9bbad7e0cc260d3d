package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skyraid/server/internal/media"
)

// PickupData is the immutable stat row of one pickup type. Amount is the
// hitpoints or missiles granted by refill pickups and ignored by the others.
type PickupData struct {
	Type        PickupType        `yaml:"type"`
	Amount      int32             `yaml:"amount"`
	Texture     string            `yaml:"texture"`
	TextureRect media.TextureRect `yaml:"texture_rect"`

	TextureID media.TextureID `yaml:"-"`
}

type pickupFile struct {
	Pickups []PickupData `yaml:"pickups"`
}

// PickupTable holds one row per PickupType.
type PickupTable struct {
	rows [PickupTypeCount]*PickupData
}

// LoadPickupTable loads pickups.yaml.
func LoadPickupTable(path string) (*PickupTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pickup table: %w", err)
	}
	var f pickupFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse pickup table: %w", err)
	}
	return NewPickupTable(f.Pickups)
}

func NewPickupTable(rows []PickupData) (*PickupTable, error) {
	t := &PickupTable{}
	for i := range rows {
		r := rows[i]
		if r.Type < 0 || r.Type >= PickupTypeCount {
			return nil, fmt.Errorf("%w: pickup %d", ErrUnknownType, int32(r.Type))
		}
		if t.rows[r.Type] != nil {
			return nil, fmt.Errorf("pickup %s: duplicate row", r.Type)
		}
		tex, err := media.ParseTextureID(r.Texture)
		if err != nil {
			return nil, fmt.Errorf("pickup %s: %w", r.Type, err)
		}
		r.TextureID = tex
		t.rows[r.Type] = &r
	}
	for i, r := range t.rows {
		if r == nil {
			return nil, fmt.Errorf("pickup %s: missing row", PickupType(i))
		}
	}
	return t, nil
}

// Get returns the stat row of typ. An out-of-range type is a programming error.
func (t *PickupTable) Get(typ PickupType) *PickupData {
	if typ < 0 || typ >= PickupTypeCount {
		panic(fmt.Sprintf("data: %s out of range", typ))
	}
	return t.rows[typ]
}

func (t *PickupTable) Count() int {
	return len(t.rows)
}
