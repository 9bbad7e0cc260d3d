package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skyraid/server/internal/media"
)

// Direction is one leg of an AI movement pattern. Angle is in degrees
// relative to straight down the screen.
type Direction struct {
	Angle    float64 `yaml:"angle"`
	Distance float64 `yaml:"distance"`
}

// AircraftData is the immutable stat row of one aircraft type.
type AircraftData struct {
	Type             AircraftType      `yaml:"type"`
	Hitpoints        int32             `yaml:"hitpoints"`
	Speed            float64           `yaml:"speed"`
	Texture          string            `yaml:"texture"`
	TextureRect      media.TextureRect `yaml:"texture_rect"`
	FireInterval     float64           `yaml:"fire_interval"` // seconds
	Directions       []Direction       `yaml:"directions"`
	HasRollAnimation bool              `yaml:"has_roll_animation"`

	TextureID media.TextureID `yaml:"-"`
}

type aircraftFile struct {
	Aircraft []AircraftData `yaml:"aircraft"`
}

// AircraftTable holds one row per AircraftType.
type AircraftTable struct {
	rows [AircraftTypeCount]*AircraftData
}

// LoadAircraftTable loads aircraft.yaml.
func LoadAircraftTable(path string) (*AircraftTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aircraft table: %w", err)
	}
	var f aircraftFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse aircraft table: %w", err)
	}
	return NewAircraftTable(f.Aircraft)
}

// NewAircraftTable validates rows and indexes them by type. Every type must
// appear exactly once.
func NewAircraftTable(rows []AircraftData) (*AircraftTable, error) {
	t := &AircraftTable{}
	for i := range rows {
		r := rows[i]
		if r.Type < 0 || r.Type >= AircraftTypeCount {
			return nil, fmt.Errorf("%w: aircraft %d", ErrUnknownType, int32(r.Type))
		}
		if t.rows[r.Type] != nil {
			return nil, fmt.Errorf("aircraft %s: duplicate row", r.Type)
		}
		if r.Hitpoints <= 0 || r.Speed <= 0 {
			return nil, fmt.Errorf("aircraft %s: hitpoints and speed must be positive", r.Type)
		}
		tex, err := media.ParseTextureID(r.Texture)
		if err != nil {
			return nil, fmt.Errorf("aircraft %s: %w", r.Type, err)
		}
		r.TextureID = tex
		t.rows[r.Type] = &r
	}
	for i, r := range t.rows {
		if r == nil {
			return nil, fmt.Errorf("aircraft %s: missing row", AircraftType(i))
		}
	}
	return t, nil
}

// Get returns the stat row of typ. An out-of-range type is a programming error.
func (t *AircraftTable) Get(typ AircraftType) *AircraftData {
	if typ < 0 || typ >= AircraftTypeCount {
		panic(fmt.Sprintf("data: %s out of range", typ))
	}
	return t.rows[typ]
}

// Count returns the number of loaded rows.
func (t *AircraftTable) Count() int {
	return len(t.rows)
}
