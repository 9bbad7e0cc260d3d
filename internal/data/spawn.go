package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnPoint places one enemy of Type. X is relative to the horizontal
// centre of the view; Y is the distance travelled from the player's start.
type SpawnPoint struct {
	Type AircraftType `yaml:"type"`
	X    float64      `yaml:"x"`
	Y    float64      `yaml:"y"`
}

type spawnFile struct {
	Spawns []SpawnPoint `yaml:"spawns"`
}

// LoadSpawnScript loads the enemy spawn script in file order.
func LoadSpawnScript(path string) ([]SpawnPoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn script: %w", err)
	}
	var f spawnFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn script: %w", err)
	}
	return f.Spawns, nil
}
