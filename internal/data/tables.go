// Package data loads the read-only YAML tables the simulation is built from:
// aircraft, projectile and pickup stats, the enemy spawn script and the
// texture manifest.
package data

import (
	"fmt"
	"path/filepath"
)

// Tables bundles every stat table. It is loaded once at startup and passed
// to constructors; nothing mutates it afterwards.
type Tables struct {
	Aircraft    *AircraftTable
	Projectiles *ProjectileTable
	Pickups     *PickupTable
	Spawns      []SpawnPoint
	Textures    *TextureManifest
}

// LoadTables loads aircraft.yaml, projectiles.yaml, pickups.yaml, spawns.yaml
// and textures.yaml from dir.
func LoadTables(dir string) (*Tables, error) {
	var (
		t   Tables
		err error
	)
	if t.Aircraft, err = LoadAircraftTable(filepath.Join(dir, "aircraft.yaml")); err != nil {
		return nil, err
	}
	if t.Projectiles, err = LoadProjectileTable(filepath.Join(dir, "projectiles.yaml")); err != nil {
		return nil, err
	}
	if t.Pickups, err = LoadPickupTable(filepath.Join(dir, "pickups.yaml")); err != nil {
		return nil, err
	}
	if t.Spawns, err = LoadSpawnScript(filepath.Join(dir, "spawns.yaml")); err != nil {
		return nil, err
	}
	if t.Textures, err = LoadTextureManifest(filepath.Join(dir, "textures.yaml")); err != nil {
		return nil, err
	}
	for i, sp := range t.Spawns {
		if sp.Type == Eagle {
			return nil, fmt.Errorf("spawn script entry %d: eagle is reserved for players", i)
		}
	}
	return &t, nil
}
