// Package config loads the server's TOML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Network   NetworkConfig   `toml:"network"`
	World     WorldConfig     `toml:"world"`
	Data      DataConfig      `toml:"data"`
	Logging   LoggingConfig   `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

// DatabaseConfig configures mission result storage. An empty DSN disables it.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type NetworkConfig struct {
	BindAddress       string        `toml:"bind_address"`
	WSAddress         string        `toml:"ws_address"` // empty disables WebSocket
	TickRate          time.Duration `toml:"tick_rate"`
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	MaxPacketsPerTick int           `toml:"max_packets_per_tick"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
	SnapshotEvery     int           `toml:"snapshot_every"` // ticks between state broadcasts
	MaxPlayers        int           `toml:"max_players"`
}

type WorldConfig struct {
	ViewWidth         float64 `toml:"view_width"`
	ViewHeight        float64 `toml:"view_height"`
	WorldHeight       float64 `toml:"world_height"`
	ScrollSpeed       float64 `toml:"scroll_speed"`
	BattlefieldMargin float64 `toml:"battlefield_margin"`
	BorderDistance    float64 `toml:"border_distance"`
	Multiplayer       bool    `toml:"multiplayer"`
	ScriptedEnemies   bool    `toml:"scripted_enemies"`
}

type DataConfig struct {
	Dir        string `toml:"dir"`
	ScriptsDir string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type RateLimitConfig struct {
	Enabled          bool `toml:"enabled"`
	PacketsPerSecond int  `toml:"packets_per_second"`
}

// PacketLimit returns the per-session packet budget, 0 when unlimited.
func (r RateLimitConfig) PacketLimit() int {
	if !r.Enabled {
		return 0
	}
	return r.PacketsPerSecond
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Network.TickRate <= 0:
		return fmt.Errorf("network.tick_rate must be positive")
	case c.Network.SnapshotEvery <= 0:
		return fmt.Errorf("network.snapshot_every must be positive")
	case c.Network.MaxPlayers <= 0:
		return fmt.Errorf("network.max_players must be positive")
	case c.World.ViewWidth <= 0 || c.World.ViewHeight <= 0:
		return fmt.Errorf("world view size must be positive")
	case c.World.WorldHeight < c.World.ViewHeight:
		return fmt.Errorf("world.world_height %.0f is smaller than the view", c.World.WorldHeight)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "skyraid",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Network: NetworkConfig{
			BindAddress:       "0.0.0.0:5000",
			WSAddress:         "",
			TickRate:          time.Second / 60,
			InQueueSize:       128,
			OutQueueSize:      256,
			MaxPacketsPerTick: 32,
			WriteTimeout:      10 * time.Second,
			ReadTimeout:       60 * time.Second,
			SnapshotEvery:     3,
			MaxPlayers:        16,
		},
		World: WorldConfig{
			ViewWidth:         1024,
			ViewHeight:        768,
			WorldHeight:       5000,
			ScrollSpeed:       -50,
			BattlefieldMargin: 100,
			BorderDistance:    40,
			Multiplayer:       true,
			ScriptedEnemies:   true,
		},
		Data: DataConfig{
			Dir:        "data/yaml",
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		RateLimit: RateLimitConfig{
			Enabled:          true,
			PacketsPerSecond: 240,
		},
	}
}
