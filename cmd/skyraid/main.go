package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skyraid/server/internal/config"
	"github.com/skyraid/server/internal/core/event"
	coresys "github.com/skyraid/server/internal/core/system"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/handler"
	gonet "github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/net/packet"
	"github.com/skyraid/server/internal/persist"
	"github.com/skyraid/server/internal/scripting"
	"github.com/skyraid/server/internal/system"
	"github.com/skyraid/server/internal/world"
)

const inputPollInterval = 2 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              SkyRaid  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       co-op scrolling shooter server      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mServer:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printSkip(msg string) {
	fmt.Printf("  \033[90m-\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("SKYRAID_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Mission storage is optional
	printSection("Database")
	var store system.MissionStore
	if cfg.Database.DSN == "" {
		printSkip("no dsn configured, mission results are not stored")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("schema at version %d", version))
		store = persist.NewMissionRepo(db)
	}
	fmt.Println()

	// 4. Load stat tables and scripts
	printSection("Data")
	tables, err := data.LoadTables(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	printStat("aircraft", tables.Aircraft.Count())
	printStat("projectiles", tables.Projectiles.Count())
	printStat("pickups", tables.Pickups.Count())
	printStat("scripted enemies", len(tables.Spawns))

	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	var policy world.PickupPolicy = luaEngine
	if luaEngine.HasFunction("drop_pickup") {
		printOK("Lua pickup policy loaded")
	} else {
		policy = world.RandomPickupPolicy{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
		printSkip("no drop_pickup script, using the built-in pickup policy")
	}
	fmt.Println()

	// 5. Create the mission
	bus := event.NewBus()
	opts := worldOptions(cfg.World)
	newWorld := func() (*world.World, error) {
		return world.New(world.Config{
			Options: opts,
			Tables:  tables,
			Policy:  policy,
			Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
			Bus:     bus,
			Log:     log,
		})
	}
	match, err := handler.NewMatch(newWorld, cfg.Network.MaxPlayers, log)
	if err != nil {
		return fmt.Errorf("create mission: %w", err)
	}

	// 6. Create packet handler registry and register handlers
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Log:      log,
		Match:    match,
		Sessions: gonet.NewSessionStore(),
		Bus:      bus,
	}
	handler.RegisterAll(pktReg, deps)

	// 7. Create network server
	netServer, err := gonet.NewServer(cfg.Network, cfg.RateLimit.PacketLimit(), log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 8. Create systems and register with runner
	persistSys := system.NewPersistenceSystem(store, log)
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, deps, cfg.Network.MaxPacketsPerTick, log))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewSimulationSystem(deps, policy, log))
	runner.Register(system.NewStatsSystem(bus, persistSys, log))
	runner.Register(system.NewOutputSystem(deps, cfg.Network.SnapshotEvery, log))
	runner.Register(persistSys)
	runner.OnSlowTick(cfg.Network.TickRate, func(elapsed time.Duration) {
		log.Warn("tick overran its budget",
			zap.Duration("elapsed", elapsed),
			zap.Duration("budget", cfg.Network.TickRate),
		)
	})

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	// Input is polled between ticks so relayed player input does not wait
	// for the next full tick.
	inputTicker := time.NewTicker(inputPollInterval)
	defer inputTicker.Stop()

	printSection("Ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	if ws := netServer.WSAddr(); ws != nil {
		printReady(fmt.Sprintf("websocket on ws://%s/ws", ws.String()))
	}
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case <-inputTicker.C:
			runner.TickPhase(coresys.PhaseInput, 0)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			persistSys.Flush()
			netServer.Shutdown()
			log.Info("server stopped")
			return nil
		}
	}
}

func worldOptions(c config.WorldConfig) world.Options {
	return world.Options{
		ViewWidth:         c.ViewWidth,
		ViewHeight:        c.ViewHeight,
		WorldHeight:       c.WorldHeight,
		ScrollSpeed:       c.ScrollSpeed,
		BattlefieldMargin: c.BattlefieldMargin,
		BorderDistance:    c.BorderDistance,
		Multiplayer:       c.Multiplayer,
		ScriptedEnemies:   c.ScriptedEnemies,
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
