// Package world owns the scene graph of one mission and runs its per-frame
// pipeline: scrolling, command dispatch, collisions, wreck removal and enemy
// spawning. It is driven from a single goroutine.
package world

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/core/ecs"
	"github.com/skyraid/server/internal/core/event"
	"github.com/skyraid/server/internal/data"
	"github.com/skyraid/server/internal/media"
	"github.com/skyraid/server/internal/scene"
)

// ErrPlayerLimit is returned by AddAircraft when a single-player world
// already has its player.
var ErrPlayerLimit = errors.New("player limit reached")

// Layer indexes the scene layers under the root.
type Layer int

const (
	LayerBackground Layer = iota
	LayerLowerAir
	LayerUpperAir
	layerCount
)

// Options shapes one world. Single-player and multiplayer are two
// configurations of the same pipeline.
type Options struct {
	ViewWidth         float64
	ViewHeight        float64
	WorldHeight       float64
	ScrollSpeed       float64 // world units per second, negative scrolls up
	BattlefieldMargin float64 // off-screen band above the view where enemies appear
	BorderDistance    float64 // players stay this far inside the view

	// Multiplayer allows any number of players, adds the network node and
	// leaves pickup drops to the server.
	Multiplayer bool
	// ScriptedEnemies queues the spawn script at construction.
	ScriptedEnemies bool
}

func DefaultOptions() Options {
	return Options{
		ViewWidth:         1024,
		ViewHeight:        768,
		WorldHeight:       5000,
		ScrollSpeed:       -50,
		BattlefieldMargin: 100,
		BorderDistance:    40,
		ScriptedEnemies:   true,
	}
}

// PickupPolicy decides what, if anything, an exploding enemy leaves behind.
type PickupPolicy interface {
	DropPickup(typ data.AircraftType, pos mgl64.Vec2) (data.PickupType, bool)
}

// RandomPickupPolicy drops a uniformly chosen pickup one time in three.
type RandomPickupPolicy struct {
	Rand *rand.Rand
}

func (p RandomPickupPolicy) DropPickup(data.AircraftType, mgl64.Vec2) (data.PickupType, bool) {
	if p.Rand.Intn(3) != 0 {
		return 0, false
	}
	return data.PickupType(p.Rand.Intn(int(data.PickupTypeCount))), true
}

// Config carries everything New needs. Tables is required; the other
// collaborators have headless defaults.
type Config struct {
	Options
	Tables   *data.Tables
	Textures media.Textures // nil skips the startup texture check
	Audio    media.Audio
	Policy   PickupPolicy
	Rand     *rand.Rand
	Bus      *event.Bus
	Log      *zap.Logger
}

type spawnPoint struct {
	typ  data.AircraftType
	x, y float64
}

// World is one running mission.
type World struct {
	opts   Options
	tables *data.Tables
	audio  media.Audio
	policy PickupPolicy
	rng    *rand.Rand
	bus    *event.Bus
	log    *zap.Logger

	graph   *scene.Graph
	layers  [layerCount]ecs.EntityID
	sound   *SoundNode
	network *NetworkNode
	queue   *command.Queue
	exec    scene.Executor

	cameraCenter       mgl64.Vec2
	worldBounds        scene.Rect
	spawnPosition      mgl64.Vec2
	scrollCompensation float64

	players       []ecs.EntityID
	spawnPoints   []spawnPoint // ascending y; the back spawns first
	activeEnemies []ecs.EntityID
}

// New builds the scene for cfg. Missing textures fail here rather than
// mid-frame.
func New(cfg Config) (*World, error) {
	if cfg.Tables == nil {
		return nil, errors.New("world: stat tables required")
	}
	o := cfg.Options
	if o.ViewWidth <= 0 || o.ViewHeight <= 0 || o.WorldHeight <= 0 {
		return nil, fmt.Errorf("world: bad dimensions view %vx%v world height %v", o.ViewWidth, o.ViewHeight, o.WorldHeight)
	}
	if cfg.Textures != nil {
		for _, id := range media.AllTextures() {
			if _, err := cfg.Textures.Texture(id); err != nil {
				return nil, fmt.Errorf("world: %w", err)
			}
		}
	}

	w := &World{
		opts:               o,
		tables:             cfg.Tables,
		audio:              cfg.Audio,
		policy:             cfg.Policy,
		rng:                cfg.Rand,
		bus:                cfg.Bus,
		log:                cfg.Log,
		graph:              scene.NewGraph(),
		queue:              command.NewQueue(),
		worldBounds:        scene.Rect{Width: o.ViewWidth, Height: o.WorldHeight},
		spawnPosition:      mgl64.Vec2{o.ViewWidth / 2, o.WorldHeight - o.ViewHeight/2},
		scrollCompensation: 1,
	}
	if w.audio == nil {
		w.audio = media.NopAudio{}
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if w.policy == nil {
		w.policy = RandomPickupPolicy{Rand: w.rng}
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	w.exec = scene.ExecutorFunc(w.execute)
	w.cameraCenter = w.spawnPosition

	w.buildScene()
	if o.ScriptedEnemies {
		for _, sp := range cfg.Tables.Spawns {
			w.AddEnemy(sp.Type, sp.X, sp.Y)
		}
	}
	return w, nil
}

func (w *World) buildScene() {
	root := w.graph.Root()
	for i := range w.layers {
		cat := category.None
		if Layer(i) == LayerLowerAir {
			cat = category.Scene
		}
		n := w.graph.New(scene.Group{Cat: cat})
		w.graph.AttachChild(root, n.ID())
		w.layers[i] = n.ID()
	}

	// Tiled background covering the world plus one view of run-out.
	bg := w.graph.New(&SpriteNode{
		texture: media.TextureJungle,
		rect: media.TextureRect{
			Left:   int(w.worldBounds.Left),
			Top:    int(w.worldBounds.Top),
			Width:  int(w.worldBounds.Width),
			Height: int(w.worldBounds.Height + w.opts.ViewHeight),
		},
	})
	bg.SetPosition(mgl64.Vec2{w.worldBounds.Left, w.worldBounds.Top - w.opts.ViewHeight})
	w.graph.AttachChild(w.layers[LayerBackground], bg.ID())

	finish := w.graph.New(&SpriteNode{texture: media.TextureFinishLine})
	finish.SetPosition(mgl64.Vec2{0, -76})
	w.graph.AttachChild(w.layers[LayerBackground], finish.ID())

	w.sound = &SoundNode{audio: w.audio}
	w.graph.AttachChild(root, w.graph.New(w.sound).ID())

	if w.opts.Multiplayer {
		w.network = &NetworkNode{}
		w.graph.AttachChild(root, w.graph.New(w.network).ID())
	}
}

// Graph exposes the scene graph for drawing and inspection.
func (w *World) Graph() *scene.Graph { return w.graph }

// Layer returns the handle of a scene layer.
func (w *World) Layer(l Layer) ecs.EntityID { return w.layers[l] }

// CommandQueue is where players and the network push commands for the next Update.
func (w *World) CommandQueue() *command.Queue { return w.queue }

func (w *World) Options() Options { return w.opts }

func (w *World) SetWorldScrollCompensation(c float64) { w.scrollCompensation = c }

// SetWorldHeight changes the world bounds height.
func (w *World) SetWorldHeight(h float64) { w.worldBounds.Height = h }

// SetCurrentBattlefieldPosition moves the camera so that lineY is the
// bottom of the view, as sent by the server to joining clients.
func (w *World) SetCurrentBattlefieldPosition(lineY float64) {
	w.cameraCenter[1] = lineY - w.opts.ViewHeight/2
	w.spawnPosition[1] = w.worldBounds.Height
}

// CameraCenter is the centre of the view in world coordinates.
func (w *World) CameraCenter() mgl64.Vec2 { return w.cameraCenter }

// ViewBounds is the visible rectangle.
func (w *World) ViewBounds() scene.Rect {
	return scene.Rect{
		Left:   w.cameraCenter[0] - w.opts.ViewWidth/2,
		Top:    w.cameraCenter[1] - w.opts.ViewHeight/2,
		Width:  w.opts.ViewWidth,
		Height: w.opts.ViewHeight,
	}
}

// BattlefieldBounds is the view extended upward by the battlefield margin.
func (w *World) BattlefieldBounds() scene.Rect {
	b := w.ViewBounds()
	b.Top -= w.opts.BattlefieldMargin
	b.Height += w.opts.BattlefieldMargin
	return b
}

// Update advances the mission by dt seconds.
func (w *World) Update(dt float64) {
	w.cameraCenter[1] += w.opts.ScrollSpeed * dt * w.scrollCompensation

	for _, a := range w.playerAircraft() {
		a.SetVelocity(mgl64.Vec2{})
	}

	w.destroyEntitiesOutsideView()
	w.guideMissiles()

	w.flushCommands(dt)
	w.adaptPlayerVelocity()

	w.handleCollisions()

	w.prunePlayers()
	w.graph.RemoveWrecks()

	w.spawnEnemies()

	w.graph.Update(dt, w.queue)
	w.adaptPlayerPosition()

	w.updateSounds()
}

// Draw renders the whole scene into t.
func (w *World) Draw(t media.Target) {
	w.graph.Draw(t)
}

// flushCommands drains the queue into the graph in push order. Commands
// pushed while draining run in the same pass.
func (w *World) flushCommands(dt float64) {
	for !w.queue.IsEmpty() {
		w.graph.OnCommand(w.queue.Pop(), dt, w.exec)
	}
}

func (w *World) destroyEntitiesOutsideView() {
	w.queue.Push(command.Command{
		Category: category.EnemyAircraft | category.Projectile,
		Action:   command.RemoveOutsideBattlefield{},
	})
}

// guideMissiles queues the enemy collection and guidance pair. The candidate
// list is rebuilt from scratch every frame.
func (w *World) guideMissiles() {
	w.activeEnemies = w.activeEnemies[:0]
	w.queue.Push(command.Command{Category: category.EnemyAircraft, Action: command.CollectEnemies{}})
	w.queue.Push(command.Command{Category: category.AlliedProjectile, Action: command.GuideMissiles{}})
}

func (w *World) adaptPlayerVelocity() {
	for _, a := range w.playerAircraft() {
		v := a.Velocity()
		if v[0] != 0 && v[1] != 0 {
			a.SetVelocity(v.Mul(1 / math.Sqrt2))
		}
		a.Accelerate(mgl64.Vec2{0, w.opts.ScrollSpeed})
	}
}

func (w *World) adaptPlayerPosition() {
	view := w.ViewBounds()
	d := w.opts.BorderDistance
	center := w.cameraCenter
	for _, a := range w.playerAircraft() {
		n := a.Node()
		p := n.Position
		for i := range p {
			if math.IsNaN(p[i]) || math.IsInf(p[i], 0) {
				p[i] = center[i]
			}
		}
		p[0] = math.Min(math.Max(p[0], view.Left+d), view.Right()-d)
		p[1] = math.Min(math.Max(p[1], view.Top+d), view.Bottom()-d)
		n.SetPosition(p)
	}
}

func (w *World) updateSounds() {
	listener := w.cameraCenter
	if players := w.playerAircraft(); len(players) > 0 {
		var sum mgl64.Vec2
		for _, a := range players {
			sum = sum.Add(a.WorldPosition())
		}
		listener = sum.Mul(1 / float64(len(players)))
	}
	w.audio.SetListenerPosition(listener)
	w.audio.RemoveStoppedSounds()
}

// prunePlayers drops tracking handles of players about to be removed.
func (w *World) prunePlayers() {
	kept := w.players[:0]
	for _, id := range w.players {
		n, ok := w.graph.Node(id)
		if !ok || n.Behavior.IsMarkedForRemoval() {
			continue
		}
		kept = append(kept, id)
	}
	w.players = kept
}

// spawnEnemies attaches every queued enemy whose y lies below the
// battlefield's top edge.
func (w *World) spawnEnemies() {
	top := w.BattlefieldBounds().Top
	for len(w.spawnPoints) > 0 && w.spawnPoints[len(w.spawnPoints)-1].y > top {
		sp := w.spawnPoints[len(w.spawnPoints)-1]
		w.spawnPoints = w.spawnPoints[:len(w.spawnPoints)-1]

		enemy := NewAircraft(sp.typ, w.tables.Aircraft, w.rng)
		if w.opts.Multiplayer {
			enemy.DisablePickups()
		}
		n := w.spawn(w.layers[LayerUpperAir], enemy, mgl64.Vec2{sp.x, sp.y})
		n.SetRotation(180)
		if w.bus != nil {
			event.Emit(w.bus, event.EnemySpawned{Node: n.ID(), Type: sp.typ, Position: n.WorldPosition()})
		}
		w.log.Debug("enemy spawned",
			zap.Stringer("type", sp.typ),
			zap.Float64("x", sp.x),
			zap.Float64("y", sp.y))
	}
}

// AddEnemy queues an enemy relative to the player's start position: relX to
// the right of the view centre, relY ahead of it.
func (w *World) AddEnemy(typ data.AircraftType, relX, relY float64) {
	w.spawnPoints = append(w.spawnPoints, spawnPoint{
		typ: typ,
		x:   w.spawnPosition[0] + relX,
		y:   w.spawnPosition[1] - relY,
	})
	sort.SliceStable(w.spawnPoints, func(i, j int) bool {
		return w.spawnPoints[i].y < w.spawnPoints[j].y
	})
}

// PendingEnemies is the number of spawn points not yet reached.
func (w *World) PendingEnemies() int { return len(w.spawnPoints) }

// spawn attaches e under parent at pos and binds it to its node.
func (w *World) spawn(parent ecs.EntityID, e Entity, pos mgl64.Vec2) *scene.Node {
	n := w.graph.New(e)
	n.SetPosition(pos)
	e.body().bind(n)
	w.graph.AttachChild(parent, n.ID())
	return n
}

// AddAircraft spawns a player aircraft with identifier at the camera centre.
func (w *World) AddAircraft(identifier int32) (*Aircraft, error) {
	if !w.opts.Multiplayer && len(w.players) > 0 {
		return nil, ErrPlayerLimit
	}
	if a := w.GetAircraft(identifier); a != nil {
		return nil, fmt.Errorf("aircraft %d already in world", identifier)
	}
	a := NewAircraft(data.Eagle, w.tables.Aircraft, w.rng)
	a.SetIdentifier(identifier)
	n := w.spawn(w.layers[LayerUpperAir], a, w.cameraCenter)
	w.players = append(w.players, n.ID())
	return a, nil
}

// GetAircraft finds a live player aircraft by identifier, or nil.
func (w *World) GetAircraft(identifier int32) *Aircraft {
	for _, a := range w.playerAircraft() {
		if a.identifier == identifier {
			return a
		}
	}
	return nil
}

// RemoveAircraft destroys the player's aircraft and stops tracking it.
// Unknown identifiers are ignored.
func (w *World) RemoveAircraft(identifier int32) {
	for i, id := range w.players {
		a := w.aircraftAt(id)
		if a == nil || a.identifier != identifier {
			continue
		}
		a.Destroy()
		w.players = append(w.players[:i], w.players[i+1:]...)
		return
	}
}

// Players returns the tracked player aircraft in join order.
func (w *World) Players() []*Aircraft { return w.playerAircraft() }

func (w *World) playerAircraft() []*Aircraft {
	out := make([]*Aircraft, 0, len(w.players))
	for _, id := range w.players {
		if a := w.aircraftAt(id); a != nil {
			out = append(out, a)
		}
	}
	return out
}

func (w *World) aircraftAt(id ecs.EntityID) *Aircraft {
	n, ok := w.graph.Node(id)
	if !ok {
		return nil
	}
	a, _ := n.Behavior.(*Aircraft)
	return a
}

// CreatePickup places a drifting pickup, as ordered by the server.
func (w *World) CreatePickup(pos mgl64.Vec2, typ data.PickupType) *Pickup {
	p := NewPickup(typ, w.tables.Pickups)
	w.spawn(w.layers[LayerUpperAir], p, pos)
	p.SetVelocity(mgl64.Vec2{0, 1})
	return p
}

// PollGameAction pops the oldest game action reported by the simulation.
// It always reports false in single-player worlds.
func (w *World) PollGameAction() (command.GameAction, bool) {
	if w.network == nil {
		return command.GameAction{}, false
	}
	return w.network.PollGameAction()
}

// HasAlivePlayer reports whether any player aircraft is still tracked.
func (w *World) HasAlivePlayer() bool { return len(w.players) > 0 }

// HasPlayerReachedEnd reports whether the first player has flown out of
// the world bounds.
func (w *World) HasPlayerReachedEnd() bool {
	a := w.GetAircraft(1)
	if a == nil {
		return false
	}
	return !w.worldBounds.Contains(a.Position())
}
