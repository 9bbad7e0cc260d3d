package handler

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/player"
	"github.com/skyraid/server/internal/world"
)

// ErrMatchFull is returned when no further aircraft may join.
var ErrMatchFull = errors.New("match full")

// ErrMatchOver is returned when joining a mission that already ended.
var ErrMatchOver = errors.New("mission over")

// WorldFactory builds a fresh mission.
type WorldFactory func() (*world.World, error)

// Match is the mission the server runs plus the remote players flying it.
// Game loop only.
type Match struct {
	World *world.World

	newWorld   WorldFactory
	maxPlayers int
	players    map[int32]*player.Player
	owners     map[int32]*net.Session
	order      []int32
	nextID     int32
	status     player.MissionStatus
	ticks      uint64
	log        *zap.Logger
}

func NewMatch(newWorld WorldFactory, maxPlayers int, log *zap.Logger) (*Match, error) {
	m := &Match{newWorld: newWorld, maxPlayers: maxPlayers, log: log}
	if err := m.Reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reset replaces the mission with a fresh one and forgets every player.
// Identifiers restart at 1.
func (m *Match) Reset() error {
	w, err := m.newWorld()
	if err != nil {
		return fmt.Errorf("new mission: %w", err)
	}
	m.World = w
	m.players = make(map[int32]*player.Player)
	m.owners = make(map[int32]*net.Session)
	m.order = m.order[:0]
	m.nextID = 1
	m.status = player.MissionRunning
	m.ticks = 0
	return nil
}

// Join spawns a new aircraft controlled by sess.
func (m *Match) Join(sess *net.Session) (*world.Aircraft, error) {
	if m.status != player.MissionRunning {
		return nil, ErrMatchOver
	}
	if len(m.players) >= m.maxPlayers {
		return nil, ErrMatchFull
	}
	id := m.nextID
	a, err := m.World.AddAircraft(id)
	if err != nil {
		return nil, err
	}
	m.nextID++
	m.players[id] = player.New(id, nil, nil, m.log)
	m.owners[id] = sess
	m.order = append(m.order, id)
	sess.Identifiers = append(sess.Identifiers, id)
	return a, nil
}

// Leave removes the player and its aircraft. Unknown identifiers are ignored.
func (m *Match) Leave(identifier int32) {
	if _, ok := m.players[identifier]; !ok {
		return
	}
	m.World.RemoveAircraft(identifier)
	delete(m.players, identifier)
	delete(m.owners, identifier)
	for i, id := range m.order {
		if id == identifier {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Match) Player(identifier int32) *player.Player { return m.players[identifier] }
func (m *Match) Owner(identifier int32) *net.Session    { return m.owners[identifier] }
func (m *Match) Count() int                             { return len(m.players) }
func (m *Match) Ticks() uint64                          { return m.ticks }
func (m *Match) Status() player.MissionStatus           { return m.status }

// Players returns the players in join order.
func (m *Match) Players() []*player.Player {
	out := make([]*player.Player, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.players[id])
	}
	return out
}

// Advance counts one simulated tick.
func (m *Match) Advance() { m.ticks++ }

// Finish records the outcome for the match and every player in it.
// It reports false when the mission had already ended.
func (m *Match) Finish(status player.MissionStatus) bool {
	if m.status != player.MissionRunning {
		return false
	}
	m.status = status
	for _, p := range m.players {
		p.SetMissionStatus(status)
	}
	return true
}
