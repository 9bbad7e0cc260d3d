// Package system holds the server's per-tick stages, run in phase order by
// core/system.Runner.
package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/skyraid/server/internal/core/system"
	"github.com/skyraid/server/internal/handler"
	"github.com/skyraid/server/internal/net"
	"github.com/skyraid/server/internal/net/packet"
)

// SessionSource supplies newly accepted and dead sessions.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
}

// InputSystem admits new sessions, drains packet queues from all sessions
// and dispatches them through the packet registry. Phase 0 (Input).
type InputSystem struct {
	source     SessionSource
	registry   *packet.Registry
	deps       *handler.Deps
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(source SessionSource, registry *packet.Registry, deps *handler.Deps, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		source:     source,
		registry:   registry,
		deps:       deps,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	store := s.deps.Sessions

	// Accept new sessions
	for {
		select {
		case sess := <-s.source.NewSessions():
			store.Add(sess)
			handler.HandleJoin(sess, s.deps)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.source.DeadSessions():
			if sess := store.Get(id); sess != nil {
				s.disconnect(sess)
			}
		default:
			goto doneDead
		}
	}
doneDead:

	for _, sess := range store.Raw() {
		if sess.IsClosed() {
			s.disconnect(sess)
			continue
		}
		s.drain(sess)
	}

	// Flush early so relayed input leaves before the simulation runs.
	store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("packet dispatch failed",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

// disconnect removes the session's aircraft. Packets still queued are
// dropped; a closed session is past every state the registry accepts.
func (s *InputSystem) disconnect(sess *net.Session) {
	handler.HandleDisconnect(sess, s.deps)
	s.deps.Sessions.Remove(sess.ID)
}
