package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	StateConnected     SessionState = iota // accepted, no aircraft yet
	StateInGame                            // owns at least one aircraft
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateInGame:
		return "InGame"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for packet handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, r *Reader)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps packet types to handlers with state-based access control.
type Registry struct {
	handlers map[int32]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[int32]*handlerEntry),
		log:      log,
	}
}

// Register maps a packet type to a handler, restricted to the given session states.
func (reg *Registry) Register(packetType int32, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[packetType] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch finds the handler for the packet type, validates the session
// state, and calls the handler. Unknown types are ignored; a type not
// allowed in state is an error.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("packet of %d bytes has no type", len(data))
	}
	r := NewReader(data)
	typ := r.Type()

	entry, ok := reg.handlers[typ]
	if !ok {
		reg.log.Debug("unknown packet type", zap.Int32("type", typ), zap.Stringer("state", state))
		return nil
	}

	if !entry.allowedStates[state] {
		reg.log.Warn("packet not allowed in state",
			zap.String("packet", ClientName(typ)),
			zap.Stringer("state", state),
		)
		return fmt.Errorf("packet %s not allowed in state %s", ClientName(typ), state)
	}

	return reg.safeCall(entry.fn, sess, r, typ)
}

// safeCall executes a handler with panic recovery so a single bad packet
// cannot crash the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, r *Reader, typ int32) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("packet", ClientName(typ)),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for packet %s: %v", ClientName(typ), rec)
		}
	}()
	fn(sess, r)
	return nil
}
