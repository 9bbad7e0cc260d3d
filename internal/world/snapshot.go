package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vmihailenco/msgpack/v5"
)

// remoteBlend is how far a remote aircraft moves toward its server position
// per applied snapshot.
const remoteBlend = 0.1

// AircraftState is the replicated state of one player aircraft.
type AircraftState struct {
	Identifier  int32   `msgpack:"id"`
	X           float64 `msgpack:"x"`
	Y           float64 `msgpack:"y"`
	Hitpoints   int32   `msgpack:"hp"`
	MissileAmmo int32   `msgpack:"m"`
}

// Snapshot is the body of a server state broadcast.
type Snapshot struct {
	Tick         uint64          `msgpack:"tick"`
	BattlefieldY float64         `msgpack:"bf"` // bottom edge of the view
	WorldHeight  float64         `msgpack:"wh"`
	Aircraft     []AircraftState `msgpack:"ac"`
}

// Snapshot captures every tracked player aircraft.
func (w *World) Snapshot(tick uint64) Snapshot {
	s := Snapshot{
		Tick:         tick,
		BattlefieldY: w.ViewBounds().Bottom(),
		WorldHeight:  w.worldBounds.Height,
	}
	for _, a := range w.playerAircraft() {
		p := a.WorldPosition()
		s.Aircraft = append(s.Aircraft, AircraftState{
			Identifier:  a.identifier,
			X:           p[0],
			Y:           p[1],
			Hitpoints:   a.Hitpoints(),
			MissileAmmo: a.missileAmmo,
		})
	}
	return s
}

// ApplySnapshot folds server state into a client world. Aircraft for which
// local reports true keep their own position; the others drift toward the
// server's. Unknown identifiers are ignored.
func (w *World) ApplySnapshot(s Snapshot, local func(identifier int32) bool) {
	for _, st := range s.Aircraft {
		a := w.GetAircraft(st.Identifier)
		if a == nil {
			continue
		}
		a.SetHitpoints(st.Hitpoints)
		a.SetMissileAmmo(st.MissileAmmo)
		if local != nil && local(st.Identifier) {
			continue
		}
		n := a.Node()
		server := mgl64.Vec2{st.X, st.Y}
		n.SetPosition(n.Position.Add(server.Sub(n.Position).Mul(remoteBlend)))
	}
}

func EncodeSnapshot(s Snapshot) ([]byte, error) {
	b, err := msgpack.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
