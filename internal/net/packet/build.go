package packet

// Packet builders. Positions travel as float32 pairs.

func BuildBroadcastMessage(text string) []byte {
	w := NewWriter(S_BROADCAST_MESSAGE)
	w.WriteString(text)
	return w.Bytes()
}

func BuildSpawnSelf(identifier int32, x, y float32) []byte {
	w := NewWriter(S_SPAWN_SELF)
	w.WriteInt32(identifier)
	w.WriteFloat32(x)
	w.WriteFloat32(y)
	return w.Bytes()
}

// AircraftInfo is one entry of the initial state packet.
type AircraftInfo struct {
	Identifier int32
	X, Y       float32
	Hitpoints  int32
	Missiles   int32
}

func BuildInitialState(worldHeight, battlefieldY float32, aircraft []AircraftInfo) []byte {
	w := NewWriter(S_INITIAL_STATE)
	w.WriteFloat32(worldHeight)
	w.WriteFloat32(battlefieldY)
	w.WriteInt32(int32(len(aircraft)))
	for _, a := range aircraft {
		w.WriteInt32(a.Identifier)
		w.WriteFloat32(a.X)
		w.WriteFloat32(a.Y)
		w.WriteInt32(a.Hitpoints)
		w.WriteInt32(a.Missiles)
	}
	return w.Bytes()
}

// ReadInitialState decodes the body of S_INITIAL_STATE.
func ReadInitialState(r *Reader) (worldHeight, battlefieldY float32, aircraft []AircraftInfo, err error) {
	worldHeight = r.ReadFloat32()
	battlefieldY = r.ReadFloat32()
	n := r.ReadInt32()
	if n < 0 || int(n)*20 > r.Remaining() {
		return 0, 0, nil, ErrShortPacket
	}
	aircraft = make([]AircraftInfo, n)
	for i := range aircraft {
		aircraft[i] = AircraftInfo{
			Identifier: r.ReadInt32(),
			X:          r.ReadFloat32(),
			Y:          r.ReadFloat32(),
			Hitpoints:  r.ReadInt32(),
			Missiles:   r.ReadInt32(),
		}
	}
	return worldHeight, battlefieldY, aircraft, r.Err()
}

// BuildPlayerEvent builds the event packet of either direction; the two
// share a layout.
func BuildPlayerEvent(packetType, identifier, action int32) []byte {
	w := NewWriter(packetType)
	w.WriteInt32(identifier)
	w.WriteInt32(action)
	return w.Bytes()
}

func BuildRealtimeChange(packetType, identifier, action int32, enabled bool) []byte {
	w := NewWriter(packetType)
	w.WriteInt32(identifier)
	w.WriteInt32(action)
	w.WriteBool(enabled)
	return w.Bytes()
}

func BuildPlayerConnect(identifier int32, x, y float32) []byte {
	w := NewWriter(S_PLAYER_CONNECT)
	w.WriteInt32(identifier)
	w.WriteFloat32(x)
	w.WriteFloat32(y)
	return w.Bytes()
}

func BuildPlayerDisconnect(identifier int32) []byte {
	w := NewWriter(S_PLAYER_DISCONNECT)
	w.WriteInt32(identifier)
	return w.Bytes()
}

func BuildAcceptCoopPartner(identifier int32, x, y float32) []byte {
	w := NewWriter(S_ACCEPT_COOP_PARTNER)
	w.WriteInt32(identifier)
	w.WriteFloat32(x)
	w.WriteFloat32(y)
	return w.Bytes()
}

func BuildSpawnEnemy(aircraftType int32, x, y float32) []byte {
	w := NewWriter(S_SPAWN_ENEMY)
	w.WriteInt32(aircraftType)
	w.WriteFloat32(x)
	w.WriteFloat32(y)
	return w.Bytes()
}

func BuildSpawnPickup(pickupType int32, x, y float32) []byte {
	w := NewWriter(S_SPAWN_PICKUP)
	w.WriteInt32(pickupType)
	w.WriteFloat32(x)
	w.WriteFloat32(y)
	return w.Bytes()
}

// BuildUpdateClientState wraps an encoded state snapshot.
func BuildUpdateClientState(snapshot []byte) []byte {
	w := NewWriter(S_UPDATE_CLIENT_STATE)
	w.WriteBytes(snapshot)
	return w.Bytes()
}

func BuildMissionSuccess() []byte {
	return NewWriter(S_MISSION_SUCCESS).Bytes()
}

// Position is one entry of C_POSITION_UPDATE.
type Position struct {
	Identifier int32
	X, Y       float32
}

func BuildPositionUpdate(positions []Position) []byte {
	w := NewWriter(C_POSITION_UPDATE)
	w.WriteInt32(int32(len(positions)))
	for _, p := range positions {
		w.WriteInt32(p.Identifier)
		w.WriteFloat32(p.X)
		w.WriteFloat32(p.Y)
	}
	return w.Bytes()
}

// ReadPositionUpdate decodes the body of C_POSITION_UPDATE.
func ReadPositionUpdate(r *Reader) ([]Position, error) {
	n := r.ReadInt32()
	if n < 0 || int(n)*12 > r.Remaining() {
		return nil, ErrShortPacket
	}
	out := make([]Position, n)
	for i := range out {
		out[i] = Position{Identifier: r.ReadInt32(), X: r.ReadFloat32(), Y: r.ReadFloat32()}
	}
	return out, r.Err()
}

func BuildGameEvent(actionType int32, x, y float32) []byte {
	w := NewWriter(C_GAME_EVENT)
	w.WriteInt32(actionType)
	w.WriteFloat32(x)
	w.WriteFloat32(y)
	return w.Bytes()
}

func BuildRequestCoopPartner() []byte {
	return NewWriter(C_REQUEST_COOP_PARTNER).Bytes()
}

func BuildQuit() []byte {
	return NewWriter(C_QUIT).Bytes()
}
