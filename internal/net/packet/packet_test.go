package packet

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriter_LittleEndianLayout(t *testing.T) {
	w := NewWriter(S_PLAYER_REALTIME_CHANGE)
	w.WriteInt32(-2)
	w.WriteBool(true)
	assert.Equal(t, []byte{4, 0, 0, 0, 0xfe, 0xff, 0xff, 0xff, 1}, w.Bytes())
	assert.Equal(t, 9, w.Len())
}

func TestReader_Fields(t *testing.T) {
	data := BuildRealtimeChange(C_PLAYER_REALTIME_CHANGE, 7, 4, true)
	r := NewReader(data)
	assert.Equal(t, C_PLAYER_REALTIME_CHANGE, r.Type())
	assert.Equal(t, int32(7), r.ReadInt32())
	assert.Equal(t, int32(4), r.ReadInt32())
	assert.True(t, r.ReadBool())
	assert.Zero(t, r.Remaining())
	assert.NoError(t, r.Err())
}

func TestReader_ShortReadsReturnZero(t *testing.T) {
	r := NewReader([]byte{1, 0, 0, 0, 9})
	assert.Equal(t, int32(0), r.ReadInt32())
	assert.ErrorIs(t, r.Err(), ErrShortPacket)

	r = NewReader([]byte{1, 0})
	assert.Equal(t, int32(-1), r.Type())
	assert.False(t, r.ReadBool())
}

func TestString_NormalisedAndBounded(t *testing.T) {
	// "e" + combining acute composes to a single rune under NFC.
	data := BuildBroadcastMessage("cafe\u0301")
	r := NewReader(data)
	assert.Equal(t, "caf\u00e9", r.ReadString())

	long := strings.Repeat("x", MaxTextRunes+20)
	r = NewReader(BuildBroadcastMessage(long))
	assert.Len(t, r.ReadString(), MaxTextRunes)

	r = NewReader(BuildBroadcastMessage("a\x00b"))
	assert.Equal(t, "ab", r.ReadString())
	assert.NoError(t, r.Err())
}

func TestString_Unterminated(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 0, 'h', 'i'})
	assert.Equal(t, "hi", r.ReadString())
	assert.ErrorIs(t, r.Err(), ErrShortPacket)
}

func TestFloat32(t *testing.T) {
	r := NewReader(BuildSpawnPickup(2, 12.5, -3.25))
	assert.Equal(t, S_SPAWN_PICKUP, r.Type())
	assert.Equal(t, int32(2), r.ReadInt32())
	assert.Equal(t, float32(12.5), r.ReadFloat32())
	assert.Equal(t, float32(-3.25), r.ReadFloat32())
}

func TestInitialState(t *testing.T) {
	in := []AircraftInfo{{Identifier: 1, X: 10, Y: 20, Hitpoints: 100, Missiles: 2}, {Identifier: 3, X: -1, Y: 4, Hitpoints: 5}}
	r := NewReader(BuildInitialState(5000, 4200, in))
	require.Equal(t, S_INITIAL_STATE, r.Type())
	h, bf, out, err := ReadInitialState(r)
	require.NoError(t, err)
	assert.Equal(t, float32(5000), h)
	assert.Equal(t, float32(4200), bf)
	assert.Equal(t, in, out)
}

func TestPositionUpdate_RejectsBogusCount(t *testing.T) {
	data := BuildPositionUpdate([]Position{{Identifier: 1, X: 2, Y: 3}})
	got, err := ReadPositionUpdate(NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []Position{{Identifier: 1, X: 2, Y: 3}}, got)

	w := NewWriter(C_POSITION_UPDATE)
	w.WriteInt32(1 << 20)
	_, err = ReadPositionUpdate(NewReader(w.Bytes()))
	assert.ErrorIs(t, err, ErrShortPacket)
}

func TestUpdateClientState_CarriesBody(t *testing.T) {
	r := NewReader(BuildUpdateClientState([]byte{0x81, 0xa1}))
	assert.Equal(t, S_UPDATE_CLIENT_STATE, r.Type())
	assert.Equal(t, []byte{0x81, 0xa1}, r.Rest())
}

func TestClientName(t *testing.T) {
	assert.Equal(t, "PositionUpdate", ClientName(C_POSITION_UPDATE))
	assert.Equal(t, "Unknown(42)", ClientName(42))
}

func TestRegistry_Dispatch(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got []int32
	reg.Register(C_PLAYER_EVENT, []SessionState{StateInGame}, func(sess any, r *Reader) {
		got = append(got, sess.(int32), r.ReadInt32(), r.ReadInt32())
	})

	require.NoError(t, reg.Dispatch(int32(9), StateInGame, BuildPlayerEvent(C_PLAYER_EVENT, 1, 5)))
	assert.Equal(t, []int32{9, 1, 5}, got)

	err := reg.Dispatch(int32(9), StateConnected, BuildPlayerEvent(C_PLAYER_EVENT, 1, 5))
	assert.Error(t, err, "state gate")

	assert.NoError(t, reg.Dispatch(nil, StateInGame, BuildQuit()), "unknown types are ignored")
	assert.Error(t, reg.Dispatch(nil, StateInGame, []byte{1}))
}

func TestRegistry_RecoversPanics(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(C_GAME_EVENT, []SessionState{StateInGame}, func(any, *Reader) {
		panic(errors.New("boom"))
	})
	err := reg.Dispatch(nil, StateInGame, BuildGameEvent(0, 1, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GameEvent")
}
