package packet

import "fmt"

// Client packet types (client → server).
const (
	C_PLAYER_EVENT           int32 = 0
	C_PLAYER_REALTIME_CHANGE int32 = 1
	C_REQUEST_COOP_PARTNER   int32 = 2
	C_POSITION_UPDATE        int32 = 3
	C_GAME_EVENT             int32 = 4
	C_QUIT                   int32 = 5
)

// Server packet types (server → client).
const (
	S_BROADCAST_MESSAGE      int32 = 0
	S_SPAWN_SELF             int32 = 1
	S_INITIAL_STATE          int32 = 2
	S_PLAYER_EVENT           int32 = 3
	S_PLAYER_REALTIME_CHANGE int32 = 4
	S_PLAYER_CONNECT         int32 = 5
	S_PLAYER_DISCONNECT      int32 = 6
	S_ACCEPT_COOP_PARTNER    int32 = 7
	S_SPAWN_ENEMY            int32 = 8
	S_SPAWN_PICKUP           int32 = 9
	S_UPDATE_CLIENT_STATE    int32 = 10
	S_MISSION_SUCCESS        int32 = 11
)

var clientNames = [...]string{
	"PlayerEvent", "PlayerRealtimeChange", "RequestCoopPartner",
	"PositionUpdate", "GameEvent", "Quit",
}

// ClientName names a client packet type for logs.
func ClientName(t int32) string {
	if t >= 0 && int(t) < len(clientNames) {
		return clientNames[t]
	}
	return fmt.Sprintf("Unknown(%d)", t)
}

// MaxTextRunes bounds broadcast text and any other string field.
const MaxTextRunes = 128
