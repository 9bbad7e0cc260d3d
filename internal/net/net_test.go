package net

import (
	"bytes"
	gonet "net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/config"
	"github.com/skyraid/server/internal/net/packet"
	"github.com/skyraid/server/internal/player"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte{1, 2, 3, 4, 5}))
	assert.Equal(t, []byte{7, 0, 1, 2, 3, 4, 5}, buf.Bytes())

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got)
}

func TestFrame_Invalid(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{2, 0}))
	assert.ErrorIs(t, err, ErrFrameLength)

	_, err = ReadFrame(bytes.NewReader([]byte{5, 0, 1, 2, 3}))
	assert.ErrorIs(t, err, ErrFrameLength, "shorter than a packet type")

	_, err = ReadFrame(bytes.NewReader([]byte{9, 0, 1}))
	assert.Error(t, err)

	assert.ErrorIs(t, WriteFrame(&bytes.Buffer{}, nil), ErrFrameLength)
	assert.ErrorIs(t, WriteFrame(&bytes.Buffer{}, []byte{1, 2, 3}), ErrFrameLength)
	assert.ErrorIs(t, WriteFrame(&bytes.Buffer{}, make([]byte, MaxPayload+1)), ErrFrameLength)
}

func pipeSessions(t *testing.T, opts SessionOptions) (*Session, *Session) {
	t.Helper()
	a, b := gonet.Pipe()
	sa := NewSession(NewStreamConn(a), 1, opts, zap.NewNop())
	sb := NewSession(NewStreamConn(b), 2, opts, zap.NewNop())
	sa.Start()
	sb.Start()
	t.Cleanup(func() {
		sa.Close()
		sb.Close()
	})
	return sa, sb
}

func receive(t *testing.T, s *Session) []byte {
	t.Helper()
	select {
	case data := <-s.InQueue:
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for packet")
		return nil
	}
}

func TestSession_SendIsBufferedUntilFlush(t *testing.T) {
	client, server := pipeSessions(t, SessionOptions{InQueueSize: 4, OutQueueSize: 4})

	client.Send(packet.BuildQuit())
	select {
	case <-server.InQueue:
		t.Fatal("packet delivered before flush")
	case <-time.After(50 * time.Millisecond):
	}

	client.FlushOutput()
	assert.Equal(t, packet.BuildQuit(), receive(t, server))
}

func TestSession_PlayerSender(t *testing.T) {
	client, server := pipeSessions(t, SessionOptions{InQueueSize: 8, OutQueueSize: 8})
	p := player.New(3, player.DefaultKeyBinding(1), PlayerSender{Session: client}, nil)

	p.DisableAllRealtimeActions()
	client.FlushOutput()

	for a := player.MoveLeft; a <= player.Fire; a++ {
		r := packet.NewReader(receive(t, server))
		assert.Equal(t, packet.C_PLAYER_REALTIME_CHANGE, r.Type())
		assert.Equal(t, int32(3), r.ReadInt32())
		assert.Equal(t, int32(a), r.ReadInt32())
		assert.False(t, r.ReadBool())
	}
}

func TestSession_CloseIsIdempotentAndNotifies(t *testing.T) {
	a, _ := gonet.Pipe()
	s := NewSession(NewStreamConn(a), 9, SessionOptions{InQueueSize: 1, OutQueueSize: 1}, zap.NewNop())
	var notified []uint64
	s.onClose = func(id uint64) { notified = append(notified, id) }

	s.Close()
	s.Close()
	assert.True(t, s.IsClosed())
	assert.Equal(t, packet.StateDisconnecting, s.State())
	assert.Equal(t, []uint64{9}, notified)

	s.Send([]byte{1, 0, 0, 0})
	assert.Empty(t, s.outBuf, "closed sessions drop sends")

	err := PlayerSender{Session: s}.SendPlayerEvent(1, player.LaunchMissile)
	assert.Error(t, err)
}

func TestSession_FullOutQueueDisconnects(t *testing.T) {
	a, _ := gonet.Pipe()
	s := NewSession(NewStreamConn(a), 1, SessionOptions{InQueueSize: 1, OutQueueSize: 1}, zap.NewNop())
	s.Send([]byte{1, 0, 0, 0})
	s.Send([]byte{2, 0, 0, 0})
	s.FlushOutput()
	assert.True(t, s.IsClosed())
}

func TestSession_RateLimit(t *testing.T) {
	a, b := gonet.Pipe()
	s := NewSession(NewStreamConn(b), 1, SessionOptions{InQueueSize: 16, OutQueueSize: 1, PacketsPerSecond: 2}, zap.NewNop())
	s.Start()
	defer s.Close()

	go func() {
		for i := 0; i < 5; i++ {
			if WriteFrame(a, packet.BuildQuit()) != nil {
				return
			}
		}
	}()

	assert.Eventually(t, s.IsClosed, 2*time.Second, 10*time.Millisecond)
	assert.LessOrEqual(t, len(s.InQueue), 2)
}

func TestSession_Owns(t *testing.T) {
	s := &Session{Identifiers: []int32{1, 4}}
	assert.True(t, s.Owns(4))
	assert.False(t, s.Owns(2))
}

func testNetworkConfig() config.NetworkConfig {
	return config.NetworkConfig{
		BindAddress:  "127.0.0.1:0",
		WSAddress:    "127.0.0.1:0",
		InQueueSize:  8,
		OutQueueSize: 8,
		WriteTimeout: time.Second,
	}
}

func acceptOne(t *testing.T, srv *Server) *Session {
	t.Helper()
	select {
	case s := <-srv.NewSessions():
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no session accepted")
		return nil
	}
}

func TestServer_TCP(t *testing.T) {
	srv, err := NewServer(testNetworkConfig(), 0, zap.NewNop())
	require.NoError(t, err)
	go srv.AcceptLoop()
	defer srv.Shutdown()

	client, err := Dial(srv.Addr().String(), SessionOptions{InQueueSize: 4, OutQueueSize: 4}, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	sess := acceptOne(t, srv)
	assert.Equal(t, packet.StateConnected, sess.State())

	sess.Send(packet.BuildMissionSuccess())
	sess.FlushOutput()
	assert.Equal(t, packet.S_MISSION_SUCCESS, packet.NewReader(receive(t, client)).Type())

	client.Close()
	select {
	case id := <-srv.DeadSessions():
		assert.Equal(t, sess.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("dead session not reported")
	}
}

func TestServer_WebSocket(t *testing.T) {
	srv, err := NewServer(testNetworkConfig(), 0, zap.NewNop())
	require.NoError(t, err)
	go srv.AcceptLoop()
	defer srv.Shutdown()

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+srv.WSAddr().String()+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()

	sess := acceptOne(t, srv)
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, packet.BuildRequestCoopPartner()))
	assert.Equal(t, packet.C_REQUEST_COOP_PARTNER, packet.NewReader(receive(t, sess)).Type())

	sess.Send(packet.BuildPlayerDisconnect(4))
	sess.FlushOutput()
	typ, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)
	r := packet.NewReader(data)
	assert.Equal(t, packet.S_PLAYER_DISCONNECT, r.Type())
	assert.Equal(t, int32(4), r.ReadInt32())

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hi")))
	assert.Eventually(t, sess.IsClosed, 2*time.Second, 10*time.Millisecond, "text frames end the session")
}

func TestServer_WebSocketDisabled(t *testing.T) {
	cfg := testNetworkConfig()
	cfg.WSAddress = ""
	srv, err := NewServer(cfg, 0, zap.NewNop())
	require.NoError(t, err)
	defer srv.Shutdown()
	assert.Nil(t, srv.WSAddr())
}
