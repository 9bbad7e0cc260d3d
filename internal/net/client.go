package net

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/skyraid/server/internal/net/packet"
	"github.com/skyraid/server/internal/player"
)

// Dial connects to a server over TCP and starts the session.
func Dial(addr string, opts SessionOptions, log *zap.Logger) (*Session, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	sess := NewSession(NewStreamConn(conn), 0, opts, log)
	sess.Start()
	return sess, nil
}

var errSessionClosed = errors.New("session closed")

// PlayerSender forwards a local player's input to the server over a session.
type PlayerSender struct {
	Session *Session
}

var _ player.Sender = PlayerSender{}

func (p PlayerSender) SendPlayerEvent(identifier int32, action player.Action) error {
	if p.Session.IsClosed() {
		return errSessionClosed
	}
	p.Session.Send(packet.BuildPlayerEvent(packet.C_PLAYER_EVENT, identifier, int32(action)))
	return nil
}

func (p PlayerSender) SendRealtimeChange(identifier int32, action player.Action, enabled bool) error {
	if p.Session.IsClosed() {
		return errSessionClosed
	}
	p.Session.Send(packet.BuildRealtimeChange(packet.C_PLAYER_REALTIME_CHANGE, identifier, int32(action), enabled))
	return nil
}
