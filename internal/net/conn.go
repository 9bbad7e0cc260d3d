package net

import (
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is a framed, bidirectional packet stream. TCP connections frame with
// a length prefix; WebSocket connections carry one packet per binary message.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

// NewStreamConn frames packets over a byte stream.
func NewStreamConn(c net.Conn) Conn { return streamConn{c} }

type streamConn struct {
	net.Conn
}

func (c streamConn) ReadFrame() ([]byte, error)   { return ReadFrame(c.Conn) }
func (c streamConn) WriteFrame(data []byte) error { return WriteFrame(c.Conn, data) }
func (c streamConn) RemoteAddr() string           { return c.Conn.RemoteAddr().String() }

var errTextMessage = errors.New("websocket text message")

// NewWebSocketConn carries one packet per binary WebSocket message.
func NewWebSocketConn(c *websocket.Conn) Conn {
	c.SetReadLimit(MaxPayload)
	return wsConn{c}
}

type wsConn struct {
	*websocket.Conn
}

func (c wsConn) ReadFrame() ([]byte, error) {
	typ, data, err := c.Conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if typ != websocket.BinaryMessage {
		return nil, errTextMessage
	}
	if err := checkPayload(len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

func (c wsConn) WriteFrame(data []byte) error {
	if err := checkPayload(len(data)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.BinaryMessage, data)
}

func (c wsConn) RemoteAddr() string { return c.Conn.RemoteAddr().String() }
