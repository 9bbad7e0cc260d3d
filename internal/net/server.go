// Package net accepts client connections over TCP and WebSocket and moves
// framed packets between them and the game loop.
package net

import (
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/skyraid/server/internal/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server accepts connections and creates Sessions.
// New/dead sessions are communicated to the game loop via channels.
type Server struct {
	listener   net.Listener
	wsListener net.Listener // nil when WebSocket is disabled
	httpServer *http.Server
	nextID     atomic.Uint64
	newConns   chan *Session
	deadCh     chan uint64 // session IDs of dead sessions
	opts       SessionOptions
	log        *zap.Logger
	closeCh    chan struct{}
}

func NewServer(cfg config.NetworkConfig, packetsPerSecond int, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.BindAddress)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: ln,
		newConns: make(chan *Session, 64),
		deadCh:   make(chan uint64, 64),
		opts: SessionOptions{
			InQueueSize:      cfg.InQueueSize,
			OutQueueSize:     cfg.OutQueueSize,
			PacketsPerSecond: packetsPerSecond,
			ReadTimeout:      cfg.ReadTimeout,
			WriteTimeout:     cfg.WriteTimeout,
		},
		log:     log,
		closeCh: make(chan struct{}),
	}
	if cfg.WSAddress != "" {
		wsln, err := net.Listen("tcp", cfg.WSAddress)
		if err != nil {
			ln.Close()
			return nil, err
		}
		s.wsListener = wsln
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", s.serveWS)
		s.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	}
	return s, nil
}

// AcceptLoop runs in its own goroutine. It accepts TCP connections and, when
// configured, serves WebSocket upgrades until Shutdown.
func (s *Server) AcceptLoop() {
	if s.httpServer != nil {
		go func() {
			if err := s.httpServer.Serve(s.wsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("websocket listener stopped", zap.Error(err))
			}
		}()
	}
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}
		s.admit(NewStreamConn(conn))
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	s.admit(NewWebSocketConn(conn))
}

func (s *Server) admit(conn Conn) {
	id := s.nextID.Add(1)
	sess := NewSession(conn, id, s.opts, s.log)
	sess.onClose = s.NotifyDead
	sess.Start()

	s.log.Info("client connected", zap.Uint64("session", id), zap.String("ip", sess.IP))

	select {
	case s.newConns <- sess:
	default:
		s.log.Warn("connection queue full, rejecting client")
		sess.Close()
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// NotifyDead reports a dead session ID to the game loop.
func (s *Server) NotifyDead(sessionID uint64) {
	select {
	case s.deadCh <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of dead session IDs.
func (s *Server) DeadSessions() <-chan uint64 {
	return s.deadCh
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
	if s.httpServer != nil {
		s.httpServer.Close()
	}
}

// Addr returns the TCP listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// WSAddr returns the WebSocket listener's address, or nil when disabled.
func (s *Server) WSAddr() net.Addr {
	if s.wsListener == nil {
		return nil
	}
	return s.wsListener.Addr()
}
