// Package server implements the authoritative process: TCP accept loop,
// per-connection sessions, and the fixed-tick simulation loop (§4.1, §6).
package server

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
)

// inQueueSize/outQueueSize bound the per-connection frame backlog so memory
// cannot grow unbounded: a full InQueue makes the reader wait, and a full
// OutQueue disconnects the slow client.
const (
	inQueueSize  = 256
	outQueueSize = 256

	// ratePerSecond/rateBurst bound how many frames one connection may send
	// per second before the connection is closed; sized generously
	// above the 30Hz tick rate to allow a few catch-up frames.
	ratePerSecond = 60
	rateBurst     = 120
)

// Session is one client connection. Network I/O runs in dedicated reader
// and writer goroutines; the per-session dispatcher in run.go drains
// InQueue into the Hub, and Send pushes payloads onto OutQueue.
type Session struct {
	ID         uint64
	EntityID   uint64 // set once the character enters the world
	conn       net.Conn
	limiter    *rate.Limiter
	writeMu    sync.Mutex
	state      atomic.Int32

	InQueue  chan []byte
	OutQueue chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

// SessionState tracks the handshake lifecycle of one connection.
type SessionState int32

const (
	StateHandshake SessionState = iota
	StateReadyForGame
	StateDisconnecting
)

// NewSession wraps conn with read/write queues and a per-connection rate
// limiter, grounded on the same shape as a bare TCP game-server session.
func NewSession(conn net.Conn, id uint64, log *zap.Logger) *Session {
	s := &Session{
		ID:       id,
		conn:     conn,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), rateBurst),
		InQueue:  make(chan []byte, inQueueSize),
		OutQueue: make(chan []byte, outQueueSize),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(StateHandshake))
	return s
}

func (s *Session) State() SessionState    { return SessionState(s.state.Load()) }
func (s *Session) SetState(st SessionState) { s.state.Store(int32(st)) }
func (s *Session) IsClosed() bool          { return s.closed.Load() }

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send queues an encoded message payload for the writer goroutine, which
// adds the length-prefixed frame.
// Non-blocking: a full OutQueue means the client is too slow to keep up
// and is disconnected rather than let the server block on it.
func (s *Session) Send(payload []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- payload:
	default:
		s.log.Warn("output queue full, disconnecting slow client")
		s.Close()
	}
}

// Close is idempotent and safe to call from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) readLoop() {
	defer s.Close()
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		payload, err := protocol.ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		if !s.limiter.Allow() {
			s.log.Warn("rate limit exceeded, disconnecting")
			return
		}

		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()
	for {
		select {
		case payload := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := protocol.WriteFrame(s.conn, payload); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
