package service

import (
	"errors"
	"sync"

	"github.com/benbeisheim/quadchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	log "github.com/sirupsen/logrus"
)

// sendBuffer is how many frames may wait for a slow client before it is dropped.
const sendBuffer = 32

// ErrConnectionExists is returned when a client opens a second socket on a game.
var ErrConnectionExists = errors.New("connection already exists")

// Conn is the part of a websocket connection the service writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Socket is the single writer of one websocket. Frames are queued with Send
// and written in order by one goroutine, so the underlying connection never
// sees two writes at once.
type Socket struct {
	gameID   string
	clientID string
	conn     Conn
	out      chan ws.Message
	done     chan struct{}
	finished chan struct{}
	once     sync.Once
	onFail   func(*Socket)
	// closeConn is set before done is closed and read after it.
	closeConn bool
}

func newSocket(gameID, clientID string, conn Conn, onFail func(*Socket)) *Socket {
	s := &Socket{
		gameID:   gameID,
		clientID: clientID,
		conn:     conn,
		out:      make(chan ws.Message, sendBuffer),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		onFail:   onFail,
	}
	go s.run()
	return s
}

func (s *Socket) logger() *log.Entry {
	return log.WithFields(log.Fields{"game": s.gameID, "client": s.clientID})
}

func (s *Socket) run() {
	defer close(s.finished)
	for {
		select {
		case msg := <-s.out:
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger().WithError(err).Warn("dropping connection after failed write")
				s.shutdown(false)
				if s.onFail != nil {
					s.onFail(s)
				}
				return
			}
		case <-s.done:
			if s.closeConn {
				s.conn.Close()
			}
			return
		}
	}
}

// Send queues msg without blocking. It reports false when the socket is shut
// down or its buffer is full.
func (s *Socket) Send(msg ws.Message) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.out <- msg:
		return true
	default:
		return false
	}
}

func (s *Socket) shutdown(closeConn bool) {
	s.once.Do(func() {
		s.closeConn = closeConn
		close(s.done)
	})
}

// stop ends the writer and waits for it. The connection itself is left open.
func (s *Socket) stop() {
	s.shutdown(false)
	<-s.finished
}

// connections are the live sockets watching one game, one per client.
type connections struct {
	gameID   string
	byClient map[string]*Socket
	mu       sync.RWMutex
}

func newConnections(gameID string) *connections {
	return &connections{gameID: gameID, byClient: make(map[string]*Socket)}
}

// add starts a writer for conn under clientID. A client that already has a
// socket on this game keeps it and the new connection is closed.
func (cs *connections) add(clientID string, conn Conn) (*Socket, error) {
	cs.mu.Lock()
	if _, exists := cs.byClient[clientID]; exists {
		cs.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ErrConnectionExists.Error()),
		)
		conn.Close()
		return nil, ErrConnectionExists
	}
	s := newSocket(cs.gameID, clientID, conn, cs.drop)
	cs.byClient[clientID] = s
	cs.mu.Unlock()
	return s, nil
}

// drop forgets s if it is still the registered socket of its client.
func (cs *connections) drop(s *Socket) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if current, ok := cs.byClient[s.clientID]; ok && current == s {
		delete(cs.byClient, s.clientID)
	}
}

// remove drops s and waits for its writer to finish.
func (cs *connections) remove(s *Socket) {
	cs.drop(s)
	s.stop()
}

func (cs *connections) count() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.byClient)
}

// broadcast queues msg on every socket. Callers hold the session lock so
// every client receives states in the order they were produced. A client
// that cannot keep up is disconnected.
func (cs *connections) broadcast(msg ws.Message) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for clientID, s := range cs.byClient {
		if s.Send(msg) {
			continue
		}
		s.logger().Warn("dropping connection that stopped accepting frames")
		delete(cs.byClient, clientID)
		s.shutdown(true)
	}
}

// closeAll shuts every socket and waits until each connection is closed.
func (cs *connections) closeAll() {
	cs.mu.Lock()
	all := make([]*Socket, 0, len(cs.byClient))
	for id, s := range cs.byClient {
		all = append(all, s)
		delete(cs.byClient, id)
	}
	cs.mu.Unlock()

	for _, s := range all {
		s.shutdown(true)
		<-s.finished
	}
}
