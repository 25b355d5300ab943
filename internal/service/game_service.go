package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbeisheim/quadchess-backend/internal/model"
	"github.com/benbeisheim/quadchess-backend/internal/storage"
	"github.com/benbeisheim/quadchess-backend/internal/ws"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ResultStore archives finished games.
type ResultStore interface {
	RecordResult(storage.GameResult) error
	LoadStats() (*storage.Stats, error)
	Results(limit int) ([]storage.GameResult, error)
}

// GameView is what clients see of a game.
type GameView struct {
	ID    string           `json:"id"`
	State model.GameState  `json:"state"`
	Board [][]model.Square `json:"board"`
}

type GameService struct {
	gameManager *GameManager
	store       ResultStore
	rules       model.Rules
	newID       func() string
}

func NewGameService(gameManager *GameManager, store ResultStore, rules model.Rules) *GameService {
	return &GameService{
		gameManager: gameManager,
		store:       store,
		rules:       rules,
		newID:       func() string { return uuid.New().String() },
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := gs.newID()

	if err := gs.gameManager.CreateGame(gameID, gs.rules); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	log.WithField("game", gameID).Info("game created")
	return gameID, nil
}

func (gs *GameService) ListGames() []string {
	return gs.gameManager.List()
}

func (gs *GameService) GameExists(gameID string) bool {
	return gs.gameManager.Exists(gameID)
}

func (gs *GameService) RemoveGame(gameID string) error {
	if err := gs.gameManager.Remove(gameID); err != nil {
		return err
	}
	log.WithField("game", gameID).Info("game removed")
	return nil
}

func view(s *session) GameView {
	return GameView{
		ID:    s.id,
		State: s.game.State(),
		Board: s.game.Squares(),
	}
}

// read runs fn under the session's read lock.
func (gs *GameService) read(gameID string, fn func(*session) error) error {
	s, err := gs.gameManager.get(gameID)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s)
}

// write runs fn under the session's write lock, archives the game if fn
// finished it, then queues the new state on every socket before releasing
// the lock so clients see states in order.
func (gs *GameService) write(gameID string, fn func(*session) error) (GameView, error) {
	s, err := gs.gameManager.get(gameID)
	if err != nil {
		return GameView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s); err != nil {
		return GameView{}, err
	}
	gs.archiveIfOver(s)
	v := view(s)
	gs.broadcast(s, v)
	return v, nil
}

func (gs *GameService) GetGameState(gameID string) (GameView, error) {
	var v GameView
	err := gs.read(gameID, func(s *session) error {
		v = view(s)
		return nil
	})
	return v, err
}

func (gs *GameService) LegalMoves(gameID string, from model.Position) ([]model.Position, error) {
	var moves []model.Position
	err := gs.read(gameID, func(s *session) error {
		var err error
		moves, err = s.game.LegalMovesFor(from)
		return err
	})
	return moves, err
}

func (gs *GameService) CurrentTurn(gameID string) (model.Color, error) {
	var turn model.Color
	err := gs.read(gameID, func(s *session) error {
		turn = s.game.CurrentTurn()
		return nil
	})
	return turn, err
}

func (gs *GameService) Snapshot(gameID string) (model.Snapshot, error) {
	var snap model.Snapshot
	err := gs.read(gameID, func(s *session) error {
		snap = s.game.Snapshot()
		return nil
	})
	return snap, err
}

func (gs *GameService) History(gameID string) ([]model.Move, error) {
	var moves []model.Move
	err := gs.read(gameID, func(s *session) error {
		moves = s.game.History()
		return nil
	})
	return moves, err
}

func (gs *GameService) Select(gameID string, p model.Position) (GameView, error) {
	return gs.write(gameID, func(s *session) error {
		_, err := s.game.Select(p)
		return gs.logged(gameID, "select", err)
	})
}

func (gs *GameService) Deselect(gameID string) (GameView, error) {
	return gs.write(gameID, func(s *session) error {
		s.game.Deselect()
		return nil
	})
}

func (gs *GameService) HandleMove(gameID string, req model.MoveRequest) (model.MoveResult, error) {
	var result model.MoveResult
	_, err := gs.write(gameID, func(s *session) error {
		res, err := s.game.ApplyMove(req)
		if err != nil {
			return gs.logged(gameID, "move", err, log.Fields{"from": req.From, "to": req.To})
		}
		result = res

		entry := log.WithFields(log.Fields{
			"game": gameID,
			"move": fmt.Sprintf("%s-%s", req.From, req.To),
			"turn": res.Turn,
		})
		for _, e := range res.Eliminated {
			entry.WithFields(log.Fields{"color": e.Color, "reason": e.Reason}).Info("color eliminated")
		}
		entry.Debug("move applied")
		return nil
	})
	return result, err
}

func (gs *GameService) Resign(gameID string, c model.Color) (GameView, error) {
	return gs.write(gameID, func(s *session) error {
		if err := s.game.Resign(c); err != nil {
			return gs.logged(gameID, "resign", err, log.Fields{"color": c})
		}
		log.WithFields(log.Fields{"game": gameID, "color": c}).Info("color resigned")
		return nil
	})
}

// logged records a failed game operation at a level matching its cause and
// returns err wrapped with the operation name.
func (gs *GameService) logged(gameID, op string, err error, fields ...log.Fields) error {
	if err == nil {
		return nil
	}
	entry := log.WithFields(log.Fields{"game": gameID, "op": op})
	for _, f := range fields {
		entry = entry.WithFields(f)
	}
	if errors.Is(err, model.ErrBoardConsistency) {
		entry.WithError(err).Error("board consistency violated")
	} else {
		entry.WithError(err).Debug("rejected")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// archiveIfOver records a finished game once. Callers hold s.mu.
func (gs *GameService) archiveIfOver(s *session) {
	if s.archived || gs.store == nil {
		return
	}
	state := s.game.State()
	if !state.Over {
		return
	}
	result := storage.GameResult{
		GameID:     s.id,
		Winners:    state.Winners,
		Draw:       len(state.Winners) == 0,
		Eliminated: state.Eliminated,
		Moves:      state.MoveCount,
		FinishedAt: time.Now().UTC(),
	}
	if err := gs.store.RecordResult(result); err != nil {
		log.WithField("game", s.id).WithError(err).Error("failed to archive result")
		return
	}
	s.archived = true
	log.WithFields(log.Fields{"game": s.id, "winners": state.Winners}).Info("game over")
}

func (gs *GameService) Stats() (*storage.Stats, error) {
	if gs.store == nil {
		return storage.NewStats(), nil
	}
	return gs.store.LoadStats()
}

func (gs *GameService) RecentResults(limit int) ([]storage.GameResult, error) {
	if gs.store == nil {
		return []storage.GameResult{}, nil
	}
	return gs.store.Results(limit)
}

// RegisterConnection attaches a socket to a game and queues the current state
// as its first frame. Everything later sent to the client must go through the
// returned Socket.
func (gs *GameService) RegisterConnection(gameID, clientID string, conn Conn) (*Socket, error) {
	s, err := gs.gameManager.get(gameID)
	if err != nil {
		return nil, err
	}
	logger := log.WithFields(log.Fields{"game": gameID, "client": clientID})

	s.mu.RLock()
	defer s.mu.RUnlock()
	sock, err := s.connections.add(clientID, conn)
	if err != nil {
		logger.Warn("duplicate connection rejected")
		return nil, err
	}
	logger.Info("connection registered")

	msg, err := ws.NewMessage(ws.MessageTypeGameState, view(s))
	if err != nil {
		s.connections.remove(sock)
		return nil, err
	}
	sock.Send(msg)
	return sock, nil
}

// UnregisterConnection detaches sock and waits for its writer to stop.
func (gs *GameService) UnregisterConnection(gameID string, sock *Socket) {
	if sock == nil {
		return
	}
	s, err := gs.gameManager.get(gameID)
	if err != nil {
		sock.stop()
		return
	}
	s.connections.remove(sock)
	log.WithFields(log.Fields{"game": gameID, "client": sock.clientID}).Info("connection unregistered")
}

// broadcast queues v on every socket of s. Callers hold s.mu.
func (gs *GameService) broadcast(s *session, v GameView) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, v)
	if err != nil {
		log.WithField("game", s.id).WithError(err).Error("failed to encode game state")
		return
	}
	s.connections.broadcast(msg)
}
