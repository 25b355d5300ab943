package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/quadchess-backend/internal/model"
	"golang.org/x/exp/slices"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// session is one hosted game. Reads take mu.RLock, anything that changes the
// game takes mu.Lock.
type session struct {
	id          string
	game        *model.Game
	createdAt   time.Time
	archived    bool
	connections *connections
	mu          sync.RWMutex
}

type GameManager struct {
	sessions map[string]*session
	mu       sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{
		sessions: make(map[string]*session),
	}
}

func (gm *GameManager) CreateGame(gameID string, rules model.Rules) error {
	game, err := model.NewGame(rules)
	if err != nil {
		return err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if _, exists := gm.sessions[gameID]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}
	gm.sessions[gameID] = &session{
		id:          gameID,
		game:        game,
		createdAt:   time.Now(),
		connections: newConnections(gameID),
	}
	return nil
}

func (gm *GameManager) get(gameID string) (*session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, exists := gm.sessions[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return s, nil
}

func (gm *GameManager) Exists(gameID string) bool {
	_, err := gm.get(gameID)
	return err == nil
}

// Remove drops a game and closes its sockets.
func (gm *GameManager) Remove(gameID string) error {
	gm.mu.Lock()
	s, exists := gm.sessions[gameID]
	delete(gm.sessions, gameID)
	gm.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	s.connections.closeAll()
	return nil
}

// List returns hosted game ids, oldest first.
func (gm *GameManager) List() []string {
	gm.mu.RLock()
	all := make([]*session, 0, len(gm.sessions))
	for _, s := range gm.sessions {
		all = append(all, s)
	}
	gm.mu.RUnlock()

	slices.SortFunc(all, func(a, b *session) bool {
		if a.createdAt.Equal(b.createdAt) {
			return a.id < b.id
		}
		return a.createdAt.Before(b.createdAt)
	})
	ids := make([]string, len(all))
	for i, s := range all {
		ids[i] = s.id
	}
	return ids
}
