package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benbeisheim/quadchess-backend/internal/model"
	"github.com/dgraph-io/badger/v4"
	"golang.org/x/exp/slices"
)

const (
	keyStats         = "stats"
	gameResultPrefix = "game/"
)

var ErrNotFound = errors.New("not found")

// GameResult is the archived outcome of a finished game.
type GameResult struct {
	GameID     string              `json:"gameId"`
	Winners    []model.Color       `json:"winners"`
	Draw       bool                `json:"draw"`
	Eliminated []model.Elimination `json:"eliminated"`
	Moves      int                 `json:"moves"`
	FinishedAt time.Time           `json:"finishedAt"`
}

// Stats aggregates every recorded result.
type Stats struct {
	GamesPlayed          int                             `json:"gamesPlayed"`
	Draws                int                             `json:"draws"`
	WinsByColor          map[model.Color]int             `json:"winsByColor"`
	EliminationsByReason map[model.EliminationReason]int `json:"eliminationsByReason"`
	LongestGame          int                             `json:"longestGame"`
}

func NewStats() *Stats {
	return &Stats{
		WinsByColor:          make(map[model.Color]int),
		EliminationsByReason: make(map[model.EliminationReason]int),
	}
}

// Store wraps BadgerDB for the finished-game archive.
type Store struct {
	db *badger.DB
}

// Open opens the archive in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func resultKey(gameID string) []byte {
	return []byte(gameResultPrefix + gameID)
}

// RecordResult archives r and folds it into the stats in one transaction.
// Recording the same game twice is a no-op.
func (s *Store) RecordResult(r GameResult) error {
	if r.GameID == "" {
		return errors.New("result has no game id")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(resultKey(r.GameID))
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		stats, err := loadStats(txn)
		if err != nil {
			return err
		}
		stats.add(r)
		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}

		if err := txn.Set(resultKey(r.GameID), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
}

func (st *Stats) add(r GameResult) {
	st.GamesPlayed++
	if r.Draw || len(r.Winners) == 0 {
		st.Draws++
	}
	for _, c := range r.Winners {
		st.WinsByColor[c]++
	}
	for _, e := range r.Eliminated {
		st.EliminationsByReason[e.Reason]++
	}
	if r.Moves > st.LongestGame {
		st.LongestGame = r.Moves
	}
}

// LoadResult returns the archived result of gameID, or ErrNotFound.
func (s *Store) LoadResult(gameID string) (GameResult, error) {
	var r GameResult
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resultKey(gameID))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	return r, err
}

// LoadStats returns the aggregate stats, empty if nothing was recorded yet.
func (s *Store) LoadStats() (*Stats, error) {
	var stats *Stats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})
	return stats, err
}

func loadStats(txn *badger.Txn) (*Stats, error) {
	stats := NewStats()
	item, err := txn.Get([]byte(keyStats))
	if err == badger.ErrKeyNotFound {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	return stats, err
}

// Results lists archived results, most recently finished first. limit <= 0
// means all of them.
func (s *Store) Results(limit int) ([]GameResult, error) {
	results := []GameResult{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(gameResultPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var r GameResult
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return err
			}
			results = append(results, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b GameResult) bool {
		return a.FinishedAt.After(b.FinishedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
