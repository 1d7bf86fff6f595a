// Package memory holds games, phases and live state in process memory. It
// stands in for Postgres and Redis in service and handler tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/model"
)

// Store implements the game and phase repositories and the game cache.
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	games  map[string]model.Game
	phases map[string][]model.Phase // by game, in creation order
	orders map[string][]model.Order // by phase

	state  map[string]json.RawMessage
	staged map[string]map[string][]string // game -> power -> orders
	ready  map[string]map[string]bool
	timers map[string]time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		now:    time.Now,
		games:  make(map[string]model.Game),
		phases: make(map[string][]model.Phase),
		orders: make(map[string][]model.Order),
		state:  make(map[string]json.RawMessage),
		staged: make(map[string]map[string][]string),
		ready:  make(map[string]map[string]bool),
		timers: make(map[string]time.Time),
	}
}

// Create stores a game under a fresh id.
func (s *Store) Create(_ context.Context, g *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uuid.NewString()
	g.Status = model.StatusActive
	g.CreatedAt = s.now()
	s.games[g.ID] = cloneGame(*g)
	return nil
}

// FindByID returns a game, or nil if it does not exist.
func (s *Store) FindByID(_ context.Context, id string) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, nil
	}
	g = cloneGame(g)
	return &g, nil
}

// ListActive returns the games still in play, oldest first.
func (s *Store) ListActive(_ context.Context) ([]model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Game
	for _, g := range s.games {
		if g.Status == model.StatusActive {
			out = append(out, cloneGame(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SetFinished marks a game finished.
func (s *Store) SetFinished(_ context.Context, gameID string, winners []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		return nil
	}
	now := s.now()
	g.Status = model.StatusFinished
	g.Winners = append([]string{}, winners...)
	g.FinishedAt = &now
	s.games[gameID] = g
	return nil
}

// CreatePhase appends an unresolved phase to a game.
func (s *Store) CreatePhase(_ context.Context, gameID string, year int, season, phaseType string, stateBefore json.RawMessage, deadline time.Time) (*model.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Phase{
		ID:          uuid.NewString(),
		GameID:      gameID,
		Year:        year,
		Season:      season,
		PhaseType:   phaseType,
		StateBefore: append(json.RawMessage(nil), stateBefore...),
		Deadline:    deadline,
		CreatedAt:   s.now(),
	}
	s.phases[gameID] = append(s.phases[gameID], p)
	return &p, nil
}

// CurrentPhase returns the latest unresolved phase of a game, or nil.
func (s *Store) CurrentPhase(_ context.Context, gameID string) (*model.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	phases := s.phases[gameID]
	for i := len(phases) - 1; i >= 0; i-- {
		if phases[i].ResolvedAt == nil {
			p := phases[i]
			return &p, nil
		}
	}
	return nil, nil
}

// ListPhases returns a game's phases in the order they were played.
func (s *Store) ListPhases(_ context.Context, gameID string) ([]model.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Phase(nil), s.phases[gameID]...), nil
}

// ResolvePhase records a phase's outcome state.
func (s *Store) ResolvePhase(_ context.Context, phaseID string, stateAfter json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for gameID, phases := range s.phases {
		for i := range phases {
			if phases[i].ID == phaseID {
				if phases[i].ResolvedAt != nil {
					return fmt.Errorf("resolve phase %s: already resolved", phaseID)
				}
				now := s.now()
				phases[i].StateAfter = append(json.RawMessage(nil), stateAfter...)
				phases[i].ResolvedAt = &now
				s.phases[gameID] = phases
				return nil
			}
		}
	}
	return fmt.Errorf("resolve phase %s: not found", phaseID)
}

// SaveOrders stores orders under their phase.
func (s *Store) SaveOrders(_ context.Context, orders []model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		o.ID = uuid.NewString()
		o.CreatedAt = s.now()
		s.orders[o.PhaseID] = append(s.orders[o.PhaseID], o)
	}
	return nil
}

// OrdersByPhase returns a phase's orders grouped by power.
func (s *Store) OrdersByPhase(_ context.Context, phaseID string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]model.Order(nil), s.orders[phaseID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Power < out[j].Power })
	return out, nil
}

// ListExpired returns the current phase of each active game whose deadline has passed.
func (s *Store) ListExpired(ctx context.Context) ([]model.Phase, error) {
	games, _ := s.ListActive(ctx)
	now := s.now()
	var out []model.Phase
	for _, g := range games {
		p, _ := s.CurrentPhase(ctx, g.ID)
		if p != nil && p.Deadline.Before(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

// SetGameState caches the engine snapshot.
func (s *Store) SetGameState(_ context.Context, gameID string, state json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[gameID] = append(json.RawMessage(nil), state...)
	return nil
}

// GetGameState returns the cached snapshot, or nil.
func (s *Store) GetGameState(_ context.Context, gameID string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[gameID]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), st...), nil
}

// SetOrders replaces a power's staged orders.
func (s *Store) SetOrders(_ context.Context, gameID, power string, orders []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staged[gameID] == nil {
		s.staged[gameID] = make(map[string][]string)
	}
	s.staged[gameID][power] = append([]string{}, orders...)
	return nil
}

// GetOrders returns a power's staged orders, or nil.
func (s *Store) GetOrders(_ context.Context, gameID, power string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders, ok := s.staged[gameID][power]
	if !ok {
		return nil, nil
	}
	return append([]string{}, orders...), nil
}

// GetAllOrders returns staged orders for the listed powers that have any.
func (s *Store) GetAllOrders(ctx context.Context, gameID string, powers []string) (map[string][]string, error) {
	out := make(map[string][]string, len(powers))
	for _, p := range powers {
		orders, _ := s.GetOrders(ctx, gameID, p)
		if orders != nil {
			out[p] = orders
		}
	}
	return out, nil
}

// MarkReady adds a power to the ready set.
func (s *Store) MarkReady(_ context.Context, gameID, power string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready[gameID] == nil {
		s.ready[gameID] = make(map[string]bool)
	}
	s.ready[gameID][power] = true
	return nil
}

// ReadyPowers returns the ready set in name order.
func (s *Store) ReadyPowers(_ context.Context, gameID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ready[gameID]))
	for p := range s.ready[gameID] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// SetTimer records the deadline. Nothing fires on it; callers poll ListExpired.
func (s *Store) SetTimer(_ context.Context, gameID string, deadline time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[gameID] = deadline
	return nil
}

// Timer returns the recorded deadline for a game.
func (s *Store) Timer(gameID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.timers[gameID]
	return d, ok
}

// ClearTimer removes the recorded deadline.
func (s *Store) ClearTimer(_ context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, gameID)
	return nil
}

// ClearPhaseData drops staged orders, the ready set and the timer.
func (s *Store) ClearPhaseData(_ context.Context, gameID string, _ []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staged, gameID)
	delete(s.ready, gameID)
	delete(s.timers, gameID)
	return nil
}

// DeleteGameData drops everything cached for a game.
func (s *Store) DeleteGameData(ctx context.Context, gameID string, powers []string) error {
	s.ClearPhaseData(ctx, gameID, powers)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, gameID)
	return nil
}

func cloneGame(g model.Game) model.Game {
	g.Powers = append([]string(nil), g.Powers...)
	g.Winners = append([]string(nil), g.Winners...)
	return g
}
