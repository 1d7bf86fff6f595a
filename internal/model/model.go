package model

import (
	"encoding/json"
	"time"
)

// Game statuses.
const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Game is a hosted adjudication game.
type Game struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	NumPowers        int        `json:"num_powers"`
	Seed             uint64     `json:"seed"`
	Powers           []string   `json:"powers"`
	Winners          []string   `json:"winners,omitempty"`
	MovementDuration string     `json:"movement_duration"`
	RetreatDuration  string     `json:"retreat_duration"`
	BuildDuration    string     `json:"build_duration"`
	MaxYears         int        `json:"max_years"`
	CreatedAt        time.Time  `json:"created_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

// Seat is the credential handed to whoever plays one power.
type Seat struct {
	Power string `json:"power"`
	Token string `json:"token"`
}

// Phase is one adjudicated (or pending) phase of a game.
type Phase struct {
	ID          string          `json:"id"`
	GameID      string          `json:"game_id"`
	Year        int             `json:"year"`
	Season      string          `json:"season"`
	PhaseType   string          `json:"phase_type"`
	StateBefore json.RawMessage `json:"state_before"`
	StateAfter  json.RawMessage `json:"state_after,omitempty"`
	Deadline    time.Time       `json:"deadline"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Order is a submitted order with what the engine made of it. Rejected
// orders carry the rejection reason and no result.
type Order struct {
	ID        string    `json:"id"`
	PhaseID   string    `json:"phase_id"`
	Power     string    `json:"power"`
	Text      string    `json:"order"`
	Result    string    `json:"result,omitempty"`
	Note      string    `json:"note,omitempty"`
	Rejected  bool      `json:"rejected,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
