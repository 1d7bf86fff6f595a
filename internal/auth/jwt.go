package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// SeatClaims binds a token to one power in one game.
type SeatClaims struct {
	GameID string `json:"game_id"`
	Power  string `json:"power"`
	jwt.RegisteredClaims
}

// SeatManager issues and checks seat tokens.
type SeatManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewSeatManager creates a SeatManager. A zero expiry issues tokens that
// stay valid for the life of the game.
func NewSeatManager(secret string, expiry time.Duration) *SeatManager {
	return &SeatManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// IssueSeat signs a token for power in gameID.
func (m *SeatManager) IssueSeat(gameID, power string) (string, error) {
	now := m.now()
	claims := &SeatClaims{
		GameID: gameID,
		Power:  power,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Subject:  gameID + "/" + power,
		},
	}
	if m.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.expiry))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateSeat parses a token and returns its seat.
func (m *SeatManager) ValidateSeat(tokenStr string) (*SeatClaims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &SeatClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SeatClaims)
	if !ok || !token.Valid || claims.GameID == "" || claims.Power == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
