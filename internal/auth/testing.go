package auth

import "context"

// SetSeatForTest injects a seat into ctx without a token.
func SetSeatForTest(ctx context.Context, gameID, power string) context.Context {
	return WithSeat(ctx, &SeatClaims{GameID: gameID, Power: power})
}
