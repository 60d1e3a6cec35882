package models

import (
	"database/sql"
	"time"
)

const (
	PlayerStatusActive  = "active"
	PlayerStatusRemoved = "removed"
)

// MinTurnsForValidWin is the anti-stalling guard: a net-worth win only
// counts as valid once the winner has completed this many turns.
const MinTurnsForValidWin = 20

type GamePlayer struct {
	ID                  int64         `json:"id"`                   // Primary key
	GameID              int64         `json:"game_id"`              // FK to games(id)
	UserID              int64         `json:"user_id"`              // Seated user
	Balance             int64         `json:"balance"`              // Cash, may go negative to signal insolvency
	TradeLockedBalance  int64         `json:"trade_locked_balance"` // Cash reserved by outstanding trade offers, >= 0
	Position            int           `json:"position"`             // Board position 1-40
	InJail              bool          `json:"in_jail"`              // Player is jailed this turn
	TurnOrder           int           `json:"turn_order"`           // Seat order, drives turn advancement
	TurnStart           sql.NullTime  `json:"turn_start"`           // When the roll window opened for this player
	ConsecutiveTimeouts int           `json:"consecutive_timeouts"` // Timeout strikes, reset on a completed turn
	TurnCount           int           `json:"turn_count"`           // Completed turns
	Rolled              sql.NullInt64 `json:"rolled"`               // This turn's die total, cleared at turn end
	Status              string        `json:"status"`               // 'active' or 'removed'
	CreatedAt           time.Time     `json:"created_at"`           // Timestamp
	UpdatedAt           time.Time     `json:"updated_at"`           // Timestamp
}

// Available is the cash the player can still commit to new trade offers.
func (p *GamePlayer) Available() int64 {
	return p.Balance - p.TradeLockedBalance
}
