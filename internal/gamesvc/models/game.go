package models

import (
	"database/sql"
	"time"
)

// Game lifecycle statuses. Transitions are one-directional:
// PENDING -> RUNNING -> FINISHED or CANCELLED.
const (
	GameStatusPending   = "PENDING"
	GameStatusRunning   = "RUNNING"
	GameStatusFinished  = "FINISHED"
	GameStatusCancelled = "CANCELLED"
)

const (
	GameModePublic  = "PUBLIC"
	GameModePrivate = "PRIVATE"
)

type Game struct {
	ID              int64          `json:"id"`                // Primary key
	Code            string         `json:"code"`              // Short join code
	Mode            string         `json:"mode"`              // 'PUBLIC' or 'PRIVATE'
	Status          string         `json:"status"`            // 'PENDING', 'RUNNING', 'FINISHED', 'CANCELLED'
	NumberOfPlayers int            `json:"number_of_players"` // Seats needed before the game starts
	Duration        int            `json:"duration"`          // Minutes, 0 = untimed
	IsAI            bool           `json:"is_ai"`             // Game has an AI opponent seat
	WinnerUserID    sql.NullInt64  `json:"winner_user_id"`    // Set on finish
	ValidWin        bool           `json:"valid_win"`         // Winner reached the minimum turn count
	SettlementID    sql.NullString `json:"settlement_id"`     // External ledger reference, optional
	CreatedAt       time.Time      `json:"created_at"`        // Timestamp
	StartedAt       sql.NullTime   `json:"started_at"`        // Set when status moves to RUNNING
	UpdatedAt       time.Time      `json:"updated_at"`        // Timestamp
}
