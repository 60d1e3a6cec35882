package models

import "time"

// MaxDevelopment is the hotel level; 0 = bare land, 1-4 houses, 5 hotel.
const MaxDevelopment = 5

// GameProperty is one ownership record: a board position held by a player
// within a game. Absence of a row means the bank still holds the position.
type GameProperty struct {
	ID          int64     `json:"id"`          // Primary key
	GameID      int64     `json:"game_id"`     // FK to games(id)
	PropertyID  int       `json:"property_id"` // Board position 1-40
	UserID      int64     `json:"user_id"`     // Owning player
	Development int       `json:"development"` // 0 land, 1-4 houses, 5 hotel
	Mortgaged   bool      `json:"mortgaged"`   // Mortgaged properties cannot be developed
	CreatedAt   time.Time `json:"created_at"`  // Timestamp
	UpdatedAt   time.Time `json:"updated_at"`  // Timestamp
}
