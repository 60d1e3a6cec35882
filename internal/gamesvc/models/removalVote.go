package models

import "time"

// RemovalVote is one player's vote to remove a timed-out opponent.
type RemovalVote struct {
	ID           int64     `json:"id"`             // Primary key
	GameID       int64     `json:"game_id"`        // FK to games(id)
	TargetUserID int64     `json:"target_user_id"` // Player up for removal
	VoterUserID  int64     `json:"voter_user_id"`  // Player casting the vote
	CreatedAt    time.Time `json:"created_at"`     // Timestamp
}
