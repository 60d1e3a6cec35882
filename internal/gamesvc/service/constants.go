package service

import "time"

const (
	// StartingBalance is each seat's opening cash.
	StartingBalance int64 = 1500

	// GoSalary is credited when a player wraps past GO.
	GoSalary int64 = 200

	// TurnWindow is the roll window; timeout signals earlier than this
	// against the stored turn_start are rejected.
	TurnWindow = 90 * time.Second

	// TimeoutStrikesForRemoval makes a player eligible for vote-based
	// removal. A single strike suffices when only one opponent remains.
	TimeoutStrikesForRemoval = 3

	// MinPlayers and MaxPlayers bound game settings.
	MinPlayers = 2
	MaxPlayers = 4
)
