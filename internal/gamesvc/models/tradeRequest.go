package models

import "time"

// Trade request statuses. Lifecycle:
// pending -> accepted | declined, or pending -> counter -> accepted | declined.
const (
	TradeStatusPending  = "pending"
	TradeStatusCounter  = "counter"
	TradeStatusAccepted = "accepted"
	TradeStatusDeclined = "declined"
)

type TradeRequest struct {
	ID                   int64     `json:"id"`                     // Primary key
	GameID               int64     `json:"game_id"`                // FK to games(id)
	OffererUserID        int64     `json:"offerer_user_id"`        // Player whose cash is escrowed
	TargetUserID         int64     `json:"target_user_id"`         // Player the offer is addressed to
	OfferedPropertyIDs   []int     `json:"offered_property_ids"`   // Positions the offerer gives up
	OfferedCash          int64     `json:"offered_cash"`           // Locked on the offerer while pending
	RequestedPropertyIDs []int     `json:"requested_property_ids"` // Positions requested from the target
	RequestedCash        int64     `json:"requested_cash"`         // Cash requested from the target
	Status               string    `json:"status"`                 // 'pending', 'counter', 'accepted', 'declined'
	CreatedAt            time.Time `json:"created_at"`             // Timestamp
	UpdatedAt            time.Time `json:"updated_at"`             // Timestamp
}

// Open reports whether the trade still awaits a response.
func (t *TradeRequest) Open() bool {
	return t.Status == TradeStatusPending || t.Status == TradeStatusCounter
}
