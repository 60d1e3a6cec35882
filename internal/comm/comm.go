package comm

import (
	"encoding/json"
	"time"
)

// WSMessage is the envelope exchanged between socketsvc and its web
// clients, and relayed over NATS.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "subscribe", "game-update"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// GameUpdate tells connected clients that a game changed and they
// should refetch its state. Notification-only: it carries no game
// data and is not part of the consistency model.
type GameUpdate struct {
	Code      string    `json:"code"`  // game join code, the fan-out room key
	Event     string    `json:"event"` // e.g. "property-bought", "trade-accepted"
	Timestamp time.Time `json:"timestamp"`
}

// Subscribe is a client's request to receive updates for one game.
type Subscribe struct {
	Code   string `json:"code"`
	UserId int64  `json:"user_id"`
}
