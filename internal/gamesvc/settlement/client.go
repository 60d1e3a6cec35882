package settlement

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Client mirrors committed economic events (purchases, accepted
// trades, game finishes) on the external on-chain ledger. Every call
// is fire-and-forget: it runs after the database commit, in its own
// goroutine, and only logs on failure. The database remains the source
// of truth regardless of what happens here.
type Client struct {
	baseURL string
	http    *http.Client
}

// tokenRate converts in-game cash units to ledger token amounts.
var tokenRate = decimal.NewFromFloat(0.01)

func NewClient() *Client {
	return &Client{
		baseURL: os.Getenv("SETTLEMENT_URL"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether a settlement endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

type event struct {
	EventID    string `json:"event_id"`
	Kind       string `json:"kind"`
	GameID     int64  `json:"game_id"`
	UserID     int64  `json:"user_id,omitempty"`
	PropertyID int    `json:"property_id,omitempty"`
	TradeID    int64  `json:"trade_id,omitempty"`
	Amount     string `json:"amount,omitempty"`
	ValidWin   bool   `json:"valid_win,omitempty"`
}

func (c *Client) SettlePurchase(gameID, userID int64, propertyID int, price int64) {
	c.send(event{
		Kind:       "purchase",
		GameID:     gameID,
		UserID:     userID,
		PropertyID: propertyID,
		Amount:     decimal.NewFromInt(price).Mul(tokenRate).StringFixed(2),
	})
}

func (c *Client) SettleTrade(gameID, tradeID int64) {
	c.send(event{
		Kind:    "trade",
		GameID:  gameID,
		TradeID: tradeID,
	})
}

func (c *Client) SettleFinish(gameID, winnerUserID int64, valid bool, eventID string) {
	c.send(event{
		EventID:  eventID,
		Kind:     "finish",
		GameID:   gameID,
		UserID:   winnerUserID,
		ValidWin: valid,
	})
}

func (c *Client) send(ev event) {
	if !c.Enabled() {
		return
	}
	// finish events carry the id persisted on the game row
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}

	go func() {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Errorf("settlement: marshal %s event: %s", ev.Kind, err)
			return
		}
		resp, err := c.http.Post(c.baseURL+"/events", "application/json", bytes.NewReader(payload))
		if err != nil {
			log.Errorf("settlement: %s event %s for game %d failed: %s", ev.Kind, ev.EventID, ev.GameID, err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			log.Errorf("settlement: %s event %s for game %d rejected: %s", ev.Kind, ev.EventID, ev.GameID, resp.Status)
			return
		}
		log.Infof("settlement: %s event %s mirrored for game %d", ev.Kind, ev.EventID, ev.GameID)
	}()
}
