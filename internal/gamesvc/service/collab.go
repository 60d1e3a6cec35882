package service

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
)

// Cache is the game-by-code read cache; invalidated on every mutation.
// GetGame returns (nil, nil) on a miss.
type Cache interface {
	GetGame(ctx context.Context, code string) (*models.Game, error)
	SetGame(ctx context.Context, g *models.Game) error
	InvalidateGame(ctx context.Context, code string) error
}

// Publisher fans a post-commit update event out to connected clients.
type Publisher interface {
	PublishGameUpdate(code, event string) error
}

// Settler mirrors committed economic events on the external ledger.
// Implementations must not block the caller.
type Settler interface {
	SettlePurchase(gameID, userID int64, propertyID int, price int64)
	SettleTrade(gameID, tradeID int64)
	SettleFinish(gameID, winnerUserID int64, valid bool, eventID string)
}

// Collab groups the external collaborators every service notifies after
// a committed mutation. All of them are best-effort: failures are
// logged and never roll anything back. Any field may be nil.
type Collab struct {
	Cache     Cache
	Publisher Publisher
	Settler   Settler
}

// gameMutated runs the cache invalidation and realtime fan-out that
// follow every committed mutation of a game.
func (c *Collab) gameMutated(ctx context.Context, code, event string) {
	if c == nil {
		return
	}
	if c.Cache != nil {
		if err := c.Cache.InvalidateGame(ctx, code); err != nil {
			log.Errorf("cache invalidate for game %s: %s", code, err)
		}
	}
	if c.Publisher != nil {
		if err := c.Publisher.PublishGameUpdate(code, event); err != nil {
			log.Errorf("publish %s for game %s: %s", event, code, err)
		}
	}
}

func (c *Collab) settlePurchase(gameID, userID int64, propertyID int, price int64) {
	if c != nil && c.Settler != nil {
		c.Settler.SettlePurchase(gameID, userID, propertyID, price)
	}
}

func (c *Collab) settleTrade(gameID, tradeID int64) {
	if c != nil && c.Settler != nil {
		c.Settler.SettleTrade(gameID, tradeID)
	}
}

func (c *Collab) settleFinish(gameID, winnerUserID int64, valid bool, eventID string) {
	if c != nil && c.Settler != nil {
		c.Settler.SettleFinish(gameID, winnerUserID, valid, eventID)
	}
}

// newSettlementID mints the ledger event id for a finish inside the
// finalizing transaction, so the id stored on the game and the id the
// ledger sees are the same. Empty when no ledger is wired.
func (c *Collab) newSettlementID() string {
	if c == nil || c.Settler == nil {
		return ""
	}
	return uuid.NewString()
}
