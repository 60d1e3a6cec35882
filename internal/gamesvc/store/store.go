package store

import (
	"context"
	"errors"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
)

// ErrDuplicate is returned when an insert collides with an existing row,
// e.g. two concurrent purchases of the same position.
var ErrDuplicate = errors.New("store: duplicate row")

// Tx is the row-scoped view a single game transaction works through.
// Every mutating operation of the service layer reads, validates and
// writes through one Tx so the database serializes concurrent calls.
type Tx interface {
	InsertGame(ctx context.Context, g *models.Game) error
	GetGameForUpdate(ctx context.Context, gameID int64) (*models.Game, error)
	GetGameByCodeForUpdate(ctx context.Context, code string) (*models.Game, error)
	UpdateGame(ctx context.Context, g *models.Game) error

	InsertPlayer(ctx context.Context, p *models.GamePlayer) error
	GetPlayerForUpdate(ctx context.Context, gameID, userID int64) (*models.GamePlayer, error)
	GetPlayersByGameID(ctx context.Context, gameID int64) ([]*models.GamePlayer, error)
	UpdatePlayer(ctx context.Context, p *models.GamePlayer) error

	InsertOwnership(ctx context.Context, gp *models.GameProperty) error
	GetOwnership(ctx context.Context, gameID int64, propertyID int) (*models.GameProperty, error)
	GetOwnershipByID(ctx context.Context, id int64) (*models.GameProperty, error)
	GetOwnershipsByGame(ctx context.Context, gameID int64) ([]*models.GameProperty, error)
	UpdateOwnership(ctx context.Context, gp *models.GameProperty) error
	DeleteOwnershipsByUser(ctx context.Context, gameID, userID int64) error

	InsertTrade(ctx context.Context, t *models.TradeRequest) error
	GetTradeForUpdate(ctx context.Context, id int64) (*models.TradeRequest, error)
	GetOpenTradesForTarget(ctx context.Context, gameID, targetUserID int64) ([]*models.TradeRequest, error)
	GetOpenTradesByGame(ctx context.Context, gameID int64) ([]*models.TradeRequest, error)
	UpdateTrade(ctx context.Context, t *models.TradeRequest) error

	InsertRemovalVote(ctx context.Context, v *models.RemovalVote) error
	CountRemovalVotes(ctx context.Context, gameID, targetUserID int64) (int, error)
}

// Store is the persistence boundary handed to the service layer.
// RunInTx commits when fn returns nil and rolls back otherwise;
// reads outside a transaction exist for the query endpoints.
// Reads return (nil, nil) when the row does not exist.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetGameByID(ctx context.Context, gameID int64) (*models.Game, error)
	GetGameByCode(ctx context.Context, code string) (*models.Game, error)
	GetPlayersByGameID(ctx context.Context, gameID int64) ([]*models.GamePlayer, error)
	GetOwnershipsByGame(ctx context.Context, gameID int64) ([]*models.GameProperty, error)
	GetTradeByID(ctx context.Context, id int64) (*models.TradeRequest, error)
}
