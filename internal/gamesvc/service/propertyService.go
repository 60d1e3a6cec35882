package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/board"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/store"
)

// PropertyService is the property transaction engine: purchase from
// the bank, development, mortgage handling and direct transfer. Every
// operation validates and mutates inside one transaction; any
// precondition failure aborts with no partial effect.
type PropertyService struct {
	store  store.Store
	collab *Collab
}

func NewPropertyService(st store.Store, collab *Collab) *PropertyService {
	return &PropertyService{store: st, collab: collab}
}

type PropertyRequest struct {
	GameID     int64 `json:"game_id"`
	PropertyID int   `json:"property_id"`
	UserID     int64 `json:"user_id"`
}

// Buy purchases an unowned position from the bank.
func (s *PropertyService) Buy(ctx context.Context, req PropertyRequest) (*models.GameProperty, error) {
	sq, err := ownableSquare(req.PropertyID)
	if err != nil {
		return nil, err
	}

	owned := &models.GameProperty{
		GameID:     req.GameID,
		PropertyID: req.PropertyID,
		UserID:     req.UserID,
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := runningGame(ctx, tx, req.GameID); err != nil {
			return err
		}
		player, err := activePlayer(ctx, tx, req.GameID, req.UserID)
		if err != nil {
			return err
		}

		existing, err := tx.GetOwnership(ctx, req.GameID, req.PropertyID)
		if err != nil {
			return err
		}
		if existing != nil {
			return rejectf("property %d is already owned", req.PropertyID)
		}
		if player.Available() < sq.Price {
			return rejectf("insufficient balance: need %d, have %d available", sq.Price, player.Available())
		}

		player.Balance -= sq.Price
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		if err := tx.InsertOwnership(ctx, owned); err != nil {
			// concurrent buyer won the row
			if errors.Is(err, store.ErrDuplicate) {
				return rejectf("property %d is already owned", req.PropertyID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, req.GameID)
	s.collab.gameMutated(ctx, code, "property-bought")
	s.collab.settlePurchase(req.GameID, req.UserID, req.PropertyID, sq.Price)
	return owned, nil
}

// Develop builds one house (or the hotel at level 5) on a street the
// caller fully controls, subject to the even-build rule.
func (s *PropertyService) Develop(ctx context.Context, req PropertyRequest) (*models.GameProperty, error) {
	sq, ok := board.Get(req.PropertyID)
	if !ok {
		return nil, fmt.Errorf("property %d: %w", req.PropertyID, ErrNotFound)
	}
	if !sq.Developable() {
		return nil, rejectf("property %d cannot be developed", req.PropertyID)
	}

	var owned *models.GameProperty
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := runningGame(ctx, tx, req.GameID); err != nil {
			return err
		}
		player, err := activePlayer(ctx, tx, req.GameID, req.UserID)
		if err != nil {
			return err
		}
		if player.InJail {
			return rejectf("cannot develop while in jail")
		}

		owned, err = tx.GetOwnership(ctx, req.GameID, req.PropertyID)
		if err != nil {
			return err
		}
		if owned == nil || owned.UserID != req.UserID {
			return rejectf("property %d is not owned by user %d", req.PropertyID, req.UserID)
		}
		if owned.Mortgaged {
			return rejectf("mortgaged property cannot be developed")
		}
		if owned.Development >= models.MaxDevelopment {
			return rejectf("property %d already has a hotel", req.PropertyID)
		}

		if err := s.checkEvenBuild(ctx, tx, sq, owned, req.UserID); err != nil {
			return err
		}
		if player.Available() < sq.HouseCost {
			return rejectf("insufficient balance: need %d, have %d available", sq.HouseCost, player.Available())
		}

		player.Balance -= sq.HouseCost
		owned.Development++
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		return tx.UpdateOwnership(ctx, owned)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, req.GameID)
	s.collab.gameMutated(ctx, code, "property-developed")
	return owned, nil
}

// checkEvenBuild enforces the group rules for development: the caller
// must own every position in the color group, and levels within the
// group may never drift more than one step apart.
func (s *PropertyService) checkEvenBuild(ctx context.Context, tx store.Tx, sq board.Square, owned *models.GameProperty, userID int64) error {
	positions := board.GroupPositions(sq.Group)
	levels := make([]int, 0, len(positions))
	for _, pos := range positions {
		gp, err := tx.GetOwnership(ctx, owned.GameID, pos)
		if err != nil {
			return err
		}
		if gp == nil || gp.UserID != userID {
			return rejectf("user %d does not own the whole color group", userID)
		}
		lvl := gp.Development
		if pos == owned.PropertyID {
			lvl++
		}
		levels = append(levels, lvl)
	}

	minLvl, maxLvl := levels[0], levels[0]
	for _, lvl := range levels[1:] {
		if lvl < minLvl {
			minLvl = lvl
		}
		if lvl > maxLvl {
			maxLvl = lvl
		}
	}
	if maxLvl-minLvl > 1 {
		return rejectf("even-build rule: develop the rest of the group first")
	}
	return nil
}

// Downgrade sells one building back to the bank for half its cost.
func (s *PropertyService) Downgrade(ctx context.Context, req PropertyRequest) (*models.GameProperty, error) {
	sq, ok := board.Get(req.PropertyID)
	if !ok {
		return nil, fmt.Errorf("property %d: %w", req.PropertyID, ErrNotFound)
	}

	var owned *models.GameProperty
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := runningGame(ctx, tx, req.GameID); err != nil {
			return err
		}
		player, err := activePlayer(ctx, tx, req.GameID, req.UserID)
		if err != nil {
			return err
		}
		if player.InJail {
			return rejectf("cannot sell buildings while in jail")
		}

		owned, err = tx.GetOwnership(ctx, req.GameID, req.PropertyID)
		if err != nil {
			return err
		}
		if owned == nil || owned.UserID != req.UserID {
			return rejectf("property %d is not owned by user %d", req.PropertyID, req.UserID)
		}
		if owned.Mortgaged {
			return rejectf("mortgaged property has no buildings to sell")
		}
		if owned.Development == 0 {
			return rejectf("property %d has no buildings", req.PropertyID)
		}

		owned.Development--
		player.Balance += sq.HouseCost / 2
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		return tx.UpdateOwnership(ctx, owned)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, req.GameID)
	s.collab.gameMutated(ctx, code, "property-downgraded")
	return owned, nil
}

// Mortgage pawns an undeveloped property for half its price.
func (s *PropertyService) Mortgage(ctx context.Context, req PropertyRequest) (*models.GameProperty, error) {
	sq, err := ownableSquare(req.PropertyID)
	if err != nil {
		return nil, err
	}

	var owned *models.GameProperty
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := runningGame(ctx, tx, req.GameID); err != nil {
			return err
		}
		player, err := activePlayer(ctx, tx, req.GameID, req.UserID)
		if err != nil {
			return err
		}
		if player.InJail {
			return rejectf("cannot mortgage while in jail")
		}

		owned, err = tx.GetOwnership(ctx, req.GameID, req.PropertyID)
		if err != nil {
			return err
		}
		if owned == nil || owned.UserID != req.UserID {
			return rejectf("property %d is not owned by user %d", req.PropertyID, req.UserID)
		}
		if owned.Mortgaged {
			return rejectf("property %d is already mortgaged", req.PropertyID)
		}
		if owned.Development > 0 {
			return rejectf("sell the buildings before mortgaging")
		}

		owned.Mortgaged = true
		player.Balance += sq.MortgageValue()
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		return tx.UpdateOwnership(ctx, owned)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, req.GameID)
	s.collab.gameMutated(ctx, code, "property-mortgaged")
	return owned, nil
}

// Unmortgage redeems a mortgaged property for its full price.
func (s *PropertyService) Unmortgage(ctx context.Context, req PropertyRequest) (*models.GameProperty, error) {
	sq, err := ownableSquare(req.PropertyID)
	if err != nil {
		return nil, err
	}

	var owned *models.GameProperty
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := runningGame(ctx, tx, req.GameID); err != nil {
			return err
		}
		player, err := activePlayer(ctx, tx, req.GameID, req.UserID)
		if err != nil {
			return err
		}
		if player.InJail {
			return rejectf("cannot unmortgage while in jail")
		}

		owned, err = tx.GetOwnership(ctx, req.GameID, req.PropertyID)
		if err != nil {
			return err
		}
		if owned == nil || owned.UserID != req.UserID {
			return rejectf("property %d is not owned by user %d", req.PropertyID, req.UserID)
		}
		if !owned.Mortgaged {
			return rejectf("property %d is not mortgaged", req.PropertyID)
		}
		if player.Available() < sq.Price {
			return rejectf("insufficient balance: need %d, have %d available", sq.Price, player.Available())
		}

		owned.Mortgaged = false
		player.Balance -= sq.Price
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		return tx.UpdateOwnership(ctx, owned)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, req.GameID)
	s.collab.gameMutated(ctx, code, "property-unmortgaged")
	return owned, nil
}

type TransferRequest struct {
	OwnershipID int64 `json:"ownership_id"`
	ToUserID    int64 `json:"to_user_id"`
}

// Transfer reassigns one ownership row directly, the non-escrowed
// single-property transfer path.
func (s *PropertyService) Transfer(ctx context.Context, req TransferRequest) (*models.GameProperty, error) {
	var owned *models.GameProperty
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		owned, err = tx.GetOwnershipByID(ctx, req.OwnershipID)
		if err != nil {
			return err
		}
		if owned == nil {
			return fmt.Errorf("ownership %d: %w", req.OwnershipID, ErrNotFound)
		}
		if _, err := runningGame(ctx, tx, owned.GameID); err != nil {
			return err
		}
		if _, err := activePlayer(ctx, tx, owned.GameID, req.ToUserID); err != nil {
			return err
		}
		if owned.UserID == req.ToUserID {
			return rejectf("user %d already owns this property", req.ToUserID)
		}

		owned.UserID = req.ToUserID
		return tx.UpdateOwnership(ctx, owned)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, owned.GameID)
	s.collab.gameMutated(ctx, code, "property-transferred")
	return owned, nil
}

func (s *PropertyService) gameCode(ctx context.Context, gameID int64) (string, error) {
	game, err := s.store.GetGameByID(ctx, gameID)
	if err != nil || game == nil {
		return "", err
	}
	return game.Code, nil
}

func ownableSquare(propertyID int) (board.Square, error) {
	sq, ok := board.Get(propertyID)
	if !ok {
		return board.Square{}, fmt.Errorf("property %d: %w", propertyID, ErrNotFound)
	}
	if !sq.Ownable() {
		return board.Square{}, rejectf("position %d cannot be owned", propertyID)
	}
	return sq, nil
}

// runningGame locks the game row and requires RUNNING status; finished
// and cancelled games accept no further mutation.
func runningGame(ctx context.Context, tx store.Tx, gameID int64) (*models.Game, error) {
	game, err := tx.GetGameForUpdate(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	if game.Status != models.GameStatusRunning {
		return nil, rejectf("game is not running")
	}
	return game, nil
}

func activePlayer(ctx context.Context, tx store.Tx, gameID, userID int64) (*models.GamePlayer, error) {
	player, err := tx.GetPlayerForUpdate(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, fmt.Errorf("player %d in game %d: %w", userID, gameID, ErrNotFound)
	}
	if player.Status != models.PlayerStatusActive {
		return nil, rejectf("player %d was removed from the game", userID)
	}
	return player, nil
}
