package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/store"
)

// TradeService runs the peer-to-peer trade escrow: offered cash is
// locked on the offerer at creation and released by exactly that
// amount on accept, decline or expiry, so simultaneous offers can
// never overdraw a balance.
type TradeService struct {
	store  store.Store
	collab *Collab
}

func NewTradeService(st store.Store, collab *Collab) *TradeService {
	return &TradeService{store: st, collab: collab}
}

type CreateTradeRequest struct {
	GameID               int64 `json:"game_id"`
	OffererUserID        int64 `json:"offerer_user_id"`
	TargetUserID         int64 `json:"target_user_id"`
	OfferedPropertyIDs   []int `json:"offered_property_ids"`
	OfferedCash          int64 `json:"offered_cash"`
	RequestedPropertyIDs []int `json:"requested_property_ids"`
	RequestedCash        int64 `json:"requested_cash"`
}

// Create validates a new offer and reserves the offered cash on the
// offerer. The actual balance does not move until acceptance.
func (s *TradeService) Create(ctx context.Context, req CreateTradeRequest) (*models.TradeRequest, error) {
	if req.OffererUserID == req.TargetUserID {
		return nil, rejectf("cannot trade with yourself")
	}
	if req.OfferedCash < 0 || req.RequestedCash < 0 {
		return nil, rejectf("cash amounts cannot be negative")
	}
	if req.OfferedCash == 0 && req.RequestedCash == 0 &&
		len(req.OfferedPropertyIDs) == 0 && len(req.RequestedPropertyIDs) == 0 {
		return nil, rejectf("trade offer is empty")
	}

	trade := &models.TradeRequest{
		GameID:               req.GameID,
		OffererUserID:        req.OffererUserID,
		TargetUserID:         req.TargetUserID,
		OfferedPropertyIDs:   req.OfferedPropertyIDs,
		OfferedCash:          req.OfferedCash,
		RequestedPropertyIDs: req.RequestedPropertyIDs,
		RequestedCash:        req.RequestedCash,
		Status:               models.TradeStatusPending,
	}

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := runningGame(ctx, tx, req.GameID); err != nil {
			return err
		}
		offerer, target, err := s.validateParties(ctx, tx, trade)
		if err != nil {
			return err
		}
		if target.InJail {
			return rejectf("cannot trade with a jailed player")
		}
		if offerer.Available() < trade.OfferedCash {
			return rejectf("insufficient available balance: %d locked by other offers", offerer.TradeLockedBalance)
		}
		if target.Available() < trade.RequestedCash {
			return rejectf("target cannot cover the requested cash")
		}

		offerer.TradeLockedBalance += trade.OfferedCash
		if err := tx.UpdatePlayer(ctx, offerer); err != nil {
			return err
		}
		return tx.InsertTrade(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, req.GameID)
	s.collab.gameMutated(ctx, code, "trade-created")
	return trade, nil
}

// validateParties checks both players, the listed properties and the
// post-trade balances. It runs both at creation and again at
// acceptance, since balances may have moved in between.
func (s *TradeService) validateParties(ctx context.Context, tx store.Tx, trade *models.TradeRequest) (offerer, target *models.GamePlayer, err error) {
	offerer, err = activePlayer(ctx, tx, trade.GameID, trade.OffererUserID)
	if err != nil {
		return nil, nil, err
	}
	target, err = activePlayer(ctx, tx, trade.GameID, trade.TargetUserID)
	if err != nil {
		return nil, nil, err
	}

	for _, pos := range trade.OfferedPropertyIDs {
		if err := ownedBy(ctx, tx, trade.GameID, pos, trade.OffererUserID); err != nil {
			return nil, nil, err
		}
	}
	for _, pos := range trade.RequestedPropertyIDs {
		if err := ownedBy(ctx, tx, trade.GameID, pos, trade.TargetUserID); err != nil {
			return nil, nil, err
		}
	}

	if offerer.Balance-trade.OfferedCash+trade.RequestedCash < 0 {
		return nil, nil, rejectf("offerer would go insolvent")
	}
	// the target's own outgoing offers keep their locked cash out of
	// reach, so the requested amount is checked against Available()
	if target.Available()+trade.OfferedCash-trade.RequestedCash < 0 {
		return nil, nil, rejectf("target would go insolvent")
	}
	return offerer, target, nil
}

// reassign moves one ownership row to its new holder; buildings and
// mortgage state travel with the property.
func reassign(ctx context.Context, tx store.Tx, gameID int64, propertyID int, toUserID int64) error {
	gp, err := tx.GetOwnership(ctx, gameID, propertyID)
	if err != nil {
		return err
	}
	if gp == nil {
		return fmt.Errorf("ownership of property %d: %w", propertyID, ErrNotFound)
	}
	gp.UserID = toUserID
	return tx.UpdateOwnership(ctx, gp)
}

func ownedBy(ctx context.Context, tx store.Tx, gameID int64, propertyID int, userID int64) error {
	gp, err := tx.GetOwnership(ctx, gameID, propertyID)
	if err != nil {
		return err
	}
	if gp == nil || gp.UserID != userID {
		return rejectf("property %d is not owned by user %d", propertyID, userID)
	}
	return nil
}

type TradeActionRequest struct {
	TradeID int64 `json:"trade_id"`
	UserID  int64 `json:"user_id"`
}

// Accept re-validates the offer against current balances and, when
// still sound, atomically swaps the listed properties, applies the net
// cash deltas and releases the escrow by the originally reserved
// amount.
func (s *TradeService) Accept(ctx context.Context, req TradeActionRequest) (*models.TradeRequest, error) {
	var trade *models.TradeRequest

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		trade, err = s.openTradeForResponder(ctx, tx, req)
		if err != nil {
			return err
		}
		if _, err := runningGame(ctx, tx, trade.GameID); err != nil {
			return err
		}
		offerer, target, err := s.validateParties(ctx, tx, trade)
		if err != nil {
			return err
		}

		for _, pos := range trade.OfferedPropertyIDs {
			if err := reassign(ctx, tx, trade.GameID, pos, trade.TargetUserID); err != nil {
				return err
			}
		}
		for _, pos := range trade.RequestedPropertyIDs {
			if err := reassign(ctx, tx, trade.GameID, pos, trade.OffererUserID); err != nil {
				return err
			}
		}

		offerer.Balance += trade.RequestedCash - trade.OfferedCash
		target.Balance += trade.OfferedCash - trade.RequestedCash
		// release by the reserved amount, not the live balance
		offerer.TradeLockedBalance -= trade.OfferedCash
		if err := tx.UpdatePlayer(ctx, offerer); err != nil {
			return err
		}
		if err := tx.UpdatePlayer(ctx, target); err != nil {
			return err
		}

		trade.Status = models.TradeStatusAccepted
		return tx.UpdateTrade(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, trade.GameID)
	s.collab.gameMutated(ctx, code, "trade-accepted")
	s.collab.settleTrade(trade.GameID, trade.ID)
	return trade, nil
}

// Decline resolves the offer with no transfer; only the escrow is
// released.
func (s *TradeService) Decline(ctx context.Context, req TradeActionRequest) (*models.TradeRequest, error) {
	var trade *models.TradeRequest

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		trade, err = s.openTradeForResponder(ctx, tx, req)
		if err != nil {
			return err
		}
		if err := releaseEscrow(ctx, tx, trade); err != nil {
			return err
		}
		trade.Status = models.TradeStatusDeclined
		return tx.UpdateTrade(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, trade.GameID)
	s.collab.gameMutated(ctx, code, "trade-declined")
	return trade, nil
}

type CounterTradeRequest struct {
	TradeID              int64 `json:"trade_id"`
	UserID               int64 `json:"user_id"`
	OfferedPropertyIDs   []int `json:"offered_property_ids"`
	OfferedCash          int64 `json:"offered_cash"`
	RequestedPropertyIDs []int `json:"requested_property_ids"`
	RequestedCash        int64 `json:"requested_cash"`
}

// Counter lets the target answer a pending offer with new terms. The
// original escrow is released, the roles flip and the new offerer's
// cash is reserved, so lock accounting stays exact per trade.
func (s *TradeService) Counter(ctx context.Context, req CounterTradeRequest) (*models.TradeRequest, error) {
	if req.OfferedCash < 0 || req.RequestedCash < 0 {
		return nil, rejectf("cash amounts cannot be negative")
	}

	var trade *models.TradeRequest
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		trade, err = tx.GetTradeForUpdate(ctx, req.TradeID)
		if err != nil {
			return err
		}
		if trade == nil {
			return fmt.Errorf("trade %d: %w", req.TradeID, ErrNotFound)
		}
		if trade.Status != models.TradeStatusPending {
			return rejectf("only a pending trade can be countered")
		}
		if trade.TargetUserID != req.UserID {
			return rejectf("only the trade target can counter")
		}
		if _, err := runningGame(ctx, tx, trade.GameID); err != nil {
			return err
		}
		if err := releaseEscrow(ctx, tx, trade); err != nil {
			return err
		}

		trade.OffererUserID, trade.TargetUserID = trade.TargetUserID, trade.OffererUserID
		trade.OfferedPropertyIDs = req.OfferedPropertyIDs
		trade.OfferedCash = req.OfferedCash
		trade.RequestedPropertyIDs = req.RequestedPropertyIDs
		trade.RequestedCash = req.RequestedCash

		offerer, target, err := s.validateParties(ctx, tx, trade)
		if err != nil {
			return err
		}
		if offerer.Available() < trade.OfferedCash {
			return rejectf("insufficient available balance for the counter offer")
		}
		if target.Available() < trade.RequestedCash {
			return rejectf("target cannot cover the requested cash")
		}

		offerer.TradeLockedBalance += trade.OfferedCash
		if err := tx.UpdatePlayer(ctx, offerer); err != nil {
			return err
		}

		trade.Status = models.TradeStatusCounter
		return tx.UpdateTrade(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, trade.GameID)
	s.collab.gameMutated(ctx, code, "trade-countered")
	return trade, nil
}

func (s *TradeService) GetTradeByID(ctx context.Context, id int64) (*models.TradeRequest, error) {
	trade, err := s.store.GetTradeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	return trade, nil
}

// openTradeForResponder loads an open trade and checks the caller is
// its current target.
func (s *TradeService) openTradeForResponder(ctx context.Context, tx store.Tx, req TradeActionRequest) (*models.TradeRequest, error) {
	trade, err := tx.GetTradeForUpdate(ctx, req.TradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %d: %w", req.TradeID, ErrNotFound)
	}
	if !trade.Open() {
		return nil, rejectf("trade %d is already resolved", req.TradeID)
	}
	if trade.TargetUserID != req.UserID {
		return nil, rejectf("only the trade target can respond")
	}
	return trade, nil
}

// releaseEscrow gives the offerer back exactly the amount reserved at
// creation.
func releaseEscrow(ctx context.Context, tx store.Tx, trade *models.TradeRequest) error {
	offerer, err := tx.GetPlayerForUpdate(ctx, trade.GameID, trade.OffererUserID)
	if err != nil {
		return err
	}
	if offerer == nil {
		return fmt.Errorf("player %d in game %d: %w", trade.OffererUserID, trade.GameID, ErrNotFound)
	}
	offerer.TradeLockedBalance -= trade.OfferedCash
	if offerer.TradeLockedBalance < 0 {
		offerer.TradeLockedBalance = 0
	}
	return tx.UpdatePlayer(ctx, offerer)
}

// expireTradesForTarget force-declines every open trade addressed to a
// player who took a dice-roll action, releasing each escrow.
func expireTradesForTarget(ctx context.Context, tx store.Tx, gameID, targetUserID int64) error {
	trades, err := tx.GetOpenTradesForTarget(ctx, gameID, targetUserID)
	if err != nil {
		return err
	}
	for _, trade := range trades {
		if err := releaseEscrow(ctx, tx, trade); err != nil {
			return err
		}
		trade.Status = models.TradeStatusDeclined
		if err := tx.UpdateTrade(ctx, trade); err != nil {
			return err
		}
		log.Infof("trade %d expired on target %d activity", trade.ID, targetUserID)
	}
	return nil
}

// expireTradesInvolving drops every open trade a removed player is a
// party to.
func expireTradesInvolving(ctx context.Context, tx store.Tx, gameID, userID int64) error {
	trades, err := tx.GetOpenTradesByGame(ctx, gameID)
	if err != nil {
		return err
	}
	for _, trade := range trades {
		if trade.OffererUserID != userID && trade.TargetUserID != userID {
			continue
		}
		if err := releaseEscrow(ctx, tx, trade); err != nil {
			return err
		}
		trade.Status = models.TradeStatusDeclined
		if err := tx.UpdateTrade(ctx, trade); err != nil {
			return err
		}
	}
	return nil
}

func (s *TradeService) gameCode(ctx context.Context, gameID int64) (string, error) {
	game, err := s.store.GetGameByID(ctx, gameID)
	if err != nil || game == nil {
		return "", err
	}
	return game.Code, nil
}
