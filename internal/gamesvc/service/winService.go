package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/board"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/store"
)

// WinService computes net-worth standings and finalizes games, either
// when the game timer elapses or when only one solvent player remains.
type WinService struct {
	store  store.Store
	collab *Collab

	Clock func() time.Time
}

func NewWinService(st store.Store, collab *Collab) *WinService {
	return &WinService{store: st, collab: collab, Clock: time.Now}
}

// NetWorth is one player's standing in a net-worth evaluation.
type NetWorth struct {
	UserID    int64 `json:"user_id"`
	TurnOrder int   `json:"turn_order"`
	TurnCount int   `json:"turn_count"`
	Worth     int64 `json:"worth"`
}

// PreviewNetWorth is the read-only standings endpoint; it never
// mutates the game.
func (s *WinService) PreviewNetWorth(ctx context.Context, gameID int64) ([]NetWorth, error) {
	game, err := s.store.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	players, err := s.store.GetPlayersByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	owned, err := s.store.GetOwnershipsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return standings(players, owned), nil
}

// standings computes net worth for every active player: cash, property
// value (half price when mortgaged), building resale value and one-turn
// rent potential on unmortgaged holdings.
func standings(players []*models.GamePlayer, owned []*models.GameProperty) []NetWorth {
	byUser := make(map[int64][]*models.GameProperty)
	railways := make(map[int64]int)
	utilities := make(map[int64]int)
	for _, gp := range owned {
		byUser[gp.UserID] = append(byUser[gp.UserID], gp)
		if gp.Mortgaged {
			continue
		}
		sq, ok := board.Get(gp.PropertyID)
		if !ok {
			continue
		}
		switch sq.Kind {
		case board.KindRailway:
			railways[gp.UserID]++
		case board.KindUtility:
			utilities[gp.UserID]++
		}
	}

	var out []NetWorth
	for _, p := range players {
		if p.Status != models.PlayerStatusActive {
			continue
		}
		worth := p.Balance
		for _, gp := range byUser[p.UserID] {
			sq, ok := board.Get(gp.PropertyID)
			if !ok {
				continue
			}
			if gp.Mortgaged {
				worth += sq.MortgageValue()
			} else {
				worth += sq.Price
				worth += board.RentPotential(sq, gp.Development, railways[p.UserID], utilities[p.UserID])
			}
			worth += int64(gp.Development) * (sq.HouseCost / 2)
		}
		out = append(out, NetWorth{
			UserID:    p.UserID,
			TurnOrder: p.TurnOrder,
			TurnCount: p.TurnCount,
			Worth:     worth,
		})
	}
	return out
}

// FinishResult is what finalization returns; repeated calls on a
// finished game return the stored winner without recomputation.
type FinishResult struct {
	Game         *models.Game `json:"game"`
	WinnerUserID int64        `json:"winner_user_id"`
	ValidWin     bool         `json:"valid_win"`
}

// FinishByTime finalizes a timed game once its duration has elapsed.
// The highest net worth wins; ties resolve to the lowest turn_order.
// The call is idempotent.
func (s *WinService) FinishByTime(ctx context.Context, gameID int64) (*FinishResult, error) {
	var result *FinishResult
	var alreadyFinished bool

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		game, err := tx.GetGameForUpdate(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return fmt.Errorf("game %d: %w", gameID, ErrNotFound)
		}
		if game.Status == models.GameStatusFinished {
			// idempotent re-read
			alreadyFinished = true
			result = &FinishResult{Game: game, WinnerUserID: game.WinnerUserID.Int64, ValidWin: game.ValidWin}
			return nil
		}
		if game.Status != models.GameStatusRunning {
			return rejectf("game is not running")
		}
		if game.Duration == 0 {
			return rejectf("game has no time limit")
		}
		deadline := game.StartedAt.Time.Add(time.Duration(game.Duration) * time.Minute)
		if s.Clock().Before(deadline) {
			return rejectf("game timer has not elapsed yet")
		}

		players, err := tx.GetPlayersByGameID(ctx, gameID)
		if err != nil {
			return err
		}
		owned, err := tx.GetOwnershipsByGame(ctx, gameID)
		if err != nil {
			return err
		}
		ranked := standings(players, owned)
		if len(ranked) == 0 {
			return rejectf("no active players to rank")
		}

		winner := ranked[0]
		for _, nw := range ranked[1:] {
			if nw.Worth > winner.Worth ||
				(nw.Worth == winner.Worth && nw.TurnOrder < winner.TurnOrder) {
				winner = nw
			}
		}

		valid := winner.TurnCount >= models.MinTurnsForValidWin
		if err := declareWinner(ctx, tx, game, winner.UserID, valid, s.collab.newSettlementID()); err != nil {
			return err
		}
		result = &FinishResult{Game: game, WinnerUserID: winner.UserID, ValidWin: valid}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyFinished {
		s.collab.gameMutated(ctx, result.Game.Code, "game-finished")
		s.collab.settleFinish(gameID, result.WinnerUserID, result.ValidWin, result.Game.SettlementID.String)
	}
	return result, nil
}

// declareWinner moves the game to FINISHED with its winner and, when a
// ledger is wired, the settlement event id recorded.
func declareWinner(ctx context.Context, tx store.Tx, game *models.Game, winnerUserID int64, valid bool, settlementID string) error {
	game.Status = models.GameStatusFinished
	game.WinnerUserID = sql.NullInt64{Int64: winnerUserID, Valid: true}
	game.ValidWin = valid
	game.SettlementID = sql.NullString{String: settlementID, Valid: settlementID != ""}
	if err := tx.UpdateGame(ctx, game); err != nil {
		return err
	}
	log.Infof("game %s finished, winner %d (valid=%t)", game.Code, winnerUserID, valid)
	return nil
}

// checkElimination declares an immediate winner when exactly one
// solvent player remains: positive balance or any unmortgaged property.
func checkElimination(ctx context.Context, tx store.Tx, game *models.Game, settlementID string) (bool, error) {
	players, err := tx.GetPlayersByGameID(ctx, game.ID)
	if err != nil {
		return false, err
	}
	owned, err := tx.GetOwnershipsByGame(ctx, game.ID)
	if err != nil {
		return false, err
	}

	unmortgaged := make(map[int64]bool)
	for _, gp := range owned {
		if !gp.Mortgaged {
			unmortgaged[gp.UserID] = true
		}
	}

	var solvent []*models.GamePlayer
	for _, p := range players {
		if p.Status != models.PlayerStatusActive {
			continue
		}
		if p.Balance > 0 || unmortgaged[p.UserID] {
			solvent = append(solvent, p)
		}
	}
	if len(solvent) != 1 {
		return false, nil
	}

	winner := solvent[0]
	valid := winner.TurnCount >= models.MinTurnsForValidWin
	if err := declareWinner(ctx, tx, game, winner.UserID, valid, settlementID); err != nil {
		return false, err
	}
	return true, nil
}
