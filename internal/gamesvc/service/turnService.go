package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/board"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/store"
)

// Board squares with side effects on movement.
const (
	goToJailPosition = 31
	jailPosition     = 11
)

// TurnService advances the active-player pointer and handles the
// caller-signaled timeout protocol. The server never runs its own
// timer: it timestamps turn starts and validates timeout signals
// against them.
type TurnService struct {
	store  store.Store
	collab *Collab

	Clock func() time.Time
}

func NewTurnService(st store.Store, collab *Collab) *TurnService {
	return &TurnService{store: st, collab: collab, Clock: time.Now}
}

type TurnRequest struct {
	GameID int64 `json:"game_id"`
	UserID int64 `json:"user_id"`
}

type MoveRequest struct {
	GameID int64 `json:"game_id"`
	UserID int64 `json:"user_id"`
	Rolled int   `json:"rolled"`
}

// ChangePosition applies a dice roll to the active player. Open trades
// addressed to the roller expire on this activity, and wrapping past
// GO pays the salary.
func (s *TurnService) ChangePosition(ctx context.Context, req MoveRequest) (*models.GamePlayer, error) {
	if req.Rolled < 2 || req.Rolled > 12 {
		return nil, rejectf("roll must be a two-dice total")
	}

	var player *models.GamePlayer
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := runningGame(ctx, tx, req.GameID); err != nil {
			return err
		}
		var err error
		player, err = activePlayer(ctx, tx, req.GameID, req.UserID)
		if err != nil {
			return err
		}
		if !player.TurnStart.Valid {
			return rejectf("not your turn")
		}
		if player.Rolled.Valid {
			return rejectf("already rolled this turn")
		}

		// a player who moves on abandons offers addressed to them
		if err := expireTradesForTarget(ctx, tx, req.GameID, req.UserID); err != nil {
			return err
		}

		pos := player.Position + req.Rolled
		if pos > board.Size() {
			pos -= board.Size()
			player.Balance += GoSalary
		}
		if pos == goToJailPosition {
			pos = jailPosition
			player.InJail = true
		}
		player.Position = pos
		player.Rolled = sql.NullInt64{Int64: int64(req.Rolled), Valid: true}
		return tx.UpdatePlayer(ctx, player)
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, req.GameID)
	s.collab.gameMutated(ctx, code, "player-moved")
	return player, nil
}

// EndTurn closes the caller's turn and opens the next seat's roll
// window. Strikes reset on a completed turn, and a jailed player walks
// free when their turn ends.
func (s *TurnService) EndTurn(ctx context.Context, req TurnRequest) (*models.GamePlayer, error) {
	var next *models.GamePlayer
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := runningGame(ctx, tx, req.GameID); err != nil {
			return err
		}
		player, err := activePlayer(ctx, tx, req.GameID, req.UserID)
		if err != nil {
			return err
		}
		if !player.TurnStart.Valid {
			return rejectf("not your turn")
		}

		player.TurnStart = sql.NullTime{}
		player.Rolled = sql.NullInt64{}
		player.TurnCount++
		player.ConsecutiveTimeouts = 0
		player.InJail = false
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		next, err = s.advance(ctx, tx, req.GameID, player.TurnOrder)
		return err
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, req.GameID)
	s.collab.gameMutated(ctx, code, "turn-ended")
	return next, nil
}

// advance hands the turn to the next active seat after turnOrder and
// opens its roll window.
func (s *TurnService) advance(ctx context.Context, tx store.Tx, gameID int64, turnOrder int) (*models.GamePlayer, error) {
	players, err := tx.GetPlayersByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var active []*models.GamePlayer
	for _, p := range players {
		if p.Status == models.PlayerStatusActive {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, rejectf("no active players left")
	}

	// first active seat in cyclic turn_order after the closer
	next := active[0]
	for _, p := range active {
		if p.TurnOrder > turnOrder {
			next = p
			break
		}
	}

	next.TurnStart = sql.NullTime{Time: s.Clock(), Valid: true}
	if err := tx.UpdatePlayer(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// RecordTimeout is the caller-submitted "time's up" signal for the
// active player. The server checks the elapsed window against its own
// stored turn_start, counts the strike and advances the turn without
// crediting a completed turn.
func (s *TurnService) RecordTimeout(ctx context.Context, req TurnRequest) (*models.GamePlayer, error) {
	var timedOut *models.GamePlayer
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := runningGame(ctx, tx, req.GameID); err != nil {
			return err
		}
		var err error
		timedOut, err = activePlayer(ctx, tx, req.GameID, req.UserID)
		if err != nil {
			return err
		}
		if !timedOut.TurnStart.Valid {
			return rejectf("player %d does not hold the turn", req.UserID)
		}
		if s.Clock().Sub(timedOut.TurnStart.Time) < TurnWindow {
			return rejectf("roll window is still open")
		}

		timedOut.TurnStart = sql.NullTime{}
		timedOut.Rolled = sql.NullInt64{}
		timedOut.ConsecutiveTimeouts++
		if err := tx.UpdatePlayer(ctx, timedOut); err != nil {
			return err
		}

		_, err = s.advance(ctx, tx, req.GameID, timedOut.TurnOrder)
		return err
	})
	if err != nil {
		return nil, err
	}

	code, _ := s.gameCode(ctx, req.GameID)
	s.collab.gameMutated(ctx, code, "turn-timeout")
	return timedOut, nil
}

type VoteRequest struct {
	GameID       int64 `json:"game_id"`
	TargetUserID int64 `json:"target_user_id"`
	VoterUserID  int64 `json:"voter_user_id"`
}

// VoteToRemove casts one vote against a timed-out player. Once every
// other seated player has voted the target is removed: their open
// trades are dropped, their properties revert to the bank and the
// elimination win check runs.
func (s *TurnService) VoteToRemove(ctx context.Context, req VoteRequest) (*models.GamePlayer, error) {
	if req.TargetUserID == req.VoterUserID {
		return nil, rejectf("cannot vote against yourself")
	}

	var target *models.GamePlayer
	var finished bool
	var game *models.Game

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		game, err = runningGame(ctx, tx, req.GameID)
		if err != nil {
			return err
		}
		if _, err := activePlayer(ctx, tx, req.GameID, req.VoterUserID); err != nil {
			return err
		}
		target, err = activePlayer(ctx, tx, req.GameID, req.TargetUserID)
		if err != nil {
			return err
		}

		players, err := tx.GetPlayersByGameID(ctx, req.GameID)
		if err != nil {
			return err
		}
		opponents := 0
		for _, p := range players {
			if p.Status == models.PlayerStatusActive && p.UserID != req.TargetUserID {
				opponents++
			}
		}

		eligible := target.ConsecutiveTimeouts >= TimeoutStrikesForRemoval ||
			(target.ConsecutiveTimeouts >= 1 && opponents == 1)
		if !eligible {
			return rejectf("player %d is not eligible for removal", req.TargetUserID)
		}

		vote := &models.RemovalVote{
			GameID:       req.GameID,
			TargetUserID: req.TargetUserID,
			VoterUserID:  req.VoterUserID,
		}
		if err := tx.InsertRemovalVote(ctx, vote); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return rejectf("user %d already voted", req.VoterUserID)
			}
			return err
		}

		votes, err := tx.CountRemovalVotes(ctx, req.GameID, req.TargetUserID)
		if err != nil {
			return err
		}
		if votes < opponents {
			return nil
		}

		// unanimous: bankruptcy path
		if err := expireTradesInvolving(ctx, tx, req.GameID, req.TargetUserID); err != nil {
			return err
		}
		if err := tx.DeleteOwnershipsByUser(ctx, req.GameID, req.TargetUserID); err != nil {
			return err
		}
		hadTurn := target.TurnStart.Valid
		target.Status = models.PlayerStatusRemoved
		target.TurnStart = sql.NullTime{}
		target.Rolled = sql.NullInt64{}
		if err := tx.UpdatePlayer(ctx, target); err != nil {
			return err
		}
		log.Infof("player %d removed from game %d after %d strikes", req.TargetUserID, req.GameID, target.ConsecutiveTimeouts)

		if hadTurn {
			if _, err := s.advance(ctx, tx, req.GameID, target.TurnOrder); err != nil {
				return err
			}
		}

		finished, err = checkElimination(ctx, tx, game, s.collab.newSettlementID())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.collab.gameMutated(ctx, game.Code, "player-removed")
	if finished && game.WinnerUserID.Valid {
		s.collab.settleFinish(game.ID, game.WinnerUserID.Int64, game.ValidWin, game.SettlementID.String)
	}
	return target, nil
}

func (s *TurnService) gameCode(ctx context.Context, gameID int64) (string, error) {
	game, err := s.store.GetGameByID(ctx, gameID)
	if err != nil || game == nil {
		return "", err
	}
	return game.Code, nil
}
