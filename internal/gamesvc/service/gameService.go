package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	config "github.com/tycoonhq/tycoon-services/configs"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/store"
)

type GameService struct {
	store  store.Store
	collab *Collab

	// Clock is swapped by tests to drive time-dependent paths.
	Clock func() time.Time
}

func NewGameService(st store.Store, collab *Collab) *GameService {
	return &GameService{store: st, collab: collab, Clock: time.Now}
}

type CreateGameRequest struct {
	UserID          int64  `json:"user_id"`
	Mode            string `json:"mode"`
	NumberOfPlayers int    `json:"number_of_players"`
	Duration        int    `json:"duration"`
	IsAI            bool   `json:"is_ai"`
	AIUserID        int64  `json:"ai_user_id"`
}

// CreateGame creates a game with its settings and seats the creator.
// AI games also seat the AI opponent so the game can start immediately
// once full.
func (s *GameService) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	if req.Mode != models.GameModePublic && req.Mode != models.GameModePrivate {
		return nil, rejectf("mode must be PUBLIC or PRIVATE")
	}
	if req.NumberOfPlayers < MinPlayers || req.NumberOfPlayers > MaxPlayers {
		return nil, rejectf("number of players must be between %d and %d", MinPlayers, MaxPlayers)
	}
	if req.Duration < 0 {
		return nil, rejectf("duration cannot be negative")
	}
	if req.IsAI && req.AIUserID == 0 {
		return nil, rejectf("AI games need an AI seat user id")
	}

	code, err := config.GameCode()
	if err != nil {
		return nil, fmt.Errorf("generate game code: %w", err)
	}

	game := &models.Game{
		Code:            code,
		Mode:            req.Mode,
		Status:          models.GameStatusPending,
		NumberOfPlayers: req.NumberOfPlayers,
		Duration:        req.Duration,
		IsAI:            req.IsAI,
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertGame(ctx, game); err != nil {
			return err
		}
		if err := s.seat(ctx, tx, game, req.UserID, 1); err != nil {
			return err
		}
		if req.IsAI {
			if err := s.seat(ctx, tx, game, req.AIUserID, 2); err != nil {
				return err
			}
		}
		return s.startIfFull(ctx, tx, game)
	})
	if err != nil {
		return nil, err
	}

	s.collab.gameMutated(ctx, game.Code, "game-created")
	return game, nil
}

type JoinGameRequest struct {
	Code   string `json:"code"`
	UserID int64  `json:"user_id"`
}

// JoinGame seats a player on a pending game and starts it once the
// configured seat count is reached.
func (s *GameService) JoinGame(ctx context.Context, req JoinGameRequest) (*models.Game, error) {
	var game *models.Game

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		game, err = tx.GetGameByCodeForUpdate(ctx, req.Code)
		if err != nil {
			return err
		}
		if game == nil {
			return fmt.Errorf("game %s: %w", req.Code, ErrNotFound)
		}
		if game.Status != models.GameStatusPending {
			return rejectf("game is not open for joining")
		}

		players, err := tx.GetPlayersByGameID(ctx, game.ID)
		if err != nil {
			return err
		}
		if len(players) >= game.NumberOfPlayers {
			return rejectf("game is full")
		}

		if err := s.seat(ctx, tx, game, req.UserID, len(players)+1); err != nil {
			return err
		}
		return s.startIfFull(ctx, tx, game)
	})
	if err != nil {
		return nil, err
	}

	s.collab.gameMutated(ctx, game.Code, "player-joined")
	return game, nil
}

func (s *GameService) seat(ctx context.Context, tx store.Tx, game *models.Game, userID int64, order int) error {
	p := &models.GamePlayer{
		GameID:    game.ID,
		UserID:    userID,
		Balance:   StartingBalance,
		Position:  1,
		TurnOrder: order,
		Status:    models.PlayerStatusActive,
	}
	if err := tx.InsertPlayer(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return rejectf("user %d already joined this game", userID)
		}
		return err
	}
	return nil
}

// startIfFull transitions PENDING -> RUNNING when every seat is taken
// and opens the first player's roll window.
func (s *GameService) startIfFull(ctx context.Context, tx store.Tx, game *models.Game) error {
	players, err := tx.GetPlayersByGameID(ctx, game.ID)
	if err != nil {
		return err
	}
	if len(players) < game.NumberOfPlayers {
		return nil
	}

	now := s.Clock()
	game.Status = models.GameStatusRunning
	game.StartedAt = sql.NullTime{Time: now, Valid: true}
	if err := tx.UpdateGame(ctx, game); err != nil {
		return err
	}

	first := players[0]
	first.TurnStart = sql.NullTime{Time: now, Valid: true}
	if err := tx.UpdatePlayer(ctx, first); err != nil {
		return err
	}

	log.Infof("game %s started with %d players", game.Code, len(players))
	return nil
}

// GetGameByCode serves reads through the cache when one is wired.
func (s *GameService) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	if s.collab != nil && s.collab.Cache != nil {
		cached, err := s.collab.Cache.GetGame(ctx, code)
		if err != nil {
			log.Errorf("cache read for game %s: %s", code, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	game, err := s.store.GetGameByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", code, ErrNotFound)
	}

	if s.collab != nil && s.collab.Cache != nil {
		if err := s.collab.Cache.SetGame(ctx, game); err != nil {
			log.Errorf("cache write for game %s: %s", code, err)
		}
	}
	return game, nil
}

// GameState is the snapshot clients refetch after a fan-out event.
type GameState struct {
	Game       *models.Game           `json:"game"`
	Players    []*models.GamePlayer   `json:"players"`
	Ownerships []*models.GameProperty `json:"ownerships"`
}

func (s *GameService) GetGameState(ctx context.Context, gameID int64) (*GameState, error) {
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
	return &GameState{Game: game, Players: players, Ownerships: owned}, nil
}
