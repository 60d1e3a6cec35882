package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
)

func TestPreviewNetWorthValuesHoldings(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	// player 1: Mediterranean (60, site rent 2) and Reading Railroad (200, rent 25)
	f.buy(t, game.ID, 1, 2)
	f.buy(t, game.ID, 1, 6)

	ranked, err := f.wins.PreviewNetWorth(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	byUser := map[int64]NetWorth{}
	for _, nw := range ranked {
		byUser[nw.UserID] = nw
	}

	// 1240 cash + 60 + 2 rent + 200 + 25 rent
	assert.Equal(t, int64(1527), byUser[1].Worth)
	assert.Equal(t, int64(1500), byUser[2].Worth)
}

func TestNetWorthCountsMortgagedAtHalf(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	f.buy(t, game.ID, 1, 40) // Boardwalk, 400
	_, err := f.props.Mortgage(ctx, PropertyRequest{GameID: game.ID, PropertyID: 40, UserID: 1})
	require.NoError(t, err)

	ranked, err := f.wins.PreviewNetWorth(ctx, game.ID)
	require.NoError(t, err)
	for _, nw := range ranked {
		if nw.UserID == 1 {
			// 1100 cash + 200 mortgage credit + 200 half value, no rent potential
			assert.Equal(t, int64(1500), nw.Worth)
		}
	}
}

func TestNetWorthCountsBuildingsAtResale(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	f.buy(t, game.ID, 1, 2)
	f.buy(t, game.ID, 1, 4)
	_, err := f.props.Develop(ctx, PropertyRequest{GameID: game.ID, PropertyID: 2, UserID: 1})
	require.NoError(t, err)

	ranked, err := f.wins.PreviewNetWorth(ctx, game.ID)
	require.NoError(t, err)
	for _, nw := range ranked {
		if nw.UserID == 1 {
			// 1330 cash + 60 + 60 prices + 10 + 4 rents + 25 building resale
			assert.Equal(t, int64(1489), nw.Worth)
		}
	}
}

func TestFinishByTimeRequiresElapsedTimer(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2) // 60-minute timer
	ctx := context.Background()

	_, err := f.wins.FinishByTime(ctx, game.ID)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	f.advanceClock(59 * time.Minute)
	_, err = f.wins.FinishByTime(ctx, game.ID)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestFinishByTimePicksHighestWorth(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	// buying raises worth by the square's rent potential
	f.buy(t, game.ID, 2, 2)

	f.advanceClock(61 * time.Minute)
	result, err := f.wins.FinishByTime(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.WinnerUserID)
	assert.False(t, result.ValidWin)

	game = f.game(t, game.ID)
	assert.Equal(t, models.GameStatusFinished, game.Status)
	require.True(t, game.WinnerUserID.Valid)
	assert.Equal(t, int64(2), game.WinnerUserID.Int64)

	// the ledger event id is stored on the game and shipped verbatim
	require.True(t, game.SettlementID.Valid)
	require.Len(t, f.settler.finishEventIDs, 1)
	assert.Equal(t, game.SettlementID.String, f.settler.finishEventIDs[0])
}

func TestFinishByTimeTieBreaksOnTurnOrder(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 7, 3) // seat order 7 then 3
	ctx := context.Background()

	f.advanceClock(61 * time.Minute)
	result, err := f.wins.FinishByTime(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.WinnerUserID, "equal worth resolves to the earliest seat")
}

func TestFinishByTimeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	f.buy(t, game.ID, 1, 2)
	f.advanceClock(61 * time.Minute)

	first, err := f.wins.FinishByTime(ctx, game.ID)
	require.NoError(t, err)

	second, err := f.wins.FinishByTime(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, first.WinnerUserID, second.WinnerUserID)
	assert.Equal(t, first.ValidWin, second.ValidWin)

	finishEvents := 0
	for _, ev := range f.pub.events {
		if ev == "game-finished" {
			finishEvents++
		}
	}
	assert.Equal(t, 1, finishEvents, "the repeat call announces nothing")
	assert.Equal(t, []int64{first.WinnerUserID}, f.settler.finishes, "settlement fires once")
}

func TestFinishByTimeRejectsUntimedGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	game, err := f.games.CreateGame(ctx, CreateGameRequest{
		UserID:          1,
		Mode:            models.GameModePublic,
		NumberOfPlayers: 2,
		Duration:        0,
	})
	require.NoError(t, err)
	_, err = f.games.JoinGame(ctx, JoinGameRequest{Code: game.Code, UserID: 2})
	require.NoError(t, err)

	f.advanceClock(24 * time.Hour)
	_, err = f.wins.FinishByTime(ctx, game.ID)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestValidWinNeedsMinimumTurns(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	// grind out enough completed turns for both seats
	for i := 0; i < models.MinTurnsForValidWin; i++ {
		_, err := f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 1})
		require.NoError(t, err)
		_, err = f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 2})
		require.NoError(t, err)
	}

	f.buy(t, game.ID, 1, 2)
	f.advanceClock(61 * time.Minute)

	result, err := f.wins.FinishByTime(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.WinnerUserID)
	assert.True(t, result.ValidWin)
}

func TestPreviewNetWorthSkipsRemovedPlayers(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2, 3)
	ctx := context.Background()

	for i := 0; i < TimeoutStrikesForRemoval; i++ {
		timeOutPlayer(t, f, game.ID, 1, []int64{2, 3})
	}
	_, err := f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 1, VoterUserID: 2})
	require.NoError(t, err)
	_, err = f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 1, VoterUserID: 3})
	require.NoError(t, err)

	ranked, err := f.wins.PreviewNetWorth(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
	for _, nw := range ranked {
		assert.NotEqual(t, int64(1), nw.UserID)
	}
}
