package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
)

func TestChangePositionMovesActivePlayer(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	moved, err := f.turns.ChangePosition(ctx, MoveRequest{GameID: game.ID, UserID: 1, Rolled: 7})
	require.NoError(t, err)
	assert.Equal(t, 8, moved.Position)
	assert.Equal(t, int64(7), moved.Rolled.Int64)

	// one roll per turn
	_, err = f.turns.ChangePosition(ctx, MoveRequest{GameID: game.ID, UserID: 1, Rolled: 4})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestChangePositionValidation(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	// two dice can never total 1 or 13
	for _, roll := range []int{0, 1, 13} {
		_, err := f.turns.ChangePosition(ctx, MoveRequest{GameID: game.ID, UserID: 1, Rolled: roll})
		require.Error(t, err, "roll %d", roll)
		assert.True(t, IsValidation(err))
	}

	// player 2 does not hold the turn
	_, err := f.turns.ChangePosition(ctx, MoveRequest{GameID: game.ID, UserID: 2, Rolled: 7})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestWrapPastGoPaysSalary(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	// three full turns bring player 1 to position 37
	for _, roll := range []int{12, 12, 12} {
		_, err := f.turns.ChangePosition(ctx, MoveRequest{GameID: game.ID, UserID: 1, Rolled: roll})
		require.NoError(t, err)
		_, err = f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 1})
		require.NoError(t, err)
		_, err = f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 2})
		require.NoError(t, err)
	}
	require.Equal(t, 37, f.player(t, game.ID, 1).Position)

	moved, err := f.turns.ChangePosition(ctx, MoveRequest{GameID: game.ID, UserID: 1, Rolled: 12})
	require.NoError(t, err)
	assert.Equal(t, 9, moved.Position, "37 + 12 wraps to 9")
	assert.Equal(t, int64(1700), moved.Balance, "salary credited on the wrap")
}

func TestLandingOnGoToJail(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	// 1 -> 13 -> 25 -> 31
	for i, roll := range []int{12, 12, 6} {
		moved, err := f.turns.ChangePosition(ctx, MoveRequest{GameID: game.ID, UserID: 1, Rolled: roll})
		require.NoError(t, err)
		if i < 2 {
			_, err = f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 1})
			require.NoError(t, err)
			_, err = f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 2})
			require.NoError(t, err)
			continue
		}
		assert.Equal(t, 11, moved.Position, "sent to the jail square")
		assert.True(t, moved.InJail)
	}

	// jail lifts when the turn completes
	_, err := f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.NoError(t, err)
	assert.False(t, f.player(t, game.ID, 1).InJail)
}

func TestEndTurnAdvancesAndResets(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	_, err := f.turns.ChangePosition(ctx, MoveRequest{GameID: game.ID, UserID: 1, Rolled: 7})
	require.NoError(t, err)

	next, err := f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.UserID)
	assert.True(t, next.TurnStart.Valid)

	closed := f.player(t, game.ID, 1)
	assert.False(t, closed.TurnStart.Valid)
	assert.False(t, closed.Rolled.Valid)
	assert.Equal(t, 1, closed.TurnCount)

	// ending out of turn is rejected
	_, err = f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestTurnOrderWrapsAround(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2, 3)
	ctx := context.Background()

	for _, uid := range []int64{1, 2} {
		next, err := f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: uid})
		require.NoError(t, err)
		assert.Equal(t, uid+1, next.UserID)
	}

	next, err := f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), next.UserID, "turn cycles back to the first seat")
}

func TestRecordTimeoutValidatesWindow(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	// 89 seconds in: the window is still open
	f.advanceClock(89 * time.Second)
	_, err := f.turns.RecordTimeout(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	f.advanceClock(2 * time.Second)
	timedOut, err := f.turns.RecordTimeout(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, timedOut.ConsecutiveTimeouts)
	assert.Equal(t, 0, timedOut.TurnCount, "a timed-out turn is not a completed turn")

	// the turn moved on
	assert.True(t, f.player(t, game.ID, 2).TurnStart.Valid)

	// signaling against a player without the turn is rejected
	_, err = f.turns.RecordTimeout(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestStrikesResetOnCompletedTurn(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	f.advanceClock(TurnWindow)
	_, err := f.turns.RecordTimeout(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.NoError(t, err)

	f.advanceClock(TurnWindow)
	_, err = f.turns.RecordTimeout(ctx, TurnRequest{GameID: game.ID, UserID: 2})
	require.NoError(t, err)

	// back to player 1, who now plays the turn out
	_, err = f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.NoError(t, err)
	assert.Zero(t, f.player(t, game.ID, 1).ConsecutiveTimeouts)
	assert.Equal(t, 1, f.player(t, game.ID, 2).ConsecutiveTimeouts, "only the completed turn resets")
}

func timeOutPlayer(t *testing.T, f *fixture, gameID, userID int64, opponents []int64) {
	t.Helper()
	ctx := context.Background()
	f.advanceClock(TurnWindow)
	_, err := f.turns.RecordTimeout(ctx, TurnRequest{GameID: gameID, UserID: userID})
	require.NoError(t, err)
	// cycle the opponents' turns back to the target
	for _, uid := range opponents {
		_, err := f.turns.EndTurn(ctx, TurnRequest{GameID: gameID, UserID: uid})
		require.NoError(t, err)
	}
}

func TestVoteToRemoveNeedsStrikes(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2, 3)
	ctx := context.Background()

	_, err := f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 1, VoterUserID: 2})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// two strikes are still not enough with two opponents seated
	timeOutPlayer(t, f, game.ID, 1, []int64{2, 3})
	timeOutPlayer(t, f, game.ID, 1, []int64{2, 3})
	_, err = f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 1, VoterUserID: 2})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestVoteToRemoveUnanimous(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2, 3)
	ctx := context.Background()

	f.buy(t, game.ID, 1, 2)
	f.buy(t, game.ID, 1, 6)

	for i := 0; i < TimeoutStrikesForRemoval; i++ {
		timeOutPlayer(t, f, game.ID, 1, []int64{2, 3})
	}
	require.Equal(t, 3, f.player(t, game.ID, 1).ConsecutiveTimeouts)

	// first vote records but does not remove
	target, err := f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 1, VoterUserID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStatusActive, target.Status)

	// the same voter cannot vote twice
	_, err = f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 1, VoterUserID: 2})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// second opponent completes the vote
	target, err = f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 1, VoterUserID: 3})
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStatusRemoved, target.Status)

	// holdings revert to the bank
	owned, err := f.store.GetOwnershipsByGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	// two active players remain, the game keeps running
	assert.Equal(t, models.GameStatusRunning, f.game(t, game.ID).Status)
}

func TestVoteToRemoveWithSingleOpponent(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)
	ctx := context.Background()

	// one strike suffices head-to-head, and the lone vote removes
	f.advanceClock(TurnWindow)
	_, err := f.turns.RecordTimeout(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.NoError(t, err)

	target, err := f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 1, VoterUserID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStatusRemoved, target.Status)

	// the survivor wins by elimination
	game = f.game(t, game.ID)
	assert.Equal(t, models.GameStatusFinished, game.Status)
	require.True(t, game.WinnerUserID.Valid)
	assert.Equal(t, int64(2), game.WinnerUserID.Int64)
	assert.False(t, game.ValidWin, "too few completed turns for a valid win")
	assert.Equal(t, []int64{2}, f.settler.finishes)
	require.True(t, game.SettlementID.Valid)
	assert.Equal(t, []string{game.SettlementID.String}, f.settler.finishEventIDs)
}

func TestRemovalDropsOpenTrades(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2, 3)
	ctx := context.Background()

	// player 2's pending offer to player 3 locks cash
	trade, err := f.trade.Create(ctx, CreateTradeRequest{
		GameID:        game.ID,
		OffererUserID: 2,
		TargetUserID:  3,
		OfferedCash:   400,
	})
	require.NoError(t, err)

	// hand the turn to player 2 before the strikes
	_, err = f.turns.EndTurn(ctx, TurnRequest{GameID: game.ID, UserID: 1})
	require.NoError(t, err)

	for i := 0; i < TimeoutStrikesForRemoval; i++ {
		timeOutPlayer(t, f, game.ID, 2, []int64{3, 1})
	}
	_, err = f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 2, VoterUserID: 1})
	require.NoError(t, err)
	_, err = f.turns.VoteToRemove(ctx, VoteRequest{GameID: game.ID, TargetUserID: 2, VoterUserID: 3})
	require.NoError(t, err)

	dropped, err := f.trade.GetTradeByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusDeclined, dropped.Status)
	assert.Zero(t, f.player(t, game.ID, 2).TradeLockedBalance)
}

func TestVoteToRemoveSelfVoteRejected(t *testing.T) {
	f := newFixture(t)
	game := f.startGame(t, 1, 2)

	_, err := f.turns.VoteToRemove(context.Background(), VoteRequest{GameID: game.ID, TargetUserID: 1, VoterUserID: 1})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
