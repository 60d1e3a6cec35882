package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
)

func seedGame(t *testing.T, st *MemoryStore) *models.Game {
	t.Helper()
	game := &models.Game{Code: "ABC123", Mode: models.GameModePublic, Status: models.GameStatusRunning, NumberOfPlayers: 2}
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.InsertGame(ctx, game)
	})
	require.NoError(t, err)
	require.NotZero(t, game.ID)
	return game
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	game := seedGame(t, st)

	boom := errors.New("boom")
	err := st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		p := &models.GamePlayer{GameID: game.ID, UserID: 1, Balance: 1500, Status: models.PlayerStatusActive}
		if err := tx.InsertPlayer(ctx, p); err != nil {
			return err
		}
		g, err := tx.GetGameForUpdate(ctx, game.ID)
		if err != nil {
			return err
		}
		g.Status = models.GameStatusFinished
		if err := tx.UpdateGame(ctx, g); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// nothing from the failed closure is visible
	players, err := st.GetPlayersByGameID(ctx, game.ID)
	require.NoError(t, err)
	assert.Empty(t, players)

	g, err := st.GetGameByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusRunning, g.Status)
}

func TestGetGameByCodeForUpdateInsideTx(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	game := seedGame(t, st)

	err := st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		g, err := tx.GetGameByCodeForUpdate(ctx, game.Code)
		if err != nil {
			return err
		}
		require.NotNil(t, g)
		assert.Equal(t, game.ID, g.ID)

		missing, err := tx.GetGameByCodeForUpdate(ctx, "NOPE00")
		if err != nil {
			return err
		}
		assert.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
}

func TestInsertPlayerDuplicateSeat(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	game := seedGame(t, st)

	err := st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertPlayer(ctx, &models.GamePlayer{GameID: game.ID, UserID: 1})
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertPlayer(ctx, &models.GamePlayer{GameID: game.ID, UserID: 1})
	})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestInsertOwnershipDuplicatePosition(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	game := seedGame(t, st)

	err := st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.InsertOwnership(ctx, &models.GameProperty{GameID: game.ID, PropertyID: 2, UserID: 1}); err != nil {
			return err
		}
		return tx.InsertOwnership(ctx, &models.GameProperty{GameID: game.ID, PropertyID: 2, UserID: 2})
	})
	require.ErrorIs(t, err, ErrDuplicate)

	// the whole closure rolled back, the first row included
	owned, err := st.GetOwnershipsByGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestReadsReturnNilWhenMissing(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	g, err := st.GetGameByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, g)

	g, err = st.GetGameByCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, g)

	tr, err := st.GetTradeByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestReadsReturnCopies(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	game := seedGame(t, st)

	g, err := st.GetGameByID(ctx, game.ID)
	require.NoError(t, err)
	g.Status = models.GameStatusCancelled

	// mutating the returned value must not touch the stored row
	again, err := st.GetGameByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusRunning, again.Status)
}

func TestTradeRoundTripAndOpenQueries(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	game := seedGame(t, st)

	trade := &models.TradeRequest{
		GameID:             game.ID,
		OffererUserID:      1,
		TargetUserID:       2,
		OfferedPropertyIDs: []int{2, 4},
		OfferedCash:        100,
		Status:             models.TradeStatusPending,
	}
	err := st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertTrade(ctx, trade)
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		open, err := tx.GetOpenTradesForTarget(ctx, game.ID, 2)
		if err != nil {
			return err
		}
		require.Len(t, open, 1)
		assert.Equal(t, []int{2, 4}, open[0].OfferedPropertyIDs)

		open[0].Status = models.TradeStatusDeclined
		return tx.UpdateTrade(ctx, open[0])
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		open, err := tx.GetOpenTradesByGame(ctx, game.ID)
		if err != nil {
			return err
		}
		assert.Empty(t, open)
		return nil
	})
	require.NoError(t, err)
}

func TestDeleteOwnershipsByUser(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	game := seedGame(t, st)

	err := st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		for _, pos := range []int{2, 4, 6} {
			owner := int64(1)
			if pos == 6 {
				owner = 2
			}
			if err := tx.InsertOwnership(ctx, &models.GameProperty{GameID: game.ID, PropertyID: pos, UserID: owner}); err != nil {
				return err
			}
		}
		return tx.DeleteOwnershipsByUser(ctx, game.ID, 1)
	})
	require.NoError(t, err)

	owned, err := st.GetOwnershipsByGame(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, int64(2), owned[0].UserID)
}

func TestCountRemovalVotes(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	game := seedGame(t, st)

	err := st.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		for _, voter := range []int64{2, 3} {
			v := &models.RemovalVote{GameID: game.ID, TargetUserID: 1, VoterUserID: voter}
			if err := tx.InsertRemovalVote(ctx, v); err != nil {
				return err
			}
		}
		if err := tx.InsertRemovalVote(ctx, &models.RemovalVote{GameID: game.ID, TargetUserID: 1, VoterUserID: 2}); !errors.Is(err, ErrDuplicate) {
			return errors.New("expected duplicate vote to be rejected")
		}
		n, err := tx.CountRemovalVotes(ctx, game.ID, 1)
		if err != nil {
			return err
		}
		assert.Equal(t, 2, n)
		return nil
	})
	require.NoError(t, err)
}
