package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/store"
)

// recordingPublisher captures fan-out events so tests can assert on
// what was announced after each commit.
type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishGameUpdate(code, event string) error {
	p.events = append(p.events, event)
	return nil
}

// recordingSettler captures settlement calls.
type recordingSettler struct {
	purchases      []int
	trades         []int64
	finishes       []int64
	finishEventIDs []string
}

func (s *recordingSettler) SettlePurchase(gameID, userID int64, propertyID int, price int64) {
	s.purchases = append(s.purchases, propertyID)
}

func (s *recordingSettler) SettleTrade(gameID, tradeID int64) {
	s.trades = append(s.trades, tradeID)
}

func (s *recordingSettler) SettleFinish(gameID, winnerUserID int64, valid bool, eventID string) {
	s.finishes = append(s.finishes, winnerUserID)
	s.finishEventIDs = append(s.finishEventIDs, eventID)
}

// fixture wires every service onto one in-memory store with a shared
// synthetic clock.
type fixture struct {
	store   *store.MemoryStore
	pub     *recordingPublisher
	settler *recordingSettler

	games *GameService
	props *PropertyService
	trade *TradeService
	turns *TurnService
	wins  *WinService

	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.NewMemoryStore()
	pub := &recordingPublisher{}
	settler := &recordingSettler{}
	collab := &Collab{Publisher: pub, Settler: settler}

	f := &fixture{
		store:   st,
		pub:     pub,
		settler: settler,
		now:     time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.games = NewGameService(st, collab)
	f.games.Clock = clock
	f.props = NewPropertyService(st, collab)
	f.trade = NewTradeService(st, collab)
	f.turns = NewTurnService(st, collab)
	f.turns.Clock = clock
	f.wins = NewWinService(st, collab)
	f.wins.Clock = clock

	return f
}

func (f *fixture) advanceClock(d time.Duration) {
	f.now = f.now.Add(d)
}

// startGame creates a running game seating the given users in order,
// with a 60-minute timer.
func (f *fixture) startGame(t *testing.T, userIDs ...int64) *models.Game {
	t.Helper()
	ctx := context.Background()

	game, err := f.games.CreateGame(ctx, CreateGameRequest{
		UserID:          userIDs[0],
		Mode:            models.GameModePublic,
		NumberOfPlayers: len(userIDs),
		Duration:        60,
	})
	require.NoError(t, err)

	for _, uid := range userIDs[1:] {
		game, err = f.games.JoinGame(ctx, JoinGameRequest{Code: game.Code, UserID: uid})
		require.NoError(t, err)
	}
	require.Equal(t, models.GameStatusRunning, game.Status)
	return game
}

func (f *fixture) player(t *testing.T, gameID, userID int64) *models.GamePlayer {
	t.Helper()
	players, err := f.store.GetPlayersByGameID(context.Background(), gameID)
	require.NoError(t, err)
	for _, p := range players {
		if p.UserID == userID {
			return p
		}
	}
	t.Fatalf("player %d not found in game %d", userID, gameID)
	return nil
}

func (f *fixture) game(t *testing.T, gameID int64) *models.Game {
	t.Helper()
	game, err := f.store.GetGameByID(context.Background(), gameID)
	require.NoError(t, err)
	require.NotNil(t, game)
	return game
}

// buy is a shortcut for a bank purchase that must succeed.
func (f *fixture) buy(t *testing.T, gameID, userID int64, propertyID int) *models.GameProperty {
	t.Helper()
	gp, err := f.props.Buy(context.Background(), PropertyRequest{
		GameID:     gameID,
		PropertyID: propertyID,
		UserID:     userID,
	})
	require.NoError(t, err)
	return gp
}

// totalCash sums every seated player's balance, removed seats included.
func (f *fixture) totalCash(t *testing.T, gameID int64) int64 {
	t.Helper()
	players, err := f.store.GetPlayersByGameID(context.Background(), gameID)
	require.NoError(t, err)
	var sum int64
	for _, p := range players {
		sum += p.Balance
	}
	return sum
}
