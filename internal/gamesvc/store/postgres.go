package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
)

// PostgresStore is the authoritative Store backed by a pgx pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the read
// methods can run inside or outside an explicit transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetGameByID(ctx context.Context, gameID int64) (*models.Game, error) {
	return scanGame(s.db.QueryRow(ctx, selectGame+` WHERE id = $1`, gameID))
}

func (s *PostgresStore) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	return scanGame(s.db.QueryRow(ctx, selectGame+` WHERE code = $1`, code))
}

func (s *PostgresStore) GetPlayersByGameID(ctx context.Context, gameID int64) ([]*models.GamePlayer, error) {
	return (&pgTx{q: s.db}).GetPlayersByGameID(ctx, gameID)
}

func (s *PostgresStore) GetOwnershipsByGame(ctx context.Context, gameID int64) ([]*models.GameProperty, error) {
	return (&pgTx{q: s.db}).GetOwnershipsByGame(ctx, gameID)
}

func (s *PostgresStore) GetTradeByID(ctx context.Context, id int64) (*models.TradeRequest, error) {
	return scanTrade(s.db.QueryRow(ctx, selectTrade+` WHERE id = $1`, id))
}

// pgTx implements Tx over a live pgx transaction (or the pool itself
// for the plain-read paths above).
type pgTx struct {
	q querier
}

const selectGame = `
	SELECT id, code, mode, status, number_of_players, duration, is_ai,
	       winner_user_id, valid_win, settlement_id, created_at, started_at, updated_at
	FROM games`

func scanGame(row pgx.Row) (*models.Game, error) {
	g := &models.Game{}
	err := row.Scan(
		&g.ID, &g.Code, &g.Mode, &g.Status, &g.NumberOfPlayers, &g.Duration, &g.IsAI,
		&g.WinnerUserID, &g.ValidWin, &g.SettlementID, &g.CreatedAt, &g.StartedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

func (t *pgTx) InsertGame(ctx context.Context, g *models.Game) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO games (code, mode, status, number_of_players, duration, is_ai)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, g.Code, g.Mode, g.Status, g.NumberOfPlayers, g.Duration, g.IsAI).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return mapPgError("insert game", err)
	}
	return nil
}

func (t *pgTx) GetGameForUpdate(ctx context.Context, gameID int64) (*models.Game, error) {
	return scanGame(t.q.QueryRow(ctx, selectGame+` WHERE id = $1 FOR UPDATE`, gameID))
}

func (t *pgTx) GetGameByCodeForUpdate(ctx context.Context, code string) (*models.Game, error) {
	return scanGame(t.q.QueryRow(ctx, selectGame+` WHERE code = $1 FOR UPDATE`, code))
}

func (t *pgTx) UpdateGame(ctx context.Context, g *models.Game) error {
	_, err := t.q.Exec(ctx, `
		UPDATE games
		SET status=$1, winner_user_id=$2, valid_win=$3, settlement_id=$4,
		    started_at=$5, updated_at=now()
		WHERE id=$6
	`, g.Status, g.WinnerUserID, g.ValidWin, g.SettlementID, g.StartedAt, g.ID)
	if err != nil {
		return fmt.Errorf("update game %d: %w", g.ID, err)
	}
	return nil
}

const selectPlayer = `
	SELECT id, game_id, user_id, balance, trade_locked_balance, position, in_jail,
	       turn_order, turn_start, consecutive_timeouts, turn_count, rolled, status,
	       created_at, updated_at
	FROM game_players`

func scanPlayer(row pgx.Row) (*models.GamePlayer, error) {
	p := &models.GamePlayer{}
	err := row.Scan(
		&p.ID, &p.GameID, &p.UserID, &p.Balance, &p.TradeLockedBalance, &p.Position,
		&p.InJail, &p.TurnOrder, &p.TurnStart, &p.ConsecutiveTimeouts, &p.TurnCount,
		&p.Rolled, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game player: %w", err)
	}
	return p, nil
}

func (t *pgTx) InsertPlayer(ctx context.Context, p *models.GamePlayer) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO game_players
			(game_id, user_id, balance, trade_locked_balance, position, in_jail,
			 turn_order, turn_start, consecutive_timeouts, turn_count, rolled, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, p.GameID, p.UserID, p.Balance, p.TradeLockedBalance, p.Position, p.InJail,
		p.TurnOrder, p.TurnStart, p.ConsecutiveTimeouts, p.TurnCount, p.Rolled, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapPgError("insert game player", err)
	}
	return nil
}

func (t *pgTx) GetPlayerForUpdate(ctx context.Context, gameID, userID int64) (*models.GamePlayer, error) {
	return scanPlayer(t.q.QueryRow(ctx,
		selectPlayer+` WHERE game_id = $1 AND user_id = $2 FOR UPDATE`, gameID, userID))
}

func (t *pgTx) GetPlayersByGameID(ctx context.Context, gameID int64) ([]*models.GamePlayer, error) {
	rows, err := t.q.Query(ctx, selectPlayer+` WHERE game_id = $1 ORDER BY turn_order`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.GamePlayer
	for rows.Next() {
		p := &models.GamePlayer{}
		err := rows.Scan(
			&p.ID, &p.GameID, &p.UserID, &p.Balance, &p.TradeLockedBalance, &p.Position,
			&p.InJail, &p.TurnOrder, &p.TurnStart, &p.ConsecutiveTimeouts, &p.TurnCount,
			&p.Rolled, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (t *pgTx) UpdatePlayer(ctx context.Context, p *models.GamePlayer) error {
	_, err := t.q.Exec(ctx, `
		UPDATE game_players
		SET balance=$1, trade_locked_balance=$2, position=$3, in_jail=$4,
		    turn_start=$5, consecutive_timeouts=$6, turn_count=$7, rolled=$8,
		    status=$9, updated_at=now()
		WHERE id=$10
	`, p.Balance, p.TradeLockedBalance, p.Position, p.InJail, p.TurnStart,
		p.ConsecutiveTimeouts, p.TurnCount, p.Rolled, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("update game player %d: %w", p.ID, err)
	}
	return nil
}

const selectOwnership = `
	SELECT id, game_id, property_id, user_id, development, mortgaged, created_at, updated_at
	FROM game_properties`

func scanOwnership(row pgx.Row) (*models.GameProperty, error) {
	gp := &models.GameProperty{}
	err := row.Scan(
		&gp.ID, &gp.GameID, &gp.PropertyID, &gp.UserID,
		&gp.Development, &gp.Mortgaged, &gp.CreatedAt, &gp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game property: %w", err)
	}
	return gp, nil
}

func (t *pgTx) InsertOwnership(ctx context.Context, gp *models.GameProperty) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO game_properties (game_id, property_id, user_id, development, mortgaged)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, gp.GameID, gp.PropertyID, gp.UserID, gp.Development, gp.Mortgaged).
		Scan(&gp.ID, &gp.CreatedAt, &gp.UpdatedAt)
	if err != nil {
		return mapPgError("insert game property", err)
	}
	return nil
}

func (t *pgTx) GetOwnership(ctx context.Context, gameID int64, propertyID int) (*models.GameProperty, error) {
	return scanOwnership(t.q.QueryRow(ctx,
		selectOwnership+` WHERE game_id = $1 AND property_id = $2 FOR UPDATE`, gameID, propertyID))
}

func (t *pgTx) GetOwnershipByID(ctx context.Context, id int64) (*models.GameProperty, error) {
	return scanOwnership(t.q.QueryRow(ctx, selectOwnership+` WHERE id = $1 FOR UPDATE`, id))
}

func (t *pgTx) GetOwnershipsByGame(ctx context.Context, gameID int64) ([]*models.GameProperty, error) {
	rows, err := t.q.Query(ctx, selectOwnership+` WHERE game_id = $1 ORDER BY property_id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owned []*models.GameProperty
	for rows.Next() {
		gp := &models.GameProperty{}
		err := rows.Scan(
			&gp.ID, &gp.GameID, &gp.PropertyID, &gp.UserID,
			&gp.Development, &gp.Mortgaged, &gp.CreatedAt, &gp.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		owned = append(owned, gp)
	}
	return owned, rows.Err()
}

func (t *pgTx) UpdateOwnership(ctx context.Context, gp *models.GameProperty) error {
	_, err := t.q.Exec(ctx, `
		UPDATE game_properties
		SET user_id=$1, development=$2, mortgaged=$3, updated_at=now()
		WHERE id=$4
	`, gp.UserID, gp.Development, gp.Mortgaged, gp.ID)
	if err != nil {
		return fmt.Errorf("update game property %d: %w", gp.ID, err)
	}
	return nil
}

func (t *pgTx) DeleteOwnershipsByUser(ctx context.Context, gameID, userID int64) error {
	_, err := t.q.Exec(ctx,
		`DELETE FROM game_properties WHERE game_id = $1 AND user_id = $2`, gameID, userID)
	if err != nil {
		return fmt.Errorf("delete game properties for user %d: %w", userID, err)
	}
	return nil
}

const selectTrade = `
	SELECT id, game_id, offerer_user_id, target_user_id, offered_property_ids,
	       offered_cash, requested_property_ids, requested_cash, status,
	       created_at, updated_at
	FROM trade_requests`

func scanTrade(row pgx.Row) (*models.TradeRequest, error) {
	tr := &models.TradeRequest{}
	var offered, requested []int32
	err := row.Scan(
		&tr.ID, &tr.GameID, &tr.OffererUserID, &tr.TargetUserID, &offered,
		&tr.OfferedCash, &requested, &tr.RequestedCash, &tr.Status,
		&tr.CreatedAt, &tr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trade request: %w", err)
	}
	tr.OfferedPropertyIDs = fromInt32s(offered)
	tr.RequestedPropertyIDs = fromInt32s(requested)
	return tr, nil
}

func (t *pgTx) InsertTrade(ctx context.Context, tr *models.TradeRequest) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO trade_requests
			(game_id, offerer_user_id, target_user_id, offered_property_ids,
			 offered_cash, requested_property_ids, requested_cash, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, tr.GameID, tr.OffererUserID, tr.TargetUserID, toInt32s(tr.OfferedPropertyIDs),
		tr.OfferedCash, toInt32s(tr.RequestedPropertyIDs), tr.RequestedCash, tr.Status).
		Scan(&tr.ID, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		return mapPgError("insert trade request", err)
	}
	return nil
}

func (t *pgTx) GetTradeForUpdate(ctx context.Context, id int64) (*models.TradeRequest, error) {
	return scanTrade(t.q.QueryRow(ctx, selectTrade+` WHERE id = $1 FOR UPDATE`, id))
}

func (t *pgTx) GetOpenTradesForTarget(ctx context.Context, gameID, targetUserID int64) ([]*models.TradeRequest, error) {
	return t.queryTrades(ctx,
		selectTrade+` WHERE game_id = $1 AND target_user_id = $2 AND status IN ('pending','counter') FOR UPDATE`,
		gameID, targetUserID)
}

func (t *pgTx) GetOpenTradesByGame(ctx context.Context, gameID int64) ([]*models.TradeRequest, error) {
	return t.queryTrades(ctx,
		selectTrade+` WHERE game_id = $1 AND status IN ('pending','counter') FOR UPDATE`, gameID)
}

func (t *pgTx) queryTrades(ctx context.Context, sql string, args ...any) ([]*models.TradeRequest, error) {
	rows, err := t.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*models.TradeRequest
	for rows.Next() {
		tr := &models.TradeRequest{}
		var offered, requested []int32
		err := rows.Scan(
			&tr.ID, &tr.GameID, &tr.OffererUserID, &tr.TargetUserID, &offered,
			&tr.OfferedCash, &requested, &tr.RequestedCash, &tr.Status,
			&tr.CreatedAt, &tr.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tr.OfferedPropertyIDs = fromInt32s(offered)
		tr.RequestedPropertyIDs = fromInt32s(requested)
		trades = append(trades, tr)
	}
	return trades, rows.Err()
}

func (t *pgTx) UpdateTrade(ctx context.Context, tr *models.TradeRequest) error {
	_, err := t.q.Exec(ctx, `
		UPDATE trade_requests
		SET offerer_user_id=$1, target_user_id=$2, offered_property_ids=$3,
		    offered_cash=$4, requested_property_ids=$5, requested_cash=$6,
		    status=$7, updated_at=now()
		WHERE id=$8
	`, tr.OffererUserID, tr.TargetUserID, toInt32s(tr.OfferedPropertyIDs),
		tr.OfferedCash, toInt32s(tr.RequestedPropertyIDs), tr.RequestedCash,
		tr.Status, tr.ID)
	if err != nil {
		return fmt.Errorf("update trade request %d: %w", tr.ID, err)
	}
	return nil
}

func (t *pgTx) InsertRemovalVote(ctx context.Context, v *models.RemovalVote) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO removal_votes (game_id, target_user_id, voter_user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, v.GameID, v.TargetUserID, v.VoterUserID).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return mapPgError("insert removal vote", err)
	}
	return nil
}

func (t *pgTx) CountRemovalVotes(ctx context.Context, gameID, targetUserID int64) (int, error) {
	var n int
	err := t.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM removal_votes WHERE game_id = $1 AND target_user_id = $2`,
		gameID, targetUserID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count removal votes: %w", err)
	}
	return n, nil
}

// mapPgError folds unique-constraint violations into ErrDuplicate so the
// service layer can turn them into precondition rejections.
func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s (%s): %w", op, pgErr.ConstraintName, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func fromInt32s(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
