package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
    id BIGSERIAL PRIMARY KEY,
    code TEXT NOT NULL,
    mode TEXT NOT NULL DEFAULT 'PUBLIC',
    status TEXT NOT NULL DEFAULT 'PENDING',
    number_of_players INT NOT NULL,
    duration INT NOT NULL DEFAULT 0,
    is_ai BOOLEAN NOT NULL DEFAULT FALSE,
    winner_user_id BIGINT,
    valid_win BOOLEAN NOT NULL DEFAULT FALSE,
    settlement_id TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    started_at TIMESTAMPTZ,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT unique_game_code UNIQUE (code)
);

CREATE TABLE IF NOT EXISTS game_players (
    id BIGSERIAL PRIMARY KEY,
    game_id BIGINT NOT NULL REFERENCES games(id),
    user_id BIGINT NOT NULL,
    balance BIGINT NOT NULL DEFAULT 0,
    trade_locked_balance BIGINT NOT NULL DEFAULT 0,
    position INT NOT NULL DEFAULT 1,
    in_jail BOOLEAN NOT NULL DEFAULT FALSE,
    turn_order INT NOT NULL,
    turn_start TIMESTAMPTZ,
    consecutive_timeouts INT NOT NULL DEFAULT 0,
    turn_count INT NOT NULL DEFAULT 0,
    rolled INT,
    status TEXT NOT NULL DEFAULT 'active',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT unique_game_user UNIQUE (game_id, user_id),
    CONSTRAINT check_trade_lock CHECK (trade_locked_balance >= 0)
);

CREATE TABLE IF NOT EXISTS game_properties (
    id BIGSERIAL PRIMARY KEY,
    game_id BIGINT NOT NULL REFERENCES games(id),
    property_id INT NOT NULL,
    user_id BIGINT NOT NULL,
    development INT NOT NULL DEFAULT 0,
    mortgaged BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT unique_game_position UNIQUE (game_id, property_id),
    CONSTRAINT check_development CHECK (development BETWEEN 0 AND 5),
    CONSTRAINT check_mortgage_undeveloped CHECK (NOT mortgaged OR development = 0)
);

CREATE TABLE IF NOT EXISTS trade_requests (
    id BIGSERIAL PRIMARY KEY,
    game_id BIGINT NOT NULL REFERENCES games(id),
    offerer_user_id BIGINT NOT NULL,
    target_user_id BIGINT NOT NULL,
    offered_property_ids INT[] NOT NULL DEFAULT '{}',
    offered_cash BIGINT NOT NULL DEFAULT 0,
    requested_property_ids INT[] NOT NULL DEFAULT '{}',
    requested_cash BIGINT NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS removal_votes (
    id BIGSERIAL PRIMARY KEY,
    game_id BIGINT NOT NULL REFERENCES games(id),
    target_user_id BIGINT NOT NULL,
    voter_user_id BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT unique_removal_vote UNIQUE (game_id, target_user_id, voter_user_id)
);

CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
CREATE INDEX IF NOT EXISTS idx_game_players_game_id ON game_players(game_id);
CREATE INDEX IF NOT EXISTS idx_game_properties_game_id ON game_properties(game_id);
CREATE INDEX IF NOT EXISTS idx_trade_requests_game_id ON trade_requests(game_id);
CREATE INDEX IF NOT EXISTS idx_trade_requests_target ON trade_requests(game_id, target_user_id, status);
`

// Migrate applies the schema; statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
