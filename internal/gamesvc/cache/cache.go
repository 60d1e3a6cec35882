package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
)

// GameCache serves game-by-code reads from redis. It is strictly a
// read accelerator: every mutation to a game invalidates its entry and
// the relational store stays the source of truth.
type GameCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func Connect() (*GameCache, error) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &GameCache{rdb: rdb, ttl: 5 * time.Minute}, nil
}

func (c *GameCache) Close() error {
	return c.rdb.Close()
}

func key(code string) string {
	return "game:code:" + code
}

// GetGame returns (nil, nil) on a cache miss.
func (c *GameCache) GetGame(ctx context.Context, code string) (*models.Game, error) {
	raw, err := c.rdb.Get(ctx, key(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	game := &models.Game{}
	if err := json.Unmarshal(raw, game); err != nil {
		return nil, err
	}
	return game, nil
}

func (c *GameCache) SetGame(ctx context.Context, g *models.Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(g.Code), raw, c.ttl).Err()
}

func (c *GameCache) InvalidateGame(ctx context.Context, code string) error {
	return c.rdb.Del(ctx, key(code)).Err()
}
