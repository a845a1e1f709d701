package player

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Querier is the subset of *pgxpool.Pool used to read the pool table.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const selectPoolPlayers = `
	SELECT name, position, base_price
	FROM players_pool
	ORDER BY position, name`

type poolRow struct {
	Name      string `db:"name"`
	Position  string `db:"position"`
	BasePrice int    `db:"base_price"`
}

// LoadPostgres reads the pool from the players_pool table. An empty table
// falls back to the built-in sample set.
func LoadPostgres(ctx context.Context, q Querier) (*Pool, error) {
	rows, err := q.Query(ctx, selectPoolPlayers)
	if err != nil {
		return nil, fmt.Errorf("failed to query players_pool: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[poolRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan players_pool: %w", err)
	}

	if len(records) == 0 {
		log.Warn().Msg("players_pool table is empty, using built-in sample")
		return MustDefaultPool(), nil
	}

	players := make([]models.PoolPlayer, len(records))
	for i, r := range records {
		players[i] = models.PoolPlayer{Name: r.Name, Position: r.Position, BasePrice: r.BasePrice}
	}

	pool, err := NewPool(players)
	if err != nil {
		return nil, fmt.Errorf("invalid players_pool contents: %w", err)
	}

	log.Info().Int("players", pool.Len()).Msg("loaded player pool from postgres")
	return pool, nil
}
