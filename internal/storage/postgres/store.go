package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swapQuoter/internal/model"
)

// Store provides Postgres persistence for snapshots and quotes.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertSnapshot inserts or updates a pool snapshot keyed by pool and block.
func (s *Store) UpsertSnapshot(ctx context.Context, snap *model.PoolSnapshot) error {
	if snap == nil {
		return nil
	}
	ticks, err := json.Marshal(snap.Ticks)
	if err != nil {
		return fmt.Errorf("marshal ticks: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO pool_snapshots (
			chain_id, pool_address, block_number, token0, token1, fee, tick_spacing,
			sqrt_price_x96, tick, liquidity, ticks, fetched_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
		ON CONFLICT (chain_id, pool_address, block_number)
		DO UPDATE SET
			token0 = EXCLUDED.token0,
			token1 = EXCLUDED.token1,
			fee = EXCLUDED.fee,
			tick_spacing = EXCLUDED.tick_spacing,
			sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
			tick = EXCLUDED.tick,
			liquidity = EXCLUDED.liquidity,
			ticks = EXCLUDED.ticks,
			fetched_at = EXCLUDED.fetched_at,
			updated_at = now()
	`,
		int64(snap.ChainID),
		snap.Address,
		int64(snap.BlockNumber),
		snap.Token0,
		snap.Token1,
		snap.Fee,
		snap.TickSpacing,
		snap.SqrtPriceX96,
		snap.Tick,
		snap.Liquidity,
		ticks,
		snap.FetchedAt,
	)
	return err
}

// InsertQuotes inserts a batch of quote records.
func (s *Store) InsertQuotes(ctx context.Context, quotes []model.QuoteRecord) error {
	if len(quotes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(`
			INSERT INTO quotes (
				chain_id, pool_address, block_number, zero_for_one, exact_output,
				amount_specified, amount_in, amount_out, fee_amount,
				sqrt_price_before, sqrt_price_after, tick_before, tick_after,
				ticks_crossed, fully_filled, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now())
		`,
			int64(q.ChainID),
			q.PoolAddress,
			int64(q.BlockNumber),
			q.ZeroForOne,
			q.ExactOutput,
			q.AmountSpecified,
			q.AmountIn,
			q.AmountOut,
			q.FeeAmount,
			q.SqrtPriceBefore,
			q.SqrtPriceAfter,
			q.TickBefore,
			q.TickAfter,
			q.TicksCrossed,
			q.FullyFilled,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range quotes {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
