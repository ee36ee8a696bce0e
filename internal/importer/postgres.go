package importer

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresWriter upserts imported rows into menu_items and specials.
type PostgresWriter struct {
	pool *pgxpool.Pool
}

func NewPostgresWriter(pool *pgxpool.Pool) *PostgresWriter {
	return &PostgresWriter{pool: pool}
}

func (w *PostgresWriter) UpsertMenuItem(ctx context.Context, row MenuRow) error {
	const q = `
INSERT INTO menu_items (title, category, price)
VALUES ($1, $2, $3::numeric)
ON CONFLICT (title) DO UPDATE
SET category = EXCLUDED.category,
    price = EXCLUDED.price
`
	_, err := w.pool.Exec(ctx, q, row.Title, row.Category, row.Price.StringFixed(2))
	return err
}

func (w *PostgresWriter) UpsertSpecial(ctx context.Context, row MenuRow) error {
	const q = `
INSERT INTO specials (title, category, price, discounted_price, active)
VALUES ($1, $2, $3::numeric, NULLIF($4, '')::numeric, TRUE)
ON CONFLICT (title) DO UPDATE
SET category = EXCLUDED.category,
    price = EXCLUDED.price,
    discounted_price = EXCLUDED.discounted_price,
    active = TRUE
`
	disc := ""
	if row.DiscountedPrice != nil {
		disc = row.DiscountedPrice.StringFixed(2)
	}
	_, err := w.pool.Exec(ctx, q, row.Title, row.Category, row.Price.StringFixed(2), disc)
	return err
}
