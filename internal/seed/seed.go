package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type menuItemSeed struct {
	Title    string
	Category string
	Price    string
}

type specialSeed struct {
	Title           string
	Category        string
	Price           string
	DiscountedPrice string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	items := []menuItemSeed{
		{Title: "Margherita Pizza", Category: "pizza", Price: "150.00"},
		{Title: "Pepperoni Pizza", Category: "pizza", Price: "180.00"},
		{Title: "Caesar Salad", Category: "salads", Price: "95.50"},
		{Title: "Tomato Soup", Category: "soups", Price: "70.00"},
		{Title: "Lemonade", Category: "drinks", Price: "45.00"},
	}
	for _, it := range items {
		if err := upsertMenuItem(ctx, pool, it); err != nil {
			return fmt.Errorf("upsert menu item %q: %w", it.Title, err)
		}
	}

	specials := []specialSeed{
		{Title: "Chef's Ribeye", Category: "grill", Price: "420.00", DiscountedPrice: "350.00"},
		{Title: "Seafood Platter", Category: "grill", Price: "510.00"},
	}
	for _, sp := range specials {
		if err := upsertSpecial(ctx, pool, sp); err != nil {
			return fmt.Errorf("upsert special %q: %w", sp.Title, err)
		}
	}

	return nil
}

func upsertMenuItem(ctx context.Context, pool *pgxpool.Pool, it menuItemSeed) error {
	const q = `
INSERT INTO menu_items (title, category, price)
VALUES ($1, $2, $3::numeric)
ON CONFLICT (title) DO UPDATE
SET category = EXCLUDED.category,
    price = EXCLUDED.price
`
	_, err := pool.Exec(ctx, q, it.Title, it.Category, it.Price)
	return err
}

func upsertSpecial(ctx context.Context, pool *pgxpool.Pool, sp specialSeed) error {
	const q = `
INSERT INTO specials (title, category, price, discounted_price, active)
VALUES ($1, $2, $3::numeric, NULLIF($4, '')::numeric, TRUE)
ON CONFLICT (title) DO UPDATE
SET category = EXCLUDED.category,
    price = EXCLUDED.price,
    discounted_price = EXCLUDED.discounted_price,
    active = TRUE
`
	_, err := pool.Exec(ctx, q, sp.Title, sp.Category, sp.Price, sp.DiscountedPrice)
	return err
}
