package catalog

import (
	"context"
	"errors"
	"fmt"

	"restaurant-orders/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresGateway struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Gateway backed by the menu_items and specials tables.
func NewPostgres(pool *pgxpool.Pool) Gateway {
	return &postgresGateway{pool: pool}
}

func (g *postgresGateway) Lookup(ctx context.Context, item domain.ItemRef) (ItemInfo, error) {
	switch item.Kind {
	case domain.ItemKindRegular:
		return g.lookupMenuItem(ctx, item.ID)
	case domain.ItemKindPromotional:
		return g.lookupSpecial(ctx, item.ID)
	default:
		return ItemInfo{}, fmt.Errorf("lookup %s: %w", item, domain.ErrNotFound)
	}
}

func (g *postgresGateway) lookupMenuItem(ctx context.Context, id int64) (ItemInfo, error) {
	const q = `
SELECT title, price::text
FROM menu_items
WHERE id = $1
`
	var (
		name     string
		priceStr string
	)
	if err := g.pool.QueryRow(ctx, q, id).Scan(&name, &priceStr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemInfo{}, domain.ErrNotFound
		}
		return ItemInfo{}, err
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return ItemInfo{}, fmt.Errorf("parse menu item price: %w", err)
	}
	return ItemInfo{Name: name, UnitPrice: price}, nil
}

func (g *postgresGateway) lookupSpecial(ctx context.Context, id int64) (ItemInfo, error) {
	const q = `
SELECT title, price::text, discounted_price::text
FROM specials
WHERE id = $1 AND active
`
	var (
		name          string
		priceStr      string
		discountedStr *string
	)
	if err := g.pool.QueryRow(ctx, q, id).Scan(&name, &priceStr, &discountedStr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemInfo{}, domain.ErrNotFound
		}
		return ItemInfo{}, err
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return ItemInfo{}, fmt.Errorf("parse special price: %w", err)
	}
	var discounted *decimal.Decimal
	if discountedStr != nil {
		d, err := decimal.NewFromString(*discountedStr)
		if err != nil {
			return ItemInfo{}, fmt.Errorf("parse discounted price: %w", err)
		}
		discounted = &d
	}
	return ItemInfo{Name: name, UnitPrice: effectivePrice(price, discounted)}, nil
}
