package cart

import (
	"context"
	"errors"
	"fmt"

	"restaurant-orders/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id, identity_kind, identity_key, created_at, updated_at`

func (r *postgresRepo) GetOrCreate(ctx context.Context, identity domain.Identity) (*domain.Cart, error) {
	// The unique (identity_kind, identity_key) constraint makes concurrent
	// first mutations converge on a single cart row.
	const q = `
INSERT INTO carts (identity_kind, identity_key)
VALUES ($1, $2)
ON CONFLICT (identity_kind, identity_key) DO NOTHING
`
	if _, err := r.pool.Exec(ctx, q, identity.Kind, identity.Key); err != nil {
		return nil, err
	}
	return r.GetByIdentity(ctx, identity)
}

func (r *postgresRepo) GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Cart, error) {
	q := fmt.Sprintf(`SELECT %s FROM carts WHERE identity_kind = $1 AND identity_key = $2`, cartColumns)

	var cart domain.Cart
	err := r.pool.QueryRow(ctx, q, identity.Kind, identity.Key).Scan(
		&cart.ID,
		&cart.IdentityKind,
		&cart.IdentityKey,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.fetchLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines
	return &cart, nil
}

func (r *postgresRepo) AddLine(ctx context.Context, cartID int64, item domain.ItemRef, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO cart_lines (cart_id, item_kind, item_id, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, item_kind, item_id)
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
`
	if _, err := tx.Exec(ctx, q, cartID, item.Kind, item.ID, quantity); err != nil {
		return err
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, cartID, lineID int64, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quantity <= 0 {
		// Intentional removal path, not an error path.
		cmd, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1 AND cart_id = $2`, lineID, cartID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	} else {
		cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE id = $2 AND cart_id = $3
`, quantity, lineID, cartID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveLine(ctx context.Context, cartID, lineID int64) error {
	return r.SetLineQuantity(ctx, cartID, lineID, 0)
}

func (r *postgresRepo) Merge(ctx context.Context, sessionToken, userID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock the session cart so concurrent merges of the same token
	// serialize; the loser finds the cart gone and no-ops.
	var sessionCartID int64
	err = tx.QueryRow(ctx, `
SELECT id FROM carts
WHERE identity_kind = $1 AND identity_key = $2
FOR UPDATE
`, domain.IdentitySession, sessionToken).Scan(&sessionCartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO carts (identity_kind, identity_key)
VALUES ($1, $2)
ON CONFLICT (identity_kind, identity_key) DO NOTHING
`, domain.IdentityUser, userID); err != nil {
		return err
	}

	var userCartID int64
	if err := tx.QueryRow(ctx, `
SELECT id FROM carts
WHERE identity_kind = $1 AND identity_key = $2
FOR UPDATE
`, domain.IdentityUser, userID).Scan(&userCartID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, item_kind, item_id, quantity)
SELECT $1, item_kind, item_id, quantity
FROM cart_lines
WHERE cart_id = $2
ON CONFLICT (cart_id, item_kind, item_id)
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
`, userCartID, sessionCartID); err != nil {
		return err
	}

	// Lines cascade with the cart.
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, sessionCartID); err != nil {
		return err
	}
	if err := touchCart(ctx, tx, userCartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) fetchLines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	const q = `
SELECT id, cart_id, item_kind, item_id, quantity
FROM cart_lines
WHERE cart_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.Item.Kind,
			&line.Item.ID,
			&line.Quantity,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID int64) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}
