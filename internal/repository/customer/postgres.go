package customer

import (
	"context"
	"errors"
	"io"
	"log"

	"restaurant-orders/internal/domain"
	"github.com/jackc/pgx/v5"
)

type postgresRepo struct {
	logger *log.Logger
}

// NewPostgres returns a Repository whose queries run on the transaction the
// caller passes in.
func NewPostgres(logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{logger: logger}
}

func (r *postgresRepo) ResolveInTx(ctx context.Context, tx pgx.Tx, c domain.Customer) (*domain.Customer, error) {
	// DO NOTHING keeps the existing profile under concurrent guest
	// checkouts with the same phone; the follow-up select wins either way.
	const insert = `
INSERT INTO customers (first_name, last_name, phone, address, email)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (phone) DO NOTHING
`
	if _, err := tx.Exec(ctx, insert, c.FirstName, c.LastName, c.Phone, c.Address, c.Email); err != nil {
		return nil, err
	}
	return getByPhone(ctx, tx, c.Phone)
}

func getByPhone(ctx context.Context, tx pgx.Tx, phone string) (*domain.Customer, error) {
	const sel = `
SELECT id, first_name, last_name, phone, address, email
FROM customers
WHERE phone = $1
`
	var c domain.Customer
	err := tx.QueryRow(ctx, sel, phone).Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Phone,
		&c.Address,
		&c.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
