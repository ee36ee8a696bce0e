package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"restaurant-orders/internal/domain"
	customerrepo "restaurant-orders/internal/repository/customer"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresRepo struct {
	pool      *pgxpool.Pool
	customers customerrepo.Repository
	logger    *log.Logger
}

// NewPostgres returns a Repository backed by Postgres. Customer profiles are
// resolved through customers inside the checkout transaction.
func NewPostgres(pool *pgxpool.Pool, customers customerrepo.Repository, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, customers: customers, logger: logger}
}

func (r *postgresRepo) CreateFromCart(ctx context.Context, cartID int64, in CreateOrderInput, prices map[domain.ItemRef]PricedItem) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Draining with DELETE ... RETURNING serializes concurrent checkouts of
	// the same cart: the second transaction blocks on the row locks, then
	// sees zero lines and fails with ErrEmptyCart instead of double-charging.
	rows, err := tx.Query(ctx, `
DELETE FROM cart_lines
WHERE cart_id = $1
RETURNING item_kind, item_id, quantity
`, cartID)
	if err != nil {
		return nil, err
	}

	type drainedLine struct {
		item domain.ItemRef
		qty  int
	}
	var drained []drainedLine
	for rows.Next() {
		var l drainedLine
		if err := rows.Scan(&l.item.Kind, &l.item.ID, &l.qty); err != nil {
			rows.Close()
			return nil, err
		}
		drained = append(drained, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var items []domain.OrderItem
	for _, l := range drained {
		priced, ok := prices[l.item]
		if !ok {
			r.logger.Printf("checkout: skipping cart line %s, no longer resolves in catalog", l.item)
			continue
		}
		items = append(items, domain.OrderItem{
			Item:     l.item,
			Name:     priced.Name,
			Quantity: l.qty,
			Price:    priced.Price,
		})
	}
	if len(items) == 0 {
		// Rolling back restores the drained lines, so a failed checkout
		// never clears the cart.
		return nil, domain.ErrEmptyCart
	}

	cust, err := r.customers.ResolveInTx(ctx, tx, in.Customer)
	if err != nil {
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	order := domain.Order{
		CustomerID:    &cust.ID,
		UserID:        in.UserID,
		SessionID:     in.SessionID,
		Type:          in.Type,
		Status:        domain.StatusPending,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		CustomerName:  cust.DisplayName(),
	}

	// Exactly one of the destination fields is populated, matching the
	// order type. The off-type column stays NULL.
	var deliveryAddress, tableNumber *string
	switch in.Type {
	case domain.OrderTypeDelivery:
		deliveryAddress = &in.DeliveryAddress
		order.DeliveryAddress = in.DeliveryAddress
	case domain.OrderTypeDineIn:
		tableNumber = &in.TableNumber
		order.TableNumber = in.TableNumber
	}
	err = tx.QueryRow(ctx, `
INSERT INTO orders (customer_id, user_id, session_id, order_type, status, total, delivery_address, table_number, payment_method, notes, created_at)
VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10)
RETURNING id, created_at
`, cust.ID, in.UserID, in.SessionID, in.Type, domain.StatusPending, deliveryAddress, tableNumber, in.PaymentMethod, in.Notes, in.CreatedAt).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	total := decimal.Zero
	for idx := range items {
		item := &items[idx]
		item.OrderID = order.ID
		err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, item_kind, item_id, name, quantity, price)
VALUES ($1, $2, $3, $4, $5, $6::numeric)
RETURNING id
`, order.ID, item.Item.Kind, item.Item.ID, item.Name, item.Quantity, item.Price.StringFixed(2)).
			Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("insert order item %s: %w", item.Item, err)
		}
		total = total.Add(item.LineTotal())
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET total = $1::numeric WHERE id = $2`, total.StringFixed(2), order.ID); err != nil {
		return nil, fmt.Errorf("write order total: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("delete cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	order.Total = total
	order.Items = items
	return &order, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const q = `
SELECT o.id, o.customer_id, o.user_id, o.session_id, o.order_type, o.status, o.total::text,
       COALESCE(o.delivery_address, ''), COALESCE(o.table_number, ''), o.payment_method,
       COALESCE(o.notes, ''), o.created_at,
       COALESCE(c.first_name, ''), COALESCE(c.last_name, '')
FROM orders o
LEFT JOIN customers c ON c.id = o.customer_id
WHERE o.id = $1
`
	var (
		order     domain.Order
		totalStr  string
		firstName string
		lastName  string
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.UserID,
		&order.SessionID,
		&order.Type,
		&order.Status,
		&totalStr,
		&order.DeliveryAddress,
		&order.TableNumber,
		&order.PaymentMethod,
		&order.Notes,
		&order.CreatedAt,
		&firstName,
		&lastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	order.Total, err = decimal.NewFromString(totalStr)
	if err != nil {
		return nil, fmt.Errorf("parse order total: %w", err)
	}
	order.CustomerName = domain.Customer{FirstName: firstName, LastName: lastName}.DisplayName()

	items, err := r.fetchItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = $1
WHERE id = $2 AND status = $3
`, to, id, from)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const q = `
SELECT id, order_id, item_kind, item_id, name, quantity, price::text
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item     domain.OrderItem
			priceStr string
		)
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Item.Kind,
			&item.Item.ID,
			&item.Name,
			&item.Quantity,
			&priceStr,
		); err != nil {
			return nil, err
		}
		item.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("parse item price: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
