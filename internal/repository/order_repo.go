package repository

import (
	"context"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var orderText = errText{
	notFound:  "order not found",
	duplicate: "order already exists",
	reference: "user or address does not exist",
}

var orderLineText = errText{
	notFound:  "order product not found",
	duplicate: "product is already part of this order",
	reference: "order or product does not exist",
}

const (
	orderColumns     = `id, user_id, address_id, status, total_price, order_date, updated_at`
	orderLineColumns = `id, order_id, product_id, product_name, quantity, unit_price, quantity * unit_price`
)

// PostgresOrderRepository runs its queries on the pool, or on a transaction
// when handed to an InTx callback.
type PostgresOrderRepository struct {
	db *pgxpool.Pool
	q  querier
}

func NewOrderRepository(db *pgxpool.Pool) core.OrderRepository {
	return &PostgresOrderRepository{db: db, q: db}
}

// InTx runs fn in a single transaction. The store passed to fn must not escape it.
func (r *PostgresOrderRepository) InTx(ctx context.Context, fn func(store core.OrderStore) error) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&PostgresOrderRepository{db: r.db, q: tx})
	})
	return translate("orders.tx", err, orderText)
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.AddressID, &status, &o.TotalPrice, &o.OrderDate, &o.UpdatedAt)
	o.Status = models.OrderStatus(status)
	return o, err
}

func scanOrderLine(row pgx.Row) (models.OrderProduct, error) {
	var l models.OrderProduct
	err := row.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.LineTotal)
	return l, err
}

// --- Orders ---

func (r *PostgresOrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, "SELECT "+orderColumns+" FROM shop.orders WHERE id = $1", id))
	if err != nil {
		return nil, translate("orders.get", err, orderText)
	}
	return &o, nil
}

func (r *PostgresOrderRepository) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, "SELECT "+orderColumns+" FROM shop.orders WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, translate("orders.lock", err, orderText)
	}
	return &o, nil
}

func orderWhere(filter models.OrderFilter) *whereClause {
	w := &whereClause{}
	if filter.UserID != nil {
		w.add("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		w.add("status = ?", string(*filter.Status))
	}
	return w
}

func (r *PostgresOrderRepository) ListOrders(ctx context.Context, filter models.OrderFilter, page models.PageRequest) ([]models.Order, error) {
	w := orderWhere(filter)
	query := "SELECT " + orderColumns + " FROM shop.orders" + w.String() +
		" ORDER BY order_date DESC, id LIMIT " + w.next(page.Limit) + " OFFSET " + w.next(page.Offset())
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, translate("orders.list", err, orderText)
	}
	orders, err := collect(rows, scanOrder)
	return orders, translate("orders.list", err, orderText)
}

func (r *PostgresOrderRepository) CountOrders(ctx context.Context, filter models.OrderFilter) (int, error) {
	w := orderWhere(filter)
	var count int
	err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM shop.orders"+w.String(), w.args...).Scan(&count)
	return count, translate("orders.count", err, orderText)
}

func (r *PostgresOrderRepository) InsertOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO shop.orders (id, user_id, address_id, status, total_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_date, updated_at`
	err := r.q.QueryRow(ctx, query,
		order.ID, order.UserID, order.AddressID, string(order.Status), order.TotalPrice,
	).Scan(&order.OrderDate, &order.UpdatedAt)
	return translate("orders.insert", err, orderText)
}

func (r *PostgresOrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	tag, err := r.q.Exec(ctx, "UPDATE shop.orders SET status = $1 WHERE id = $2", string(status), id)
	if err != nil {
		return translate("orders.update_status", err, orderText)
	}
	return requireRow(tag, "orders.update_status", orderText)
}

func (r *PostgresOrderRepository) UpdateOrderTotal(ctx context.Context, id uuid.UUID, total float64) error {
	tag, err := r.q.Exec(ctx, "UPDATE shop.orders SET total_price = $1 WHERE id = $2", total, id)
	if err != nil {
		return translate("orders.update_total", err, orderText)
	}
	return requireRow(tag, "orders.update_total", orderText)
}

func (r *PostgresOrderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, "DELETE FROM shop.orders WHERE id = $1", id)
	if err != nil {
		return translate("orders.delete", err, orderText)
	}
	return requireRow(tag, "orders.delete", orderText)
}

// --- Stock ---

// LockProducts locks rows in id order so concurrent orders cannot deadlock.
func (r *PostgresOrderRepository) LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.q.Query(ctx,
		"SELECT "+productColumns+" FROM shop.products WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE",
		keys)
	if err != nil {
		return nil, translate("orders.lock_products", err, productText)
	}
	products, err := collect(rows, scanProduct)
	if err != nil {
		return nil, translate("orders.lock_products", err, productText)
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (r *PostgresOrderRepository) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error {
	tag, err := r.q.Exec(ctx, "UPDATE shop.products SET stock = stock + $1 WHERE id = $2", delta, productID)
	if err != nil {
		return translate("orders.adjust_stock", err, productText)
	}
	return requireRow(tag, "orders.adjust_stock", productText)
}

// --- Order products ---

func (r *PostgresOrderRepository) ListLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error) {
	rows, err := r.q.Query(ctx,
		"SELECT "+orderLineColumns+" FROM shop.order_products WHERE order_id = $1 ORDER BY product_name, id",
		orderID)
	if err != nil {
		return nil, translate("order_products.list", err, orderLineText)
	}
	lines, err := collect(rows, scanOrderLine)
	return lines, translate("order_products.list", err, orderLineText)
}

func (r *PostgresOrderRepository) GetLine(ctx context.Context, id uuid.UUID) (*models.OrderProduct, error) {
	l, err := scanOrderLine(r.q.QueryRow(ctx, "SELECT "+orderLineColumns+" FROM shop.order_products WHERE id = $1", id))
	if err != nil {
		return nil, translate("order_products.get", err, orderLineText)
	}
	return &l, nil
}

func (r *PostgresOrderRepository) LockLine(ctx context.Context, id uuid.UUID) (*models.OrderProduct, error) {
	l, err := scanOrderLine(r.q.QueryRow(ctx, "SELECT "+orderLineColumns+" FROM shop.order_products WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, translate("order_products.lock", err, orderLineText)
	}
	return &l, nil
}

func (r *PostgresOrderRepository) InsertLine(ctx context.Context, line *models.OrderProduct) error {
	query := `
		INSERT INTO shop.order_products (id, order_id, product_id, product_name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.OrderID, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice)
	return translate("order_products.insert", err, orderLineText)
}

func (r *PostgresOrderRepository) UpdateLine(ctx context.Context, line *models.OrderProduct) error {
	tag, err := r.q.Exec(ctx, "UPDATE shop.order_products SET quantity = $1 WHERE id = $2", line.Quantity, line.ID)
	if err != nil {
		return translate("order_products.update", err, orderLineText)
	}
	return requireRow(tag, "order_products.update", orderLineText)
}

func (r *PostgresOrderRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, "DELETE FROM shop.order_products WHERE id = $1", id)
	if err != nil {
		return translate("order_products.delete", err, orderLineText)
	}
	return requireRow(tag, "order_products.delete", orderLineText)
}
