package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const orderColumns = `id, created_at, updated_at, customer_id, status, approved, priority_score`

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create вставляет заказ вместе с позициями. Предполагается вызов внутри
// uow-транзакции, иначе заказ и позиции не атомарны.
func (r *OrderRepository) Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO orders (customer_id, status, approved)
		 VALUES ($1, $2, false)
		 RETURNING `+orderColumns,
		args.CustomerID, string(args.Status),
	)
	order, err := scanOrder(row, "creating order for customer %d", args.CustomerID)
	if err != nil {
		return nil, err
	}

	items, itemsErr := r.insertItems(ctx, order.ID, args.Items)
	if itemsErr != nil {
		return nil, itemsErr
	}
	order.Items = items
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row, "finding order with id %d", id)
	if err != nil {
		return nil, err
	}
	if attachErr := r.attachItems(ctx, []*domain.Order{order}); attachErr != nil {
		return nil, attachErr
	}
	return order, nil
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
}

func (r *OrderRepository) GetByCustomerID(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`, customerID)
}

// GetPendingUnapproved возвращает заказы-кандидаты этапа подтверждения.
func (r *OrderRepository) GetPendingUnapproved(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE status = $1 AND approved = false
		 ORDER BY created_at, id`, string(domain.OrderStatusPending))
}

// GetApprovedSorted возвращает подтвержденные заказы в порядке обработки
// распределением: замороженный скор по убыванию, при равенстве - дата создания
// и id по возрастанию.
func (r *OrderRepository) GetApprovedSorted(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE status = $1 AND approved = true
		 ORDER BY priority_score DESC, created_at, id`, string(domain.OrderStatusApproved))
}

func (r *OrderRepository) UpdateApproval(ctx context.Context, args repoargs.OrderApprovalUpdate) (*domain.Order, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE orders
		 SET status = $2, approved = $3, priority_score = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+orderColumns,
		args.ID, string(args.Status), args.Approved, args.PriorityScore,
	)
	return scanOrder(row, "updating approval for order with id %d", args.ID)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatusType) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return convertErr(err, "updating status for order with id %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "updating status for order with id %d", id)
	}
	return nil
}

// ReplaceItems заменяет набор позиций заказа целиком.
func (r *OrderRepository) ReplaceItems(
	ctx context.Context,
	orderID int64,
	items []repoargs.OrderItemCreate,
) ([]domain.OrderItem, error) {
	if _, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return nil, convertErr(err, "replacing items for order with id %d", orderID)
	}
	return r.insertItems(ctx, orderID, items)
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	// позиции удаляются каскадом по FK.
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting order with id %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting order with id %d", id)
	}
	return nil
}

func (r *OrderRepository) insertItems(
	ctx context.Context,
	orderID int64,
	items []repoargs.OrderItemCreate,
) ([]domain.OrderItem, error) {
	var inserted = make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		row := r.db.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, order_id, product_id, quantity, unit_price`,
			orderID, item.ProductID, item.Quantity, item.UnitPrice,
		)
		var oi domain.OrderItem
		if err := row.Scan(&oi.ID, &oi.OrderID, &oi.ProductID, &oi.Quantity, &oi.UnitPrice); err != nil {
			return nil, convertErr(err, "inserting item for order with id %d", orderID)
		}
		inserted = append(inserted, oi)
	}
	return inserted, nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, convertErr(err, "getting orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, scanErr := scanOrder(rows, "scanning order")
		if scanErr != nil {
			return nil, scanErr
		}
		orders = append(orders, *o)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting orders")
	}

	refs := make([]*domain.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if attachErr := r.attachItems(ctx, refs); attachErr != nil {
		return nil, attachErr
	}
	return orders, nil
}

// attachItems подгружает позиции для набора заказов одним запросом.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	byID := make(map[int64]*domain.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price
		 FROM order_items WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return convertErr(err, "getting order items")
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if scanErr := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); scanErr != nil {
			return convertErr(scanErr, "scanning order item")
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return convertErr(rowsErr, "getting order items")
	}
	return nil
}

func scanOrder(row pgx.Row, format string, args ...any) (*domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.CustomerID, &status, &o.Approved, &o.PriorityScore)
	if err != nil {
		return nil, convertErr(err, format, args...)
	}
	o.Status = domain.OrderStatusType(status)
	return &o, nil
}
