package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const productColumns = `id, created_at, updated_at, name, stock, price`

type ProductRepository struct {
	db uow.DBTX
}

func NewProductRepository(db uow.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(
	ctx context.Context,
	args repoargs.ProductCreate,
) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO products (name, stock, price)
		 VALUES ($1, $2, $3)
		 RETURNING `+productColumns,
		args.Name, args.Stock, args.Price,
	)
	return scanProduct(row, "creating product `%s`", args.Name)
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row, "finding product with id %d", id)
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, convertErr(err, "getting products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, scanErr := scanProduct(rows, "scanning product")
		if scanErr != nil {
			return nil, scanErr
		}
		products = append(products, *p)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting products")
	}
	return products, nil
}

func (r *ProductRepository) Update(
	ctx context.Context,
	id int64,
	args repoargs.ProductUpdate,
) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, stock = $3, price = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, args.Name, args.Stock, args.Price,
	)
	return scanProduct(row, "updating product with id %d", id)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting product with id %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting product with id %d", id)
	}
	return nil
}

// DeductStock атомарно уменьшает остаток на quantity. Условие stock >= quantity
// не дает остатку уйти в минус при расхождении с предварительной проверкой.
func (r *ProductRepository) DeductStock(ctx context.Context, id int64, quantity int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products
		 SET stock = stock - $2, updated_at = now()
		 WHERE id = $1 AND stock >= $2`,
		id, quantity,
	)
	if err != nil {
		return convertErr(err, "deducting stock for product with id %d", id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func scanProduct(row pgx.Row, format string, args ...any) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Name, &p.Stock, &p.Price)
	if err != nil {
		return nil, convertErr(err, format, args...)
	}
	return &p, nil
}
