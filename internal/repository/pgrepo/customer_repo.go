package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const customerColumns = `id, created_at, updated_at, name, tier, budget, total_spent`

type CustomerRepository struct {
	db uow.DBTX
}

func NewCustomerRepository(db uow.DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(
	ctx context.Context,
	args repoargs.CustomerCreate,
) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO customers (name, tier, budget, total_spent)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+customerColumns,
		args.Name, string(args.Tier), args.Budget, args.TotalSpent,
	)
	return scanCustomer(row, "creating customer `%s`", args.Name)
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row, "finding customer with id %d", id)
}

func (r *CustomerRepository) FindByName(ctx context.Context, name string) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE name = $1`, name)
	return scanCustomer(row, "finding customer with name `%s`", name)
}

func (r *CustomerRepository) GetAll(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, convertErr(err, "getting customers")
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, scanErr := scanCustomer(rows, "scanning customer")
		if scanErr != nil {
			return nil, scanErr
		}
		customers = append(customers, *c)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting customers")
	}
	return customers, nil
}

func (r *CustomerRepository) Update(
	ctx context.Context,
	id int64,
	args repoargs.CustomerUpdate,
) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE customers
		 SET name = $2, tier = $3, budget = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+customerColumns,
		id, args.Name, string(args.Tier), args.Budget,
	)
	return scanCustomer(row, "updating customer with id %d", id)
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting customer with id %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting customer with id %d", id)
	}
	return nil
}

// ApplyCharge атомарно списывает amount с бюджета и прибавляет его к total_spent.
// Условие budget >= amount в запросе страхует от ухода бюджета в минус, даже если
// предварительная проверка была сделана по устаревшим данным.
func (r *CustomerRepository) ApplyCharge(ctx context.Context, id int64, amount decimal.Decimal) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customers
		 SET budget = budget - $2, total_spent = total_spent + $2, updated_at = now()
		 WHERE id = $1 AND budget >= $2`,
		id, amount,
	)
	if err != nil {
		return convertErr(err, "charging customer with id %d", id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientBudget
	}
	return nil
}

func scanCustomer(row pgx.Row, format string, args ...any) (*domain.Customer, error) {
	var c domain.Customer
	var tier string
	err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Name, &tier, &c.Budget, &c.TotalSpent)
	if err != nil {
		return nil, convertErr(err, format, args...)
	}
	c.Tier = domain.CustomerTier(tier)
	return &c, nil
}
