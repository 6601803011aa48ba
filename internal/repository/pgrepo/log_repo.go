package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const logColumns = `id, created_at, customer_id, order_id, log_type, details`

type LogRepository struct {
	db uow.DBTX
}

func NewLogRepository(db uow.DBTX) *LogRepository {
	return &LogRepository{db: db}
}

// Create добавляет запись аудита. Таблица append-only: update и delete по ней
// в репозитории отсутствуют намеренно.
func (r *LogRepository) Create(ctx context.Context, args repoargs.LogCreate) (*domain.Log, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO logs (customer_id, order_id, log_type, details)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+logColumns,
		args.CustomerID, args.OrderID, string(args.LogType), args.Details,
	)
	return scanLog(row, "creating log for customer %d", args.CustomerID)
}

func (r *LogRepository) GetByCustomerID(ctx context.Context, customerID int64, limit uint) ([]domain.Log, error) {
	return r.queryLogs(ctx,
		`SELECT `+logColumns+` FROM logs
		 WHERE customer_id = $1 ORDER BY id DESC LIMIT $2`, customerID, int64(limit))
}

func (r *LogRepository) GetAll(ctx context.Context, limit uint) ([]domain.Log, error) {
	return r.queryLogs(ctx,
		`SELECT `+logColumns+` FROM logs ORDER BY id DESC LIMIT $1`, int64(limit))
}

func (r *LogRepository) queryLogs(ctx context.Context, sql string, args ...any) ([]domain.Log, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, convertErr(err, "getting logs")
	}
	defer rows.Close()

	var logs []domain.Log
	for rows.Next() {
		l, scanErr := scanLog(rows, "scanning log")
		if scanErr != nil {
			return nil, scanErr
		}
		logs = append(logs, *l)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting logs")
	}
	return logs, nil
}

func scanLog(row pgx.Row, format string, args ...any) (*domain.Log, error) {
	var l domain.Log
	var logType string
	err := row.Scan(&l.ID, &l.CreatedAt, &l.CustomerID, &l.OrderID, &logType, &l.Details)
	if err != nil {
		return nil, convertErr(err, format, args...)
	}
	l.LogType = domain.LogType(logType)
	return &l, nil
}
