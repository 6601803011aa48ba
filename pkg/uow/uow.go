// Package uow реализует паттерн Unit of Work поверх pgxpool: именованные фабрики
// репозиториев и выполнение произвольной функции внутри одной транзакции.
package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepositoryName string
type Repository any

// RepositoryFactory создает репозиторий поверх соединения или транзакции.
type RepositoryFactory func(DBTX) Repository

type UnitOfWork struct {
	pool      *pgxpool.Pool
	factories map[RepositoryName]RepositoryFactory
}

// New создает UnitOfWork с фиксированным набором фабрик репозиториев.
// Набор задается один раз при конструировании и далее не меняется.
func New(pool *pgxpool.Pool, factories map[RepositoryName]RepositoryFactory) *UnitOfWork {
	fs := make(map[RepositoryName]RepositoryFactory, len(factories))
	for name, factory := range factories {
		fs[name] = factory
	}
	return &UnitOfWork{pool: pool, factories: fs}
}

// Get возвращает репозиторий, работающий вне транзакции (поверх пула),
// или ошибку ErrRepositoryNotRegistered.
func (u *UnitOfWork) Get(name RepositoryName) (Repository, error) {
	factory, ok := u.factories[name]
	if !ok {
		return nil, ErrRepositoryNotRegistered
	}
	return factory(u.pool), nil
}

// Do выполняет fn внутри транзакции. Коммит происходит только если fn вернула nil,
// на любом другом пути выполняется откат.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx TX) error) (err error) {
	tx, txErr := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if txErr != nil {
		return txErr //nolint:wrapcheck
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			err = errors.Join(err, rollbackErr)
		}
	}()

	if fnErr := fn(ctx, &txScope{tx: tx, factories: u.factories}); fnErr != nil {
		return fnErr
	}
	err = tx.Commit(ctx)
	return
}

// txScope отдает репозитории, привязанные к открытой транзакции.
type txScope struct {
	tx        pgx.Tx
	factories map[RepositoryName]RepositoryFactory
}

func (s *txScope) Get(name RepositoryName) (Repository, error) {
	factory, ok := s.factories[name]
	if !ok {
		return nil, ErrRepositoryNotRegistered
	}
	return factory(s.tx), nil
}

// As возвращает репозиторий с именем name, приведенный к типу T. Возвращает
// ErrRepositoryNotRegistered либо ErrInvalidRepositoryType.
func As[T any](src Getter, name RepositoryName) (T, error) {
	var res T
	repo, err := src.Get(name)
	if err != nil {
		return res, err //nolint:wrapcheck
	}
	r, ok := repo.(T)
	if !ok {
		return res, ErrInvalidRepositoryType
	}
	return r, nil
}
