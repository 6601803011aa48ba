package pgrepo

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/fsdevblog/groph-market/internal/domain"
)

func TestConvertErr(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "no rows",
			err:     pgx.ErrNoRows,
			wantErr: domain.ErrRecordNotFound,
		},
		{
			name:    "unique violation",
			err:     &pgconn.PgError{Code: uniqueViolationCode, Message: "duplicate key value"},
			wantErr: domain.ErrDuplicateKey,
		},
		{
			name:    "check violation",
			err:     &pgconn.PgError{Code: checkViolationCode, Message: "violates check constraint"},
			wantErr: domain.ErrConstraintViolation,
		},
		{
			name:    "unclassified pg error",
			err:     &pgconn.PgError{Code: "42601", Message: "syntax error"},
			wantErr: domain.ErrUnknown,
		},
		{
			name:    "plain error",
			err:     errors.New("connection reset"),
			wantErr: domain.ErrUnknown,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := convertErr(c.err, "customer")

			assert.ErrorIs(t, got, c.wantErr)
		})
	}
}

func TestConvertErrNil(t *testing.T) {
	assert.NoError(t, convertErr(nil, "customer"))
}
