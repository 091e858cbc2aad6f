package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asAppError(t *testing.T, err error) *AppError {
	t.Helper()
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	return appErr
}

func TestMapDBError_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBError_ContextErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrCodeTimeout, asAppError(t, MapDBError(context.DeadlineExceeded)).Code)
	assert.Equal(t, ErrCodeCanceled, asAppError(t, MapDBError(context.Canceled)).Code)
}

func TestMapDBError_NoRows(t *testing.T) {
	t.Parallel()

	appErr := asAppError(t, MapDBError(pgx.ErrNoRows))
	assert.Equal(t, ErrCodeNotFound, appErr.Code)
}

func TestMapDBError_PassesThroughAppError(t *testing.T) {
	t.Parallel()

	orig := Duplicate("code", "Broker code already exists.")
	assert.Same(t, orig, asAppError(t, MapDBError(orig)))
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name: "field from detail",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: "Key (name)=(Acme Shipping) already exists.",
			},
			wantField: "name",
		},
		{
			name: "field from column metadata",
			pgErr: &pgconn.PgError{
				Code:       pgerrcode.UniqueViolation,
				ColumnName: "code",
			},
			wantField: "code",
		},
		{
			name: "field from constraint name",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "brokers_code_key",
			},
			wantField: "code",
		},
		{
			name: "case-insensitive expression index",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: "Key (lower(name::text))=(acme shipping) already exists.",
			},
			wantField: "name",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			appErr := asAppError(t, MapDBError(tc.pgErr))
			assert.Equal(t, ErrCodeDuplicate, appErr.Code)
			assert.Equal(t, tc.wantField, appErr.Field)
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	t.Parallel()

	t.Run("blocked parent delete", func(t *testing.T) {
		t.Parallel()
		pgErr := &pgconn.PgError{
			Code:   pgerrcode.ForeignKeyViolation,
			Detail: `Key (id)=(cp-1) is still referenced from table "trades".`,
		}
		appErr := asAppError(t, MapDBError(pgErr))
		assert.Equal(t, ErrCodeReferenced, appErr.Code)
		assert.Contains(t, appErr.Message, "trades")
	})

	t.Run("dangling child reference", func(t *testing.T) {
		t.Parallel()
		pgErr := &pgconn.PgError{
			Code:   pgerrcode.ForeignKeyViolation,
			Detail: `Key (counterparty_id)=(missing) is not present in table "counterparties".`,
		}
		appErr := asAppError(t, MapDBError(pgErr))
		assert.Equal(t, ErrCodeValidation, appErr.Code)
		assert.Contains(t, appErr.Message, "counterparty")
	})
}

func TestMapDBError_ConstraintViolations(t *testing.T) {
	t.Parallel()

	notNull := &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "name"}
	appErr := asAppError(t, MapDBError(notNull))
	assert.Equal(t, ErrCodeValidation, appErr.Code)
	assert.Equal(t, "name", appErr.Field)

	check := &pgconn.PgError{Code: pgerrcode.CheckViolation}
	assert.Equal(t, ErrCodeValidation, asAppError(t, MapDBError(check)).Code)
}

func TestMapDBError_UnknownErrors(t *testing.T) {
	t.Parallel()

	appErr := asAppError(t, MapDBError(errors.New("connection refused")))
	assert.Equal(t, ErrCodeStorage, appErr.Code)
	assert.NotContains(t, appErr.Message, "connection refused")

	pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure, Message: "could not serialize"}
	appErr = asAppError(t, MapDBError(pgErr))
	assert.Equal(t, ErrCodeStorage, appErr.Code)
	assert.NotContains(t, appErr.Message, "serialize")
}
