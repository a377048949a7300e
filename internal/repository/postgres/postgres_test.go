package postgres

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiprent-backend/internal/repository"
)

func TestStoreExecTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits when fn succeeds", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rental_orders SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.ExecTx(ctx, func(tx repository.Store) error {
			return tx.Orders().UpdateStatus(ctx, 7, 42, "ordered")
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back when fn fails", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("check failed")
		err := store.ExecTx(ctx, func(tx repository.Store) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin failure is reported", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		err := store.ExecTx(ctx, func(tx repository.Store) error { return nil })
		assert.ErrorContains(t, err, "begin tx")
	})
}
