package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"equiprent-backend/internal/repository"
)

// DBTX is the slice of database/sql shared by *sql.DB and *sql.Tx, so every
// repository works both standalone and inside ExecTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db        *sql.DB
	orders    repository.OrderRepository
	lineItems repository.LineItemRepository
	equipment repository.EquipmentRepository
	holds     repository.HoldRepository
	settings  repository.SettingsRepository
	charges   repository.ChargeRepository
}

func NewStore(db *sql.DB) *Store {
	s := &Store{db: db}
	s.bind(db)
	return s
}

func (s *Store) bind(dbtx DBTX) {
	s.orders = NewOrderRepository(dbtx)
	s.lineItems = NewLineItemRepository(dbtx)
	s.equipment = NewEquipmentRepository(dbtx)
	s.holds = NewHoldRepository(dbtx)
	s.settings = NewSettingsRepository(dbtx)
	s.charges = NewChargeRepository(dbtx)
}

func (s *Store) Orders() repository.OrderRepository        { return s.orders }
func (s *Store) LineItems() repository.LineItemRepository  { return s.lineItems }
func (s *Store) Equipment() repository.EquipmentRepository { return s.equipment }
func (s *Store) Holds() repository.HoldRepository          { return s.holds }
func (s *Store) Settings() repository.SettingsRepository   { return s.settings }
func (s *Store) Charges() repository.ChargeRepository      { return s.charges }

// ExecTx runs fn against a Store bound to one transaction. Conflict checks
// and the writes that depend on them must share a transaction so two
// concurrent requests cannot both pass the check for the same equipment and
// window; row locks via GetForUpdate serialize them.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txStore := &Store{db: s.db}
	txStore.bind(tx)

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
