package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

// TxObserver receives the duration of each committed or rolled back transaction.
type TxObserver func(operation string, duration time.Duration)

// UnitOfWork runs one logical workflow operation inside a single transaction.
type UnitOfWork struct {
	db       *sqlx.DB
	observer TxObserver
}

// NewUnitOfWork constructs a unit of work bound to the database.
func NewUnitOfWork(db *sqlx.DB, observer TxObserver) *UnitOfWork {
	return &UnitOfWork{db: db, observer: observer}
}

// Stores returns stores bound to the connection pool, outside any transaction.
func (u *UnitOfWork) Stores() Stores {
	return NewStores(u.db)
}

// NewStores binds every store to the given connection or transaction.
func NewStores(db sqlx.ExtContext) Stores {
	return Stores{
		Applications: NewApplicationRepository(db),
		Documents:    NewDocumentRepository(db),
		Timeline:     NewTimelineRepository(db),
		Assignments:  NewAssignmentRepository(db),
		Evaluations:  NewEvaluationRepository(db),
		History:      NewStatusHistoryRepository(db),
		Users:        NewUserRepository(db),
	}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(s Stores) error) (err error) {
	start := time.Now()
	defer func() {
		if u.observer != nil {
			u.observer("workflow_tx", time.Since(start))
		}
	}()

	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin workflow transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(NewStores(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit workflow transaction: %w", err)
	}
	return nil
}

// WithinApplicationTx locks the application row before running fn.
// A missing application surfaces as sql.ErrNoRows.
func (u *UnitOfWork) WithinApplicationTx(ctx context.Context, applicationID string, fn func(s Stores, app *models.Application) error) error {
	return u.WithinTx(ctx, func(s Stores) error {
		app, err := s.Applications.GetForUpdate(ctx, applicationID)
		if err != nil {
			if err == sql.ErrNoRows {
				return err
			}
			return fmt.Errorf("lock application: %w", err)
		}
		return fn(s, app)
	})
}
