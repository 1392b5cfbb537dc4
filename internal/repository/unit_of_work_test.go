package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aicte-approval-api/internal/models"
)

func TestUnitOfWorkCommitsOnSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	var observed string
	uow := NewUnitOfWork(db, func(op string, _ time.Duration) { observed = op })

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(applicationRowColumns).
			AddRow("app-1", "AICTE/2026/000001", "eoa", "draft", "inst-1", nil, nil, nil, "user-1", 1, now, now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO application_status_history")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := uow.WithinApplicationTx(context.Background(), "app-1", func(s Stores, app *models.Application) error {
		assert.Equal(t, models.StatusDraft, app.Status)
		return s.History.Create(context.Background(), &models.StatusChange{ApplicationID: app.ID})
	})
	require.NoError(t, err)
	assert.Equal(t, "workflow_tx", observed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	uow := NewUnitOfWork(db, nil)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := uow.WithinTx(context.Background(), func(Stores) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkMissingApplication(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	uow := NewUnitOfWork(db, nil)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	called := false
	err := uow.WithinApplicationTx(context.Background(), "ghost", func(Stores, *models.Application) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}
