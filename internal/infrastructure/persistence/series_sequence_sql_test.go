package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockSeriesRepository creates a GormSeriesRepository with a mocked SQL connection
func newMockSeriesRepository(t *testing.T) (*GormSeriesRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSeriesRepository(gormDB), mock, mockDB
}

func TestGormSeriesRepository_UpdateSequence_ConditionalWrite(t *testing.T) {
	t.Run("advances counter when stored value matches", func(t *testing.T) {
		repo, mock, mockDB := newMockSeriesRepository(t)
		defer mockDB.Close()

		seriesID := uuid.New()
		mock.ExpectExec(`UPDATE "series_sequences" SET`).
			WithArgs(int64(6), sqlmock.AnyArg(), seriesID, "INVOICE", int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateSequence(context.Background(), seriesID, billing.DocumentTypeInvoice, 5, 6)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when stored value changed underneath", func(t *testing.T) {
		repo, mock, mockDB := newMockSeriesRepository(t)
		defer mockDB.Close()

		seriesID := uuid.New()
		mock.ExpectExec(`UPDATE "series_sequences" SET`).
			WithArgs(int64(6), sqlmock.AnyArg(), seriesID, "INVOICE", int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateSequence(context.Background(), seriesID, billing.DocumentTypeInvoice, 5, 6)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first allocation inserts with conflict protection", func(t *testing.T) {
		repo, mock, mockDB := newMockSeriesRepository(t)
		defer mockDB.Close()

		seriesID := uuid.New()
		mock.ExpectExec(`INSERT INTO "series_sequences"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateSequence(context.Background(), seriesID, billing.DocumentTypeInvoice, 0, 1)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first allocation lost race surfaces as conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockSeriesRepository(t)
		defer mockDB.Close()

		seriesID := uuid.New()
		mock.ExpectExec(`INSERT INTO "series_sequences"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateSequence(context.Background(), seriesID, billing.DocumentTypeInvoice, 0, 1)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
