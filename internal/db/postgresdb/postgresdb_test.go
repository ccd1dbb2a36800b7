package postgresdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/libloans/internal/db/storage"
	"github.com/patric-chuzhbe/libloans/internal/loan"
	"github.com/patric-chuzhbe/libloans/internal/service"
)

const migrationsDir = `../../../cmd/libloans/migrations`

func TestBuildQueries(t *testing.T) {
	query, args, err := buildFindByIdentificationAndTypeQuery("12345", loan.Guest)
	require.NoError(t, err)
	assert.Contains(t, query, `FROM "loans"`)
	assert.Contains(t, query, `"user_identification" = $1`)
	assert.Contains(t, query, `"user_type" = $2`)
	assert.Contains(t, query, `ORDER BY "created_at" ASC`)
	require.Len(t, args, 3)
	assert.Equal(t, "12345", args[0])

	query, args, err = buildFindByIDQuery("some-id")
	require.NoError(t, err)
	assert.Contains(t, query, `"id" = $1`)
	assert.Equal(t, []interface{}{"some-id"}, args)

	dueDate := time.Date(2024, time.January, 12, 10, 0, 0, 0, time.UTC)
	query, args, err = buildInsertQuery(&loan.Loan{
		ID:                 "some-id",
		ISBN:               "978-3",
		UserIdentification: "12345",
		UserType:           loan.Affiliate,
		DueDate:            dueDate,
	})
	require.NoError(t, err)
	assert.Contains(t, query, `INSERT INTO "loans"`)
	assert.Len(t, args, 5)
	assert.Contains(t, args, "some-id")
	assert.Contains(t, args, dueDate)

	query, args, err = buildLockQuery("12345")
	require.NoError(t, err)
	assert.Contains(t, query, `pg_advisory_xact_lock(hashtext($1))`)
	assert.Equal(t, []interface{}{"12345"}, args)
}

func newTestDB(t *testing.T) *PostgresDB {
	t.Helper()
	databaseDSN := os.Getenv("LIBLOANS_TEST_DATABASE_DSN")
	if databaseDSN == "" {
		t.Skip("LIBLOANS_TEST_DATABASE_DSN is not set")
	}

	db, err := New(context.Background(), databaseDSN, 5*time.Second, migrationsDir, WithDBPreReset(true))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

func TestPostgresDB(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	record := &loan.Loan{
		ID:                 "a7c2b2a4-0b4f-4bd5-9a57-6d1a4c0c4f6e",
		ISBN:               "d5f1f7d2-49a5-4c1e-8d3c-3b3a37b1d6c1",
		UserIdentification: "1032456",
		UserType:           loan.Guest,
		DueDate:            time.Date(2024, time.January, 12, 10, 0, 0, 0, time.UTC),
	}

	tx, err := db.BeginTransaction()
	require.NoError(t, err)
	require.NoError(t, db.LockIdentification(ctx, record.UserIdentification, tx))
	_, found, err := db.FindLoanByIdentificationAndType(ctx, record.UserIdentification, loan.Guest, tx)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, db.InsertLoan(ctx, record, tx))
	require.NoError(t, db.CommitTransaction(tx))
	require.NoError(t, db.RollbackTransaction(tx))

	stored, found, err := db.FindLoanByID(ctx, record.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, record.ISBN, stored.ISBN)
	assert.Equal(t, record.UserIdentification, stored.UserIdentification)
	assert.Equal(t, record.UserType, stored.UserType)
	assert.True(t, record.DueDate.Equal(stored.DueDate))

	byType, found, err := db.FindLoanByIdentificationAndType(ctx, record.UserIdentification, loan.Guest, nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, record.ID, byType.ID)

	_, found, err = db.FindLoanByIdentificationAndType(ctx, record.UserIdentification, loan.Employee, nil)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = db.FindLoanByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, db.InsertLoan(ctx, record, nil), storage.ErrLoanAlreadyExists)

	count, err := db.GetNumberOfLoans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostgresDBDueDateRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	svc := service.New(db, service.WithClock(func() time.Time {
		return time.Date(2026, time.October, 14, 14, 3, 11, 123456789, bogota)
	}))

	issued, err := svc.Issue(ctx, loan.Request{ISBN: "978-84", UserIdentification: "1032456", UserType: loan.Affiliate})
	require.NoError(t, err)

	found, err := svc.Lookup(ctx, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-28T14:03:11-05:00", found.DueDate.Format(time.RFC3339Nano))
	assert.Equal(t, issued.DueDate.Format(time.RFC3339Nano), found.DueDate.Format(time.RFC3339Nano))
}
