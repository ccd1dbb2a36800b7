package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/patric-chuzhbe/libloans/internal/db/memorystorage"
	"github.com/patric-chuzhbe/libloans/internal/loan"
	"github.com/patric-chuzhbe/libloans/internal/mockstorage"
)

// Wednesday.
var issuedAt = time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return issuedAt
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("loan-%d", next)
	}
}

func newMemoryService(t *testing.T) (*Service, *memorystorage.MemoryStorage) {
	t.Helper()
	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db, WithClock(fixedClock), WithIDGenerator(sequentialIDs())), db
}

// utcMicrosStorage hands due dates back the way TIMESTAMPTZ does:
// in UTC with microsecond precision.
type utcMicrosStorage struct {
	*memorystorage.MemoryStorage
}

func (db *utcMicrosStorage) FindLoanByID(ctx context.Context, id string) (*loan.Loan, bool, error) {
	record, found, err := db.MemoryStorage.FindLoanByID(ctx, id)
	if err != nil || !found {
		return record, found, err
	}

	stored := *record
	stored.DueDate = stored.DueDate.UTC().Truncate(time.Microsecond)
	return &stored, true, nil
}

func TestIssueDueDates(t *testing.T) {
	type tTestCase struct {
		name     string
		userType loan.UserType
		want     time.Time
	}
	testCases := []tTestCase{
		{name: "affiliate", userType: loan.Affiliate, want: time.Date(2024, time.January, 17, 9, 0, 0, 0, time.UTC)},
		{name: "employee", userType: loan.Employee, want: time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)},
		{name: "guest", userType: loan.Guest, want: time.Date(2024, time.January, 12, 9, 0, 0, 0, time.UTC)},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc, db := newMemoryService(t)

			record, err := svc.Issue(context.Background(), loan.Request{
				ISBN:               "isbn",
				UserIdentification: "1032456",
				UserType:           testCase.userType,
			})
			require.NoError(t, err)

			assert.Equal(t, "loan-1", record.ID)
			assert.Equal(t, testCase.want, record.DueDate)
			assert.True(t, loan.IsBusinessDay(record.DueDate))

			stored, found, err := db.FindLoanByID(context.Background(), record.ID)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, record, stored)
		})
	}
}

func TestIssueSingleGuestLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("guest with a guest loan is refused whatever the requested type", func(t *testing.T) {
		svc, db := newMemoryService(t)

		_, err := svc.Issue(ctx, loan.Request{ISBN: "a", UserIdentification: "guest1", UserType: loan.Guest})
		require.NoError(t, err)

		for _, userType := range []loan.UserType{loan.Affiliate, loan.Employee, loan.Guest, 9} {
			_, err = svc.Issue(ctx, loan.Request{ISBN: "b", UserIdentification: "guest1", UserType: userType})
			assert.ErrorIs(t, err, ErrUserAlreadyHasLoan)
		}

		count, err := db.GetNumberOfLoans(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("non guest loans do not block", func(t *testing.T) {
		svc, db := newMemoryService(t)

		_, err := svc.Issue(ctx, loan.Request{ISBN: "a", UserIdentification: "emp1", UserType: loan.Employee})
		require.NoError(t, err)
		_, err = svc.Issue(ctx, loan.Request{ISBN: "b", UserIdentification: "emp1", UserType: loan.Employee})
		require.NoError(t, err)
		_, err = svc.Issue(ctx, loan.Request{ISBN: "c", UserIdentification: "emp1", UserType: loan.Guest})
		require.NoError(t, err)

		_, err = svc.Issue(ctx, loan.Request{ISBN: "d", UserIdentification: "emp1", UserType: loan.Affiliate})
		assert.ErrorIs(t, err, ErrUserAlreadyHasLoan)

		count, err := db.GetNumberOfLoans(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestIssueValidation(t *testing.T) {
	type tTestCase struct {
		name           string
		identification string
		userType       loan.UserType
		wantErr        error
	}
	testCases := []tTestCase{
		{name: "empty identification", identification: "", userType: loan.Guest, wantErr: loan.ErrInvalidIdentification},
		{name: "long identification", identification: strings.Repeat("1", 11), userType: loan.Affiliate, wantErr: loan.ErrInvalidIdentification},
		{name: "long identification wins over bad type", identification: strings.Repeat("1", 11), userType: 9, wantErr: loan.ErrInvalidIdentification},
		{name: "zero user type", identification: "123", userType: 0, wantErr: loan.ErrInvalidUserType},
		{name: "unknown user type", identification: "123", userType: 4, wantErr: loan.ErrInvalidUserType},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc, db := newMemoryService(t)

			record, err := svc.Issue(context.Background(), loan.Request{
				ISBN:               "isbn",
				UserIdentification: testCase.identification,
				UserType:           testCase.userType,
			})
			assert.Nil(t, record)
			assert.ErrorIs(t, err, testCase.wantErr)

			count, err := db.GetNumberOfLoans(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestIssueStoreFailures(t *testing.T) {
	storeErr := errors.New("connection reset")
	ctx := context.Background()
	request := loan.Request{ISBN: "isbn", UserIdentification: "123", UserType: loan.Affiliate}

	t.Run("begin transaction", func(t *testing.T) {
		db := &mockstorage.StorageMock{
			OnBeginTransaction: func() (*sql.Tx, error) { return nil, storeErr },
		}

		_, err := New(db).Issue(ctx, request)
		assert.ErrorIs(t, err, ErrStoreFailure)
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("existing loan check", func(t *testing.T) {
		db := &mockstorage.StorageMock{}
		db.On("FindLoanByIdentificationAndType", mock.Anything, "123", loan.Guest, mock.Anything).
			Return(nil, false, storeErr)

		_, err := New(db).Issue(ctx, request)
		assert.ErrorIs(t, err, ErrStoreFailure)
		db.AssertNotCalled(t, "InsertLoan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insert", func(t *testing.T) {
		db := &mockstorage.StorageMock{}
		db.On("FindLoanByIdentificationAndType", mock.Anything, "123", loan.Guest, mock.Anything).
			Return(nil, false, nil)
		db.On("InsertLoan", mock.Anything, mock.AnythingOfType("*loan.Loan"), mock.Anything).
			Return(storeErr)

		_, err := New(db, WithClock(fixedClock)).Issue(ctx, request)
		assert.ErrorIs(t, err, ErrStoreFailure)
		assert.Contains(t, err.Error(), "connection reset")
		db.AssertExpectations(t)
	})
}

func TestIssueAssignsUniqueIDs(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	svc := New(db)

	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		record, err := svc.Issue(context.Background(), loan.Request{
			ISBN:               "isbn",
			UserIdentification: fmt.Sprintf("u%d", i),
			UserType:           loan.Affiliate,
		})
		require.NoError(t, err)
		_, duplicate := seen[record.ID]
		require.False(t, duplicate, "id %s issued twice", record.ID)
		seen[record.ID] = struct{}{}
	}
}

func TestIssueConcurrently(t *testing.T) {
	svc, db := newMemoryService(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Issue(context.Background(), loan.Request{
				ISBN:               "isbn",
				UserIdentification: fmt.Sprintf("user%d", i),
				UserType:           loan.Guest,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := db.GetNumberOfLoans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), count)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the record unchanged", func(t *testing.T) {
		svc, _ := newMemoryService(t)

		issued, err := svc.Issue(ctx, loan.Request{ISBN: "978-84", UserIdentification: "1032456", UserType: loan.Employee})
		require.NoError(t, err)

		found, err := svc.Lookup(ctx, issued.ID)
		require.NoError(t, err)
		assert.Equal(t, issued.ID, found.ID)
		assert.Equal(t, "978-84", found.ISBN)
		assert.Equal(t, "1032456", found.UserIdentification)
		assert.Equal(t, loan.Employee, found.UserType)
		assert.Equal(t, issued.DueDate, found.DueDate)
	})

	t.Run("due date survives a lossy store", func(t *testing.T) {
		bogota, err := time.LoadLocation("America/Bogota")
		require.NoError(t, err)
		clock := func() time.Time {
			return time.Date(2026, time.October, 14, 14, 3, 11, 123456789, bogota)
		}

		db, err := memorystorage.New()
		require.NoError(t, err)
		svc := New(&utcMicrosStorage{MemoryStorage: db}, WithClock(clock), WithIDGenerator(sequentialIDs()))

		issued, err := svc.Issue(ctx, loan.Request{ISBN: "978-84", UserIdentification: "1032456", UserType: loan.Affiliate})
		require.NoError(t, err)
		assert.Equal(t, "2026-10-28T14:03:11-05:00", issued.DueDate.Format(time.RFC3339Nano))

		found, err := svc.Lookup(ctx, issued.ID)
		require.NoError(t, err)
		assert.Equal(t, issued.DueDate.Format(time.RFC3339Nano), found.DueDate.Format(time.RFC3339Nano))
		assert.True(t, issued.DueDate.Equal(found.DueDate))
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _ := newMemoryService(t)

		_, err := svc.Lookup(ctx, "missing")
		assert.ErrorIs(t, err, ErrLoanNotFound)
	})

	t.Run("invalid stored records", func(t *testing.T) {
		for _, record := range []*loan.Loan{
			{ID: "x", UserIdentification: "abc", UserType: 7},
			{ID: "x", UserIdentification: "", UserType: loan.Guest},
			{ID: "x", UserIdentification: "12345678901", UserType: loan.Guest},
		} {
			db := &mockstorage.StorageMock{}
			db.On("FindLoanByID", mock.Anything, "x").Return(record, true, nil)

			_, err := New(db).Lookup(ctx, "x")
			assert.ErrorIs(t, err, ErrInvalidRecord)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		db := &mockstorage.StorageMock{}
		db.On("FindLoanByID", mock.Anything, "x").Return(nil, false, errors.New("boom"))

		_, err := New(db).Lookup(ctx, "x")
		assert.ErrorIs(t, err, ErrStoreFailure)
	})
}

func TestStatsAndPing(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("GetNumberOfLoans", mock.Anything).Return(int64(5), nil).Once()
	db.On("GetNumberOfLoans", mock.Anything).Return(int64(0), errors.New("boom")).Once()
	db.On("Ping", mock.Anything).Return(nil)

	svc := New(db)

	count, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	_, err = svc.Stats(context.Background())
	assert.ErrorIs(t, err, ErrStoreFailure)

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	db, err := memorystorage.New()
	require.NoError(t, err)
	svc := New(db, WithClock(fixedClock), WithIDGenerator(sequentialIDs()), WithTracerProvider(provider))

	_, err = svc.Issue(context.Background(), loan.Request{ISBN: "i", UserIdentification: "abc", UserType: loan.Guest})
	require.NoError(t, err)
	_, err = svc.Lookup(context.Background(), "missing")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Service.Issue", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, "Service.Lookup", spans[1].Name())
	assert.Len(t, spans[1].Events(), 1, "the lookup error should be recorded")
}
