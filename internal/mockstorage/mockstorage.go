// Package mockstorage provides a testify-based mock implementation
// of the loan store used by the service, router and gRPC tests.
package mockstorage

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/libloans/internal/loan"
)

// StorageMock is a testify mock of storage.Storage.
//
// Transaction and locking calls succeed unless OnBeginTransaction is set,
// so tests only need to set expectations for the finders and InsertLoan.
type StorageMock struct {
	mock.Mock

	// OnBeginTransaction, when set, replaces the default nil transaction.
	OnBeginTransaction func() (*sql.Tx, error)
}

// BeginTransaction returns a nil transaction unless OnBeginTransaction is set.
func (m *StorageMock) BeginTransaction() (*sql.Tx, error) {
	if m.OnBeginTransaction != nil {
		return m.OnBeginTransaction()
	}
	return nil, nil
}

func (m *StorageMock) CommitTransaction(tx *sql.Tx) error {
	return nil
}

func (m *StorageMock) RollbackTransaction(tx *sql.Tx) error {
	return nil
}

func (m *StorageMock) LockIdentification(ctx context.Context, identification string, tx *sql.Tx) error {
	return nil
}

// FindLoanByIdentificationAndType mocks the single-loan check query.
func (m *StorageMock) FindLoanByIdentificationAndType(
	ctx context.Context,
	identification string,
	userType loan.UserType,
	tx *sql.Tx,
) (*loan.Loan, bool, error) {
	args := m.Called(ctx, identification, userType, tx)
	record, _ := args.Get(0).(*loan.Loan)
	return record, args.Bool(1), args.Error(2)
}

// FindLoanByID mocks the lookup by id.
func (m *StorageMock) FindLoanByID(ctx context.Context, id string) (*loan.Loan, bool, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*loan.Loan)
	return record, args.Bool(1), args.Error(2)
}

// InsertLoan mocks persisting a new loan.
func (m *StorageMock) InsertLoan(ctx context.Context, record *loan.Loan, tx *sql.Tx) error {
	args := m.Called(ctx, record, tx)
	return args.Error(0)
}

func (m *StorageMock) GetNumberOfLoans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *StorageMock) Close() error {
	return nil
}
