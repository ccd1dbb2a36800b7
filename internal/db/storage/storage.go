// Package storage describes the loan store contract shared by the
// PostgreSQL, JSON-file and in-memory implementations.
package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/patric-chuzhbe/libloans/internal/loan"
)

// ErrLoanAlreadyExists is returned by InsertLoan when a loan with the same id is already stored.
var ErrLoanAlreadyExists = errors.New("loan with this id already exists")

// Storage is implemented by every loan store.
//
// Finders return found == false together with a nil error when nothing matches.
// Transactions may be nil for stores without transactional support.
type Storage interface {
	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error

	// LockIdentification serialises issuance for one user identification
	// until the transaction ends. Stores without transactions may ignore it.
	LockIdentification(
		ctx context.Context,
		identification string,
		transaction *sql.Tx,
	) error

	FindLoanByIdentificationAndType(
		ctx context.Context,
		identification string,
		userType loan.UserType,
		transaction *sql.Tx,
	) (*loan.Loan, bool, error)

	FindLoanByID(ctx context.Context, id string) (*loan.Loan, bool, error)

	InsertLoan(
		ctx context.Context,
		record *loan.Loan,
		transaction *sql.Tx,
	) error

	GetNumberOfLoans(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
