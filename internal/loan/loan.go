// Package loan holds the loan issuance rules: the per-user-type policy table,
// the business-day due date calculation and the structural validation of
// loan requests and stored loan records.
//
// Everything in this package is deterministic. The current instant and the
// loan id always come from the caller.
package loan

import (
	"errors"
	"time"
)

// UserType is the borrower category code. It selects the loan policy.
type UserType int

const (
	// Affiliate is a library affiliate.
	Affiliate UserType = 1

	// Employee is a library employee.
	Employee UserType = 2

	// Guest is a guest user. Guests may hold a single loan at a time.
	Guest UserType = 3
)

// MaxIdentificationLength is the maximum number of characters in a user identification.
const MaxIdentificationLength = 10

var (
	// ErrInvalidIdentification is returned when the user identification is empty
	// or longer than MaxIdentificationLength characters.
	ErrInvalidIdentification = errors.New("invalid user identification")

	// ErrInvalidUserType is returned for user type codes outside of {1, 2, 3}.
	ErrInvalidUserType = errors.New("invalid user type")
)

// Loan is the unit of record. ID is assigned once at creation and never changes.
type Loan struct {
	ID                 string    `json:"id" db:"id"`
	ISBN               string    `json:"isbn" db:"isbn"`
	UserIdentification string    `json:"userIdentification" db:"user_identification"`
	UserType           UserType  `json:"userType" db:"user_type"`
	DueDate            time.Time `json:"dueDate" db:"due_date"`
}

// Request is a loan issuance request as received from a transport.
type Request struct {
	ISBN               string
	UserIdentification string
	UserType           UserType
}
