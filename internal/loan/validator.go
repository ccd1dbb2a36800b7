package loan

import (
	"fmt"

	validator "github.com/go-playground/validator/v10"
)

var validate = validator.New()

var (
	identificationRule = fmt.Sprintf("required,max=%d", MaxIdentificationLength)
	userTypeRule       = fmt.Sprintf("oneof=%d %d %d", Affiliate, Employee, Guest)
)

// ValidateIdentification checks that identification is present and at most
// MaxIdentificationLength characters long.
func ValidateIdentification(identification string) error {
	if err := validate.Var(identification, identificationRule); err != nil {
		return ErrInvalidIdentification
	}

	return nil
}

// ValidateUserType checks that userType is one of the known codes.
func ValidateUserType(userType UserType) error {
	if err := validate.Var(int(userType), userTypeRule); err != nil {
		return ErrInvalidUserType
	}

	return nil
}

// ValidateRecord re-checks a stored loan. The user type is checked first.
func ValidateRecord(record *Loan) error {
	if err := ValidateUserType(record.UserType); err != nil {
		return err
	}

	return ValidateIdentification(record.UserIdentification)
}
