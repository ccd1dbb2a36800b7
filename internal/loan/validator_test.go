package loan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestValidateIdentification(t *testing.T) {
	testCases := []struct {
		name           string
		identification string
		wantErr        error
	}{
		{name: "one character", identification: "1", wantErr: nil},
		{name: "ten characters", identification: "1234567890", wantErr: nil},
		{name: "ten multibyte characters", identification: "ññññññññññ", wantErr: nil},
		{name: "empty", identification: "", wantErr: ErrInvalidIdentification},
		{name: "eleven characters", identification: "12345678901", wantErr: ErrInvalidIdentification},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := ValidateIdentification(testCase.identification)
			if testCase.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestValidateUserType(t *testing.T) {
	for _, userType := range []UserType{Affiliate, Employee, Guest} {
		assert.NoError(t, ValidateUserType(userType))
	}

	for _, userType := range []UserType{-1, 0, 4, 100} {
		assert.ErrorIs(t, ValidateUserType(userType), ErrInvalidUserType)
	}
}

func TestValidateRecord(t *testing.T) {
	valid := &Loan{ID: "id", ISBN: "isbn", UserIdentification: "abc", UserType: Guest}
	require.NoError(t, ValidateRecord(valid))

	assert.ErrorIs(
		t,
		ValidateRecord(&Loan{UserIdentification: "abc", UserType: 9}),
		ErrInvalidUserType,
	)
	assert.ErrorIs(
		t,
		ValidateRecord(&Loan{UserIdentification: strings.Repeat("x", 11), UserType: Employee}),
		ErrInvalidIdentification,
	)
}

func TestValidationProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		identification := rapid.StringN(MaxIdentificationLength+1, 40, -1).Draw(t, "identification")
		if err := ValidateIdentification(identification); err == nil {
			t.Fatalf("identification %q of %d characters was accepted", identification, len([]rune(identification)))
		}

		code := rapid.IntRange(-1000, 1000).Filter(func(v int) bool { return v < 1 || v > 3 }).Draw(t, "code")
		if err := ValidateUserType(UserType(code)); err == nil {
			t.Fatalf("user type %d was accepted", code)
		}
	})
}
