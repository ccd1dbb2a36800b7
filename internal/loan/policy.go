package loan

import "sort"

// Policy is the loan policy of a single user type.
type Policy struct {
	// BusinessDayOffset is how many business days after issuance the loan is due.
	BusinessDayOffset int

	// MaxActiveLoans limits the loans a user of this type may hold. Zero means unbounded.
	MaxActiveLoans int
}

var policies = map[UserType]Policy{
	Affiliate: {BusinessDayOffset: 10},
	Employee:  {BusinessDayOffset: 8},
	Guest:     {BusinessDayOffset: 7, MaxActiveLoans: 1},
}

// ResolvePolicy returns the policy of the given user type,
// or ErrInvalidUserType when the code is unknown.
func ResolvePolicy(userType UserType) (Policy, error) {
	policy, ok := policies[userType]
	if !ok {
		return Policy{}, ErrInvalidUserType
	}

	return policy, nil
}

// SingleLoanUserTypes lists the user types whose holders may not hold more than one loan,
// in ascending code order.
func SingleLoanUserTypes() []UserType {
	var result []UserType
	for userType, policy := range policies {
		if policy.MaxActiveLoans == 1 {
			result = append(result, userType)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	return result
}
