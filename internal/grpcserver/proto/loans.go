package proto

type IssueLoanRequest struct {
	Isbn               string `json:"isbn"`
	UserIdentification string `json:"user_identification"`
	UserType           int32  `json:"user_type"`
}

func (x *IssueLoanRequest) GetIsbn() string {
	if x != nil {
		return x.Isbn
	}
	return ""
}

func (x *IssueLoanRequest) GetUserIdentification() string {
	if x != nil {
		return x.UserIdentification
	}
	return ""
}

func (x *IssueLoanRequest) GetUserType() int32 {
	if x != nil {
		return x.UserType
	}
	return 0
}

// IssueLoanResponse carries either a new loan or, with AlreadyHasLoan set,
// the message explaining why none was issued.
type IssueLoanResponse struct {
	Id             string `json:"id,omitempty"`
	DueDate        string `json:"due_date,omitempty"`
	AlreadyHasLoan bool   `json:"already_has_loan"`
	Message        string `json:"message,omitempty"`
}

type GetLoanRequest struct {
	Id string `json:"id"`
}

func (x *GetLoanRequest) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

type GetLoanResponse struct {
	Id                 string `json:"id"`
	Isbn               string `json:"isbn"`
	UserIdentification string `json:"user_identification"`
	UserType           int32  `json:"user_type"`
	DueDate            string `json:"due_date"`
}

type PingRequest struct{}

type PingResponse struct{}
