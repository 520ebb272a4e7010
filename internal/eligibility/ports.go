package eligibility

import (
	"context"

	customerModels "protekt/internal/customer/models"
	loanModels "protekt/internal/loan/models"
	memberModels "protekt/internal/member/models"
	id "protekt/pkg/domain"
)

// MemberLookup finds the CUSTOMER-type member matching phone or nrc, lowest
// id first. Either argument may be nil.
type MemberLookup interface {
	FirstCustomerByContact(ctx context.Context, phone, nrc *string) (*memberModels.Member, error)
}

type CustomerLookup interface {
	FindCustomerByMember(ctx context.Context, memberID id.MemberID) (*customerModels.Customer, error)
}

type LoanLookup interface {
	FindActiveByMember(ctx context.Context, memberID id.MemberID) ([]*loanModels.Loan, error)
}

type PolicyLookup interface {
	ExistsForAnyLoan(ctx context.Context, loanIDs []id.LoanID) (bool, error)
}
