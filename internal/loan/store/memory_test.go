package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"protekt/internal/loan/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

type LoanStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestLoanStoreSuite(t *testing.T) {
	suite.Run(t, new(LoanStoreSuite))
}

func (s *LoanStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *LoanStoreSuite) TestFindActiveByMember() {
	s.store.Put(&models.Loan{ID: 30, MemberID: 7, Principal: decimal.NewFromInt(10), Status: "active"})
	s.store.Put(&models.Loan{ID: 10, MemberID: 7, Principal: decimal.NewFromInt(10), Status: models.StatusActive})
	s.store.Put(&models.Loan{ID: 20, MemberID: 7, Principal: decimal.NewFromInt(10), Status: "CLOSED"})
	s.store.Put(&models.Loan{ID: 40, MemberID: 8, Principal: decimal.NewFromInt(10), Status: models.StatusActive})

	loans, err := s.store.FindActiveByMember(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().Len(loans, 2)
	s.Equal(id.LoanID(10), loans[0].ID)
	s.Equal(id.LoanID(30), loans[1].ID)
}

func (s *LoanStoreSuite) TestFindByID() {
	s.Run("returns ErrNotFound for unknown loan", func() {
		_, err := s.store.FindByID(s.ctx, 99)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
