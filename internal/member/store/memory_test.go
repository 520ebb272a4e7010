package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"protekt/internal/member/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

type MemberStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestMemberStoreSuite(t *testing.T) {
	suite.Run(t, new(MemberStoreSuite))
}

func (s *MemberStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.store.Put(&models.Member{ID: 5, Type: models.TypeCustomer, Mobile: "0977000001", IDNumber: "111111/11/1"})
	s.store.Put(&models.Member{ID: 3, Type: models.TypeCustomer, Mobile: "0977000002", IDNumber: "222222/22/2"})
	s.store.Put(&models.Member{ID: 1, Type: models.TypeStaff, Mobile: "0977000001", IDNumber: "999999/99/9"})
}

func strPtr(s string) *string { return &s }

func (s *MemberStoreSuite) TestFirstCustomerByContact() {
	s.Run("matches phone only among customers", func() {
		m, err := s.store.FirstCustomerByContact(s.ctx, strPtr("0977000001"), nil)
		s.Require().NoError(err)
		s.Equal(id.MemberID(5), m.ID)
	})

	s.Run("either value may match and lowest id wins", func() {
		m, err := s.store.FirstCustomerByContact(s.ctx, strPtr("0977000001"), strPtr("222222/22/2"))
		s.Require().NoError(err)
		s.Equal(id.MemberID(3), m.ID)
	})

	s.Run("no match returns ErrNotFound", func() {
		_, err := s.store.FirstCustomerByContact(s.ctx, strPtr("0000"), nil)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("absent values never match", func() {
		_, err := s.store.FirstCustomerByContact(s.ctx, nil, nil)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
