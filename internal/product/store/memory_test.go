package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"protekt/internal/premium"
	"protekt/internal/product/models"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
)

type ProductStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestProductStoreSuite(t *testing.T) {
	suite.Run(t, new(ProductStoreSuite))
}

func (s *ProductStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *ProductStoreSuite) TestSaveAndFind() {
	product, err := models.NewProduct(id.ProductID(uuid.New()), models.ProductSpec{
		Name:            "Loan Protect",
		BeneficiaryType: models.BeneficiaryCustomer,
		Duration:        models.Duration{Value: 6, Unit: models.DurationMonths},
		Method:          "TURACO_STANDARD",
		Properties:      []premium.Property{{Key: premium.KeyPremiumRate, Value: "0.03"}},
	}, time.Now())
	s.Require().NoError(err)

	s.Run("round-trips product with rate table", func() {
		s.Require().NoError(s.store.Save(s.ctx, product))

		found, err := s.store.FindByID(s.ctx, product.ID)
		s.Require().NoError(err)
		s.Equal(product.Name, found.Name)
		s.Equal(premium.MethodTuraco, found.Method)
		s.True(decimal.RequireFromString("0.03").Equal(found.Rates.PremiumRate))
	})

	s.Run("returned product is a copy", func() {
		found, err := s.store.FindByID(s.ctx, product.ID)
		s.Require().NoError(err)
		found.Properties[0].Value = "0.9"

		again, err := s.store.FindByID(s.ctx, product.ID)
		s.Require().NoError(err)
		s.Equal("0.03", again.Properties[0].Value)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.ProductID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
