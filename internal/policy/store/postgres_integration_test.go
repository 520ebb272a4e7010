//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	customerModels "protekt/internal/customer/models"
	customerStore "protekt/internal/customer/store"
	"protekt/internal/policy/models"
	"protekt/internal/policy/store"
	"protekt/internal/premium"
	productModels "protekt/internal/product/models"
	productStore "protekt/internal/product/store"
	id "protekt/pkg/domain"
	"protekt/pkg/platform/sentinel"
	"protekt/pkg/platform/tx"
	"protekt/pkg/testutil/containers"
)

type PostgresPolicyStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	runner   *tx.SQLRunner
	ctx      context.Context

	productID  id.ProductID
	customerID id.CustomerID
}

func TestPostgresPolicyStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresPolicyStoreSuite))
}

func (s *PostgresPolicyStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.runner = tx.NewSQLRunner(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresPolicyStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx,
		"premium_calculations", "policies", "kyc_documents", "customer_verifications",
		"customers", "product_properties", "products"))

	now := time.Now().UTC().Truncate(time.Microsecond)
	product, err := productModels.NewProduct(id.ProductID(uuid.New()), productModels.ProductSpec{
		Name:            "Credit Life",
		BeneficiaryType: productModels.BeneficiaryFanaka,
		Duration:        productModels.Duration{Value: 12, Unit: productModels.DurationMonths},
		Method:          "HOLLARD_STANDARD",
		Properties:      []premium.Property{{Key: premium.KeyPremiumRate, Value: "0.005"}},
	}, now)
	s.Require().NoError(err)
	s.Require().NoError(productStore.NewPostgres(s.postgres.DB).Save(s.ctx, product))
	s.productID = product.ID

	customer, _ := customerModels.NewCustomer(id.CustomerID(uuid.New()), id.VerificationID(uuid.New()), 1, now)
	s.Require().NoError(customerStore.NewPostgres(s.postgres.DB).CreateCustomer(s.ctx, customer))
	s.customerID = customer.ID
}

func (s *PostgresPolicyStoreSuite) newPolicy(loanID id.LoanID) *models.Policy {
	now := time.Now().UTC().Truncate(time.Microsecond)
	p, err := models.NewPolicy(id.PolicyID(uuid.New()), models.Binding{
		ProductID:  s.productID,
		CustomerID: s.customerID,
		LoanID:     loanID,
		LoanAmount: decimal.RequireFromString("100000"),
		Start:      &now,
	}, now)
	s.Require().NoError(err)
	return p
}

func (s *PostgresPolicyStoreSuite) TestUniqueLoanConstraint() {
	s.Require().NoError(s.store.Create(s.ctx, s.newPolicy(10)))

	err := s.store.Create(s.ctx, s.newPolicy(10))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresPolicyStoreSuite) TestConcurrentCreatesOneWins() {
	const attempts = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.runner.RunInTx(s.ctx, func(ctx context.Context) error {
				return s.store.Create(ctx, s.newPolicy(20))
			})
			if err != nil {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(attempts-1, conflicts)

	exists, err := s.store.ExistsForAnyLoan(s.ctx, []id.LoanID{19, 20})
	s.Require().NoError(err)
	s.True(exists)
}

func (s *PostgresPolicyStoreSuite) TestCalculationRoundTrip() {
	p := s.newPolicy(30)
	s.Require().NoError(s.store.Create(s.ctx, p))

	calc, err := premium.NewEngine().Calculate(premium.Input{
		Method:     premium.MethodHollard,
		Rates:      premium.DefaultRateTable(premium.MethodHollard),
		SumAssured: decimal.RequireFromString("100000"),
	})
	s.Require().NoError(err)
	calc.Stamp(id.CalculationID(uuid.New()), p.ID, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.AppendCalculation(s.ctx, calc))

	calcs, err := s.store.ListCalculations(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(calcs, 1)
	s.Equal("320.63", premium.FormatMoney(calcs[0].TotalPremium))
	s.True(calcs[0].LevyAmount.Valid)
	s.False(calcs[0].TaxAmount.Valid)

	loaded, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.LoanAmount, loaded.LoanAmount)
	s.Nil(loaded.PolicyEnd)
}
