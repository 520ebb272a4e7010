package service

//go:generate mockgen -source=../../filestore/filestore.go -destination=../../filestore/mocks/mocks.go -package=mocks Storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"protekt/internal/customer/metrics"
	"protekt/internal/customer/models"
	"protekt/internal/customer/store"
	"protekt/internal/filestore"
	"protekt/internal/filestore/mocks"
	fileStore "protekt/internal/filestore/store"
	memberModels "protekt/internal/member/models"
	memberStore "protekt/internal/member/store"
	"protekt/internal/platform/events"
	"protekt/internal/platform/logger"
	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
	"protekt/pkg/platform/sentinel"
	"protekt/pkg/platform/tx"
	"protekt/pkg/requestcontext"
)

// =============================================================================
// Customer Service Test Suite
// =============================================================================
// Runs the service against in-memory stores behind a MemoryRunner so rollback
// behaviour is exercised for real. Object storage is the in-memory store,
// replaced by a gomock Storage where a collaborator failure must be scripted.

type faultyStore struct {
	*store.InMemory
	failMarkVerified bool
	failCreateDoc    int
	docsCreated      int
	lockedReads      atomic.Int32
}

func (f *faultyStore) FindVerificationForUpdate(ctx context.Context, customerID id.CustomerID) (*models.Verification, error) {
	f.lockedReads.Add(1)
	return f.InMemory.FindVerificationForUpdate(ctx, customerID)
}

func (f *faultyStore) MarkDocumentsVerified(ctx context.Context, verificationID id.VerificationID, now time.Time) (int, error) {
	n, err := f.InMemory.MarkDocumentsVerified(ctx, verificationID, now)
	if err != nil {
		return n, err
	}
	if f.failMarkVerified {
		return 0, errors.New("connection reset while updating documents")
	}
	return n, nil
}

func (f *faultyStore) CreateDocument(ctx context.Context, doc *models.KycDocument) error {
	f.docsCreated++
	if f.failCreateDoc > 0 && f.docsCreated >= f.failCreateDoc {
		return errors.New("insert kyc document: deadlock detected")
	}
	return f.InMemory.CreateDocument(ctx, doc)
}

type CustomerServiceSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	store     *faultyStore
	files     *fileStore.InMemory
	members   *memberStore.InMemory
	objects   *filestore.InMemory
	runner    *tx.MemoryRunner
	publisher *events.Recorder
	metrics   *metrics.Metrics
	service   *Service
}

func TestCustomerServiceSuite(t *testing.T) {
	suite.Run(t, new(CustomerServiceSuite))
}

func (s *CustomerServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = &faultyStore{InMemory: store.NewInMemory()}
	s.files = fileStore.NewInMemory()
	s.members = memberStore.NewInMemory()
	s.members.Put(&memberModels.Member{ID: 7, Type: memberModels.TypeCustomer, FirstName: "Mwila", Mobile: "0977000001", IDNumber: "123456/10/1"})
	s.objects = filestore.NewInMemory()
	s.runner = tx.NewMemoryRunner(s.store.InMemory, s.files)
	s.publisher = &events.Recorder{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = s.newService(s.objects)
}

func (s *CustomerServiceSuite) newService(storage filestore.Storage) *Service {
	return New(s.store, s.files, s.members, storage, s.runner,
		WithLogger(logger.Discard()),
		WithMetrics(s.metrics),
		WithPublisher(s.publisher),
	)
}

func (s *CustomerServiceSuite) enroll() *models.Customer {
	customer, err := s.service.CreateCustomer(s.ctx, 7)
	s.Require().NoError(err)
	return customer
}

func (s *CustomerServiceSuite) upload(customerID id.CustomerID, types ...string) *models.Verification {
	files := make([]filestore.Upload, len(types))
	for i, t := range types {
		files[i] = filestore.Upload{Name: strings.ToLower(t) + ".jpg", ContentType: "image/jpeg", Body: strings.NewReader(t)}
	}
	v, err := s.service.UploadKycDocuments(s.ctx, customerID, files, types)
	s.Require().NoError(err)
	return v
}

func (s *CustomerServiceSuite) eventTypes() []events.Type {
	var types []events.Type
	for _, e := range s.publisher.Events() {
		types = append(types, e.Type)
	}
	return types
}

// =============================================================================
// CreateCustomer
// =============================================================================

func (s *CustomerServiceSuite) TestCreateCustomer() {
	s.Run("creates customer with pending verification", func() {
		customer := s.enroll()
		s.Equal(id.MemberID(7), customer.MemberID)

		v, err := s.service.GetVerification(s.ctx, customer.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, v.Status)
		s.Nil(v.StatusChangedAt)
		s.Empty(v.Documents)
		s.Equal([]events.Type{events.CustomerEnrolled}, s.eventTypes())
		s.InDelta(1, testutil.ToFloat64(s.metrics.CustomersEnrolled), 0)
	})

	s.Run("member enrolls only once", func() {
		_, err := s.service.CreateCustomer(s.ctx, 7)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown member is not found", func() {
		_, err := s.service.CreateCustomer(s.ctx, 404)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// ChangeStatus
// =============================================================================

func (s *CustomerServiceSuite) TestChangeStatus() {
	s.Run("unknown status is a validation error", func() {
		customer := s.enroll()
		_, err := s.service.ChangeStatus(s.ctx, customer.ID, "APPROVED", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown customer is not found", func() {
		_, err := s.service.ChangeStatus(s.ctx, id.CustomerID(uuid.New()), "IN_REVIEW", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CustomerServiceSuite) TestChangeStatus_SameStatusIsRejected() {
	customer := s.enroll()

	_, err := s.service.ChangeStatus(s.ctx, customer.ID, "pending", "again")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	v, err := s.service.GetVerification(s.ctx, customer.ID)
	s.Require().NoError(err)
	s.Nil(v.StatusChangedAt)
	s.Empty(v.Notes)
}

func (s *CustomerServiceSuite) TestChangeStatus_ConcurrentSameTargetAppliesOnce() {
	customer := s.enroll()
	s.upload(customer.ID, "NATIONAL_ID")
	s.store.lockedReads.Store(0)

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			at := requestcontext.WithTime(s.ctx, s.now.Add(time.Duration(i+1)*time.Minute))
			_, errs[i] = s.service.ChangeStatus(at, customer.ID, "VERIFIED", "")
		}()
	}
	wg.Wait()

	var applied, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			applied++
		case dErrors.HasCode(err, dErrors.CodeConflict):
			rejected++
		}
	}
	s.Equal(1, applied)
	s.Equal(callers-1, rejected)
	s.Equal(int32(callers), s.store.lockedReads.Load())
	s.InDelta(1, testutil.ToFloat64(s.metrics.StatusTransitions.WithLabelValues("VERIFIED")), 0)
}

func (s *CustomerServiceSuite) TestChangeStatus_RecordsTransition() {
	customer := s.enroll()
	later := s.now.Add(time.Hour)

	v, err := s.service.ChangeStatus(requestcontext.WithTime(s.ctx, later), customer.ID, "in_review", "picked up")
	s.Require().NoError(err)
	s.Equal(models.StatusInReview, v.Status)
	s.Equal("picked up", v.Notes)
	s.Require().NotNil(v.StatusChangedAt)
	s.Equal(later, *v.StatusChangedAt)
	s.Equal(later, v.UpdatedAt)
	s.InDelta(1, testutil.ToFloat64(s.metrics.StatusTransitions.WithLabelValues("IN_REVIEW")), 0)
}

func (s *CustomerServiceSuite) TestChangeStatus_VerifiedCascadesToDocuments() {
	customer := s.enroll()
	s.upload(customer.ID, "NATIONAL_ID", "PASSPORT")

	v, err := s.service.ChangeStatus(s.ctx, customer.ID, "VERIFIED", "all good")
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, v.Status)

	stored, err := s.service.GetVerification(s.ctx, customer.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Documents, 2)
	for _, doc := range stored.Documents {
		s.True(doc.Verified, doc.DocumentType)
	}
	s.InDelta(2, testutil.ToFloat64(s.metrics.DocumentsVerified), 0)
}

func (s *CustomerServiceSuite) TestChangeStatus_CascadeFailureRollsBack() {
	customer := s.enroll()
	s.upload(customer.ID, "NATIONAL_ID", "PASSPORT")
	s.store.failMarkVerified = true

	_, err := s.service.ChangeStatus(s.ctx, customer.ID, "VERIFIED", "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	stored, err := s.service.GetVerification(s.ctx, customer.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, stored.Status)
	for _, doc := range stored.Documents {
		s.False(doc.Verified)
	}
}

// =============================================================================
// UploadKycDocuments
// =============================================================================

func (s *CustomerServiceSuite) TestUploadKycDocuments_Validation() {
	customer := s.enroll()
	cases := map[string]struct {
		files []filestore.Upload
		types []string
	}{
		"no files":           {files: nil, types: nil},
		"more files":         {files: []filestore.Upload{{Name: "a.jpg"}, {Name: "b.jpg"}}, types: []string{"NATIONAL_ID"}},
		"more types":         {files: []filestore.Upload{{Name: "a.jpg"}}, types: []string{"NATIONAL_ID", "PASSPORT"}},
		"blank type":         {files: []filestore.Upload{{Name: "a.jpg"}}, types: []string{"  "}},
		"blank among others": {files: []filestore.Upload{{Name: "a.jpg"}, {Name: "b.jpg"}}, types: []string{"PASSPORT", ""}},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			_, err := s.service.UploadKycDocuments(s.ctx, customer.ID, tc.files, tc.types)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))

			v, err := s.service.GetVerification(s.ctx, customer.ID)
			s.Require().NoError(err)
			s.Empty(v.Documents)
			s.Empty(s.objects.Keys())
		})
	}
}

func (s *CustomerServiceSuite) TestUploadKycDocuments_SubmitsOnce() {
	customer := s.enroll()

	v := s.upload(customer.ID, "national_id")
	s.Equal(models.StatusSubmitted, v.Status)
	s.Require().Len(v.Documents, 1)
	s.Equal(models.DocumentNationalID, v.Documents[0].DocumentType)
	s.False(v.Documents[0].Verified)
	s.Require().NotNil(v.StatusChangedAt)
	s.Equal(s.now, *v.StatusChangedAt)
	firstChange := *v.StatusChangedAt

	stored, err := s.service.GetVerification(s.ctx, customer.ID)
	s.Require().NoError(err)
	s.Equal(v.Status, stored.Status)

	later := s.now.Add(time.Minute)
	v, err = s.service.UploadKycDocuments(requestcontext.WithTime(s.ctx, later), customer.ID,
		[]filestore.Upload{{Name: "passport.pdf", Body: strings.NewReader("p")}}, []string{"PASSPORT"})
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, v.Status)
	s.Equal(firstChange, *v.StatusChangedAt)
	s.Require().Len(v.Documents, 2)
	s.Equal(models.DocumentNationalID, v.Documents[0].DocumentType)
	s.Equal(models.DocumentPassport, v.Documents[1].DocumentType)
	s.Len(s.objects.Keys(), 2)
	s.InDelta(2, testutil.ToFloat64(s.metrics.DocumentsUploaded), 0)
}

func (s *CustomerServiceSuite) TestUploadKycDocuments_UnknownCustomerUploadsNothing() {
	_, err := s.service.UploadKycDocuments(s.ctx, id.CustomerID(uuid.New()),
		[]filestore.Upload{{Name: "a.jpg"}}, []string{"PASSPORT"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Empty(s.objects.Keys())
}

func (s *CustomerServiceSuite) TestUploadKycDocuments_StorageFailureDeletesUploaded() {
	customer := s.enroll()
	ctrl := gomock.NewController(s.T())
	storage := mocks.NewMockStorage(ctrl)
	svc := s.newService(storage)

	storage.EXPECT().Upload(gomock.Any(), gomock.Any(), filestore.FolderKYC).
		DoAndReturn(func(_ context.Context, file filestore.Upload, folder string) (string, error) {
			if file.Name == "back.jpg" {
				return "", sentinel.ErrUnavailable
			}
			return folder + "/" + file.Name, nil
		}).Times(2)
	storage.EXPECT().Delete(gomock.Any(), "kyc-documents/front.jpg").Return(nil)

	_, err := svc.UploadKycDocuments(s.ctx, customer.ID,
		[]filestore.Upload{{Name: "front.jpg"}, {Name: "back.jpg"}},
		[]string{"NATIONAL_ID", "NATIONAL_ID"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	v, err := s.service.GetVerification(s.ctx, customer.ID)
	s.Require().NoError(err)
	s.Empty(v.Documents)
	s.Equal(models.StatusPending, v.Status)
	s.Zero(s.files.Count())
}

func (s *CustomerServiceSuite) TestUploadKycDocuments_PersistFailureRollsBackAndDeletes() {
	customer := s.enroll()
	s.store.failCreateDoc = 2

	_, err := s.service.UploadKycDocuments(s.ctx, customer.ID,
		[]filestore.Upload{{Name: "front.jpg"}, {Name: "back.jpg"}},
		[]string{"NATIONAL_ID", "NATIONAL_ID"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	v, err := s.service.GetVerification(s.ctx, customer.ID)
	s.Require().NoError(err)
	s.Empty(v.Documents)
	s.Equal(models.StatusPending, v.Status)
	s.Zero(s.files.Count())
	s.Empty(s.objects.Keys())
	s.NotContains(s.eventTypes(), events.KycDocumentsSubmitted)
}

// =============================================================================
// DocumentURL
// =============================================================================

func (s *CustomerServiceSuite) TestDocumentURL() {
	customer := s.enroll()
	docs := s.upload(customer.ID, "PASSPORT").Documents

	s.Run("signs stored object", func() {
		url, err := s.service.DocumentURL(s.ctx, docs[0].ID, time.Minute)
		s.Require().NoError(err)
		s.True(strings.HasPrefix(url, "memory://kyc-documents/"), url)
		s.Contains(url, "expires=1m0s")
	})

	s.Run("unknown document is not found", func() {
		_, err := s.service.DocumentURL(s.ctx, id.DocumentID(uuid.New()), 0)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("signing failure is unavailable", func() {
		ctrl := gomock.NewController(s.T())
		storage := mocks.NewMockStorage(ctrl)
		storage.EXPECT().Sign(gomock.Any(), gomock.Any(), DefaultDocumentURLTTL).
			Return("", errors.New("credentials expired"))

		_, err := s.newService(storage).DocumentURL(s.ctx, docs[0].ID, 0)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}
