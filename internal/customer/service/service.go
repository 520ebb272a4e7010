// Package service runs customer enrollment and the KYC verification workflow.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"protekt/internal/customer/metrics"
	"protekt/internal/customer/models"
	"protekt/internal/filestore"
	fileModels "protekt/internal/filestore/models"
	memberModels "protekt/internal/member/models"
	"protekt/internal/platform/events"
	"protekt/internal/platform/tracing"
	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
	"protekt/pkg/platform/sentinel"
	"protekt/pkg/platform/tx"
	"protekt/pkg/requestcontext"
)

const tracerScope = "protekt/internal/customer"

// DefaultDocumentURLTTL applies when DocumentURL is called without a TTL.
const DefaultDocumentURLTTL = 15 * time.Minute

type Store interface {
	CreateCustomer(ctx context.Context, c *models.Customer) error
	FindCustomerByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error)
	CreateVerification(ctx context.Context, v *models.Verification) error
	FindVerification(ctx context.Context, customerID id.CustomerID) (*models.Verification, error)
	FindVerificationForUpdate(ctx context.Context, customerID id.CustomerID) (*models.Verification, error)
	UpdateVerification(ctx context.Context, v *models.Verification) error
	CreateDocument(ctx context.Context, doc *models.KycDocument) error
	FindDocument(ctx context.Context, docID id.DocumentID) (*models.KycDocument, error)
	MarkDocumentsVerified(ctx context.Context, verificationID id.VerificationID, now time.Time) (int, error)
}

type FileRecords interface {
	Create(ctx context.Context, file *fileModels.File) error
	FindByID(ctx context.Context, fileID id.FileID) (*fileModels.File, error)
}

type MemberFinder interface {
	FindByID(ctx context.Context, memberID id.MemberID) (*memberModels.Member, error)
}

// Service enrolls customers and moves their verification through KYC review.
type Service struct {
	store   Store
	files   FileRecords
	members MemberFinder
	storage filestore.Storage
	tx      tx.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
	events  events.Publisher
	urlTTL  time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithDocumentURLTTL sets the default lifetime of signed document URLs.
func WithDocumentURLTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.urlTTL = ttl
		}
	}
}

func New(store Store, files FileRecords, members MemberFinder, storage filestore.Storage, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:   store,
		files:   files,
		members: members,
		storage: storage,
		tx:      runner,
		logger:  slog.New(slog.DiscardHandler),
		events:  events.Nop{},
		urlTTL:  DefaultDocumentURLTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCustomer enrolls a member and opens a PENDING verification for it in
// the same unit of work.
func (s *Service) CreateCustomer(ctx context.Context, memberID id.MemberID) (_ *models.Customer, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "customer.Create", attribute.Int64("member_id", int64(memberID)))
	defer func() { tracing.End(span, err) }()

	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, translate(err, "member not found", "")
	}

	now := requestcontext.Now(ctx)
	customer, verification := models.NewCustomer(
		id.CustomerID(uuid.New()),
		id.VerificationID(uuid.New()),
		memberID,
		now,
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateCustomer(ctx, customer); err != nil {
			return translate(err, "", "member is already enrolled")
		}
		if err := s.store.CreateVerification(ctx, verification); err != nil {
			return translate(err, "", "customer already has a verification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementEnrolled()
	s.logger.InfoContext(ctx, "customer enrolled",
		"customer_id", customer.ID.String(),
		"member_id", memberID.String(),
	)
	events.Emit(ctx, s.events, s.logger, events.Event{
		Type:       events.CustomerEnrolled,
		Key:        customer.ID.String(),
		OccurredAt: now,
		Attributes: map[string]any{"member_id": int64(memberID)},
	})
	return customer, nil
}

// ChangeStatus moves the verification to status. Moving to VERIFIED also marks
// every document verified; the status and the cascade commit together or not
// at all.
func (s *Service) ChangeStatus(ctx context.Context, customerID id.CustomerID, status, notes string) (_ *models.Verification, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "customer.ChangeStatus",
		attribute.String("customer_id", customerID.String()),
		attribute.String("status", status),
	)
	defer func() { tracing.End(span, err) }()

	to, ok := models.ParseStatus(status)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown verification status %q", status)
	}

	now := requestcontext.Now(ctx)
	var (
		verification *models.Verification
		from         models.Status
		verified     int
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		v, err := s.store.FindVerificationForUpdate(ctx, customerID)
		if err != nil {
			return translate(err, "customer not found", "")
		}
		if err := v.CanChangeStatus(to); err != nil {
			return err
		}
		from = v.Status
		v.ApplyStatus(to, notes, now)
		if err := s.store.UpdateVerification(ctx, v); err != nil {
			return translate(err, "customer not found", "")
		}
		if to == models.StatusVerified {
			n, err := s.store.MarkDocumentsVerified(ctx, v.ID, now)
			if err != nil {
				return dErrors.Classify(err, dErrors.CodeUnavailable, "mark documents verified")
			}
			verified = n
			for _, doc := range v.Documents {
				if !doc.Verified {
					doc.Verified = true
					doc.UpdatedAt = now
				}
			}
		}
		verification = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementTransition(string(to))
	s.metrics.AddDocumentsVerified(verified)
	s.logger.InfoContext(ctx, "verification status changed",
		"customer_id", customerID.String(),
		"from", string(from),
		"to", string(to),
		"documents_verified", verified,
	)
	events.Emit(ctx, s.events, s.logger, events.Event{
		Type:       events.VerificationStatusChanged,
		Key:        customerID.String(),
		OccurredAt: now,
		Attributes: map[string]any{"from": string(from), "to": string(to)},
	})
	return verification, nil
}

// UploadKycDocuments stores files as KYC documents of the customer and moves
// the verification to SUBMITTED unless it already is. documentTypes pairs
// with files by position. It returns the verification as committed, with all
// of its documents. On any failure nothing is persisted and uploaded objects
// are deleted.
func (s *Service) UploadKycDocuments(ctx context.Context, customerID id.CustomerID, files []filestore.Upload, documentTypes []string) (_ *models.Verification, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "customer.UploadKycDocuments",
		attribute.String("customer_id", customerID.String()),
		attribute.Int("files", len(files)),
	)
	defer func() { tracing.End(span, err) }()

	types, err := validateUploads(files, documentTypes)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindVerification(ctx, customerID); err != nil {
		return nil, translate(err, "customer not found", "")
	}

	keys, err := filestore.UploadAll(ctx, s.storage, files, filestore.FolderKYC, s.logger)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "upload kyc documents")
	}

	now := requestcontext.Now(ctx)
	var (
		verification *models.Verification
		submitted    bool
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		v, err := s.store.FindVerificationForUpdate(ctx, customerID)
		if err != nil {
			return translate(err, "customer not found", "")
		}
		for i, key := range keys {
			file, err := fileModels.NewFile(id.FileID(uuid.New()), key, files[i].ContentType, now)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "build file record")
			}
			if err := s.files.Create(ctx, file); err != nil {
				return dErrors.Classify(err, dErrors.CodeUnavailable, "save file record")
			}
			doc, err := models.NewKycDocument(id.DocumentID(uuid.New()), v, file.ID, types[i], now)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeValidation, "invalid document type")
			}
			if err := s.store.CreateDocument(ctx, doc); err != nil {
				return dErrors.Classify(err, dErrors.CodeUnavailable, "save kyc document")
			}
		}
		submitted = v.NeedsSubmission()
		if submitted {
			v.ApplyStatus(models.StatusSubmitted, v.Notes, now)
			if err := s.store.UpdateVerification(ctx, v); err != nil {
				return translate(err, "customer not found", "")
			}
		}
		verification, err = s.store.FindVerification(ctx, customerID)
		if err != nil {
			return translate(err, "customer not found", "")
		}
		return nil
	})
	if err != nil {
		s.metrics.AddCleanupFailures(filestore.Cleanup(ctx, s.storage, keys, s.logger))
		return nil, err
	}

	s.metrics.AddDocumentsUploaded(len(keys))
	if submitted {
		s.metrics.IncrementTransition(string(models.StatusSubmitted))
	}
	s.logger.InfoContext(ctx, "kyc documents uploaded",
		"customer_id", customerID.String(),
		"documents", len(keys),
		"submitted", submitted,
	)
	events.Emit(ctx, s.events, s.logger, events.Event{
		Type:       events.KycDocumentsSubmitted,
		Key:        customerID.String(),
		OccurredAt: now,
		Attributes: map[string]any{"documents": len(keys), "document_types": types},
	})
	if submitted {
		events.Emit(ctx, s.events, s.logger, events.Event{
			Type:       events.VerificationStatusChanged,
			Key:        customerID.String(),
			OccurredAt: now,
			Attributes: map[string]any{"to": string(models.StatusSubmitted)},
		})
	}
	return verification, nil
}

// GetVerification returns the customer's verification with its documents.
func (s *Service) GetVerification(ctx context.Context, customerID id.CustomerID) (_ *models.Verification, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "customer.GetVerification")
	defer func() { tracing.End(span, err) }()

	v, err := s.store.FindVerification(ctx, customerID)
	if err != nil {
		return nil, translate(err, "customer not found", "")
	}
	return v, nil
}

// DocumentURL signs a time-limited download URL for a KYC document. A
// non-positive ttl uses the service default.
func (s *Service) DocumentURL(ctx context.Context, documentID id.DocumentID, ttl time.Duration) (_ string, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "customer.DocumentURL")
	defer func() { tracing.End(span, err) }()

	if ttl <= 0 {
		ttl = s.urlTTL
	}
	doc, err := s.store.FindDocument(ctx, documentID)
	if err != nil {
		return "", translate(err, "document not found", "")
	}
	file, err := s.files.FindByID(ctx, doc.FileID)
	if err != nil {
		return "", translate(err, "document file not found", "")
	}
	url, err := s.storage.Sign(ctx, file.Key, ttl)
	if err != nil {
		return "", translate(err, "document object not found", "")
	}
	return url, nil
}

func validateUploads(files []filestore.Upload, documentTypes []string) ([]string, error) {
	if len(files) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one file is required")
	}
	if len(files) != len(documentTypes) {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"got %d files but %d document types", len(files), len(documentTypes))
	}
	types := make([]string, len(documentTypes))
	for i, t := range documentTypes {
		normalized, err := models.NormalizeDocumentType(t)
		if err != nil {
			return nil, dErrors.Newf(dErrors.CodeValidation, "document type %d is blank", i+1)
		}
		types[i] = normalized
	}
	return types, nil
}

// translate maps store sentinels to domain errors. Unclassified failures are
// storage failures.
func translate(err error, notFound, conflict string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound) && notFound != "":
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict) && conflict != "":
		return dErrors.New(dErrors.CodeConflict, conflict)
	default:
		return dErrors.Classify(err, dErrors.CodeUnavailable, "storage failure")
	}
}
