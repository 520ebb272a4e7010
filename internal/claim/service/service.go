// Package service files claims against policies with uploaded evidence.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"protekt/internal/claim/metrics"
	"protekt/internal/claim/models"
	"protekt/internal/filestore"
	fileModels "protekt/internal/filestore/models"
	memberModels "protekt/internal/member/models"
	"protekt/internal/platform/events"
	"protekt/internal/platform/tracing"
	policyModels "protekt/internal/policy/models"
	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
	"protekt/pkg/platform/sentinel"
	"protekt/pkg/platform/tx"
	"protekt/pkg/platform/validate"
	"protekt/pkg/requestcontext"
)

const tracerScope = "protekt/internal/claim"

type Store interface {
	Create(ctx context.Context, c *models.Claim) error
	CreateDocument(ctx context.Context, doc *models.ClaimDocument) error
	FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error)
}

type FileRecords interface {
	Create(ctx context.Context, file *fileModels.File) error
}

type PolicyFinder interface {
	FindByID(ctx context.Context, policyID id.PolicyID) (*policyModels.Policy, error)
}

type MemberFinder interface {
	FindByID(ctx context.Context, memberID id.MemberID) (*memberModels.Member, error)
}

// CreateClaimRequest describes an incident. TimeOfIncident, when given, is a
// 24-hour "15:04" time.
type CreateClaimRequest struct {
	PolicyID       id.PolicyID `validate:"required"`
	StaffMemberID  id.MemberID `validate:"gt=0"`
	Incident       string      `validate:"required,max=2000"`
	DateOfIncident time.Time   `validate:"required"`
	TimeOfIncident string      `validate:"omitempty,datetime=15:04"`
}

type Service struct {
	store    Store
	files    FileRecords
	policies PolicyFinder
	members  MemberFinder
	storage  filestore.Storage
	tx       tx.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
	events   events.Publisher
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

func New(store Store, files FileRecords, policies PolicyFinder, members MemberFinder, storage filestore.Storage, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:    store,
		files:    files,
		policies: policies,
		members:  members,
		storage:  storage,
		tx:       runner,
		logger:   slog.New(slog.DiscardHandler),
		events:   events.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClaim files a claim against a policy on behalf of a staff member.
// Every non-empty file becomes an EVIDENCE document. The claim and its
// documents commit together; on failure uploaded objects are deleted.
func (s *Service) CreateClaim(ctx context.Context, req CreateClaimRequest, files []filestore.Upload) (_ *models.Claim, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "claim.Create",
		attribute.String("policy_id", req.PolicyID.String()),
		attribute.Int64("staff_member_id", int64(req.StaffMemberID)),
	)
	defer func() { tracing.End(span, err) }()

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.policies.FindByID(ctx, req.PolicyID); err != nil {
		return nil, translate(err, "policy not found")
	}
	staff, err := s.members.FindByID(ctx, req.StaffMemberID)
	if err != nil {
		return nil, translate(err, "staff member not found")
	}
	if staff.Type != memberModels.TypeStaff {
		return nil, dErrors.New(dErrors.CodeNotFound, "staff member not found")
	}

	now := requestcontext.Now(ctx)
	claim, err := models.NewClaim(id.ClaimID(uuid.New()), req.PolicyID, req.StaffMemberID,
		req.Incident, req.DateOfIncident, req.TimeOfIncident, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid claim")
	}

	evidence := nonEmpty(files)
	keys, err := filestore.UploadAll(ctx, s.storage, evidence, filestore.FolderClaimEvidence, s.logger)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "upload claim evidence")
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, claim); err != nil {
			return translate(err, "policy not found")
		}
		for i, key := range keys {
			file, err := fileModels.NewFile(id.FileID(uuid.New()), key, evidence[i].ContentType, now)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "build file record")
			}
			if err := s.files.Create(ctx, file); err != nil {
				return dErrors.Classify(err, dErrors.CodeUnavailable, "save file record")
			}
			doc := claim.AttachEvidence(id.DocumentID(uuid.New()), file.ID, now)
			if err := s.store.CreateDocument(ctx, doc); err != nil {
				return dErrors.Classify(err, dErrors.CodeUnavailable, "save claim document")
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.AddCleanupFailures(filestore.Cleanup(ctx, s.storage, keys, s.logger))
		return nil, err
	}

	s.metrics.IncrementFiled()
	s.metrics.AddEvidenceUploaded(len(claim.Documents))
	s.logger.InfoContext(ctx, "claim filed",
		"claim_id", claim.ID.String(),
		"policy_id", claim.PolicyID.String(),
		"staff_member_id", claim.StaffMemberID.String(),
		"documents", len(claim.Documents),
	)
	events.Emit(ctx, s.events, s.logger, events.Event{
		Type:       events.ClaimFiled,
		Key:        claim.PolicyID.String(),
		OccurredAt: now,
		Attributes: map[string]any{
			"claim_id":  claim.ID.String(),
			"documents": len(claim.Documents),
		},
	})
	return claim, nil
}

func (s *Service) GetClaim(ctx context.Context, claimID id.ClaimID) (_ *models.Claim, err error) {
	ctx, span := tracing.Start(ctx, tracerScope, "claim.Get")
	defer func() { tracing.End(span, err) }()

	c, err := s.store.FindByID(ctx, claimID)
	if err != nil {
		return nil, translate(err, "claim not found")
	}
	return c, nil
}

// nonEmpty drops placeholder parts that carry no body.
func nonEmpty(files []filestore.Upload) []filestore.Upload {
	out := make([]filestore.Upload, 0, len(files))
	for _, f := range files {
		if f.Body == nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

func translate(err error, notFound string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "claim already exists")
	default:
		return dErrors.Classify(err, dErrors.CodeUnavailable, "storage failure")
	}
}
