package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/fer/internal/domain"
	"github.com/your-org/fer/internal/models"
	"github.com/your-org/fer/internal/observability"
	"github.com/your-org/fer/internal/storage"
	"github.com/your-org/fer/internal/vision"
)

// Analyzer classifies the expression in an encoded photo.
type Analyzer interface {
	Analyze(imageData []byte) (*vision.Result, error)
}

// ImageStore keeps uploaded photos.
type ImageStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// SubmissionRepository persists submission records.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
}

// EventPublisher announces stored submissions.
type EventPublisher interface {
	PublishSubmission(ctx context.Context, evt models.SubmissionEvent) error
}

// SubmitInput is one form submission.
type SubmitInput struct {
	Name        string
	Email       string
	Department  string
	Filename    string
	ContentType string
	Image       []byte
}

// SubmitResult is what the submitter sees.
type SubmitResult struct {
	Submission *models.Submission
	Message    string
	Confidence float32
}

type SubmissionService struct {
	analyzer  Analyzer
	images    ImageStore
	records   SubmissionRepository
	publisher EventPublisher
	now       func() time.Time
}

// NewSubmissionService wires the collaborators. publisher may be nil.
func NewSubmissionService(analyzer Analyzer, images ImageStore, records SubmissionRepository, publisher EventPublisher) *SubmissionService {
	return &SubmissionService{
		analyzer:  analyzer,
		images:    images,
		records:   records,
		publisher: publisher,
		now:       time.Now,
	}
}

// Predict classifies a photo without storing anything.
func (s *SubmissionService) Predict(imageData []byte) (*vision.Result, error) {
	if len(imageData) == 0 {
		return nil, domain.ErrNoImage
	}
	res, err := s.analyzer.Analyze(imageData)
	if err != nil {
		return nil, classifyError(err)
	}
	return res, nil
}

// Submit classifies the photo, stores it with the submitter's details and
// announces the new record. Nothing is stored when classification fails.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Department = strings.TrimSpace(in.Department)

	if err := validate(in); err != nil {
		observability.Submissions.WithLabelValues("rejected").Inc()
		return nil, err
	}

	res, err := s.analyzer.Analyze(in.Image)
	if err != nil {
		observability.Submissions.WithLabelValues("rejected").Inc()
		return nil, classifyError(err)
	}

	id := uuid.New()
	key := storage.UploadKey(id, in.Filename)
	if err := s.images.PutObject(ctx, key, in.Image, in.ContentType); err != nil {
		observability.Submissions.WithLabelValues("failed").Inc()
		return nil, domain.ErrInternal.WithError(err)
	}

	sub := &models.Submission{
		ID:         id,
		Name:       in.Name,
		Email:      in.Email,
		Department: in.Department,
		ImagePath:  key,
		Emotion:    res.Label,
		Scores:     res.Scores,
	}
	if err := s.records.CreateSubmission(ctx, sub); err != nil {
		observability.Submissions.WithLabelValues("failed").Inc()
		return nil, domain.ErrInternal.WithError(err)
	}

	observability.Submissions.WithLabelValues("stored").Inc()
	slog.Info("submission stored",
		"id", sub.ID,
		"department", sub.Department,
		"emotion", sub.Emotion,
		"confidence", res.Confidence,
	)

	if s.publisher != nil {
		evt := models.SubmissionEvent{
			SubmissionID: sub.ID,
			Department:   sub.Department,
			Emotion:      sub.Emotion,
			Confidence:   res.Confidence,
			Timestamp:    s.now().UTC(),
		}
		if err := s.publisher.PublishSubmission(ctx, evt); err != nil {
			slog.Warn("publish submission event", "error", err, "id", sub.ID)
		}
	}

	return &SubmitResult{
		Submission: sub,
		Message:    res.Message,
		Confidence: res.Confidence,
	}, nil
}

func validate(in SubmitInput) error {
	if len(in.Image) == 0 {
		return domain.ErrNoImage
	}
	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Department == "" {
		missing = append(missing, "department")
	}
	if len(missing) > 0 {
		return domain.ErrValidationFailed.WithMessage("missing fields: " + strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.ErrValidationFailed.WithMessage("invalid email address")
	}
	return nil
}

// classifyError maps pipeline failures to user-facing errors. Only bad input
// is reported as the submitter's fault; everything else is internal.
func classifyError(err error) error {
	switch {
	case errors.Is(err, vision.ErrDecode):
		return domain.ErrInvalidImage.WithError(err)
	case errors.Is(err, vision.ErrEmptyImage):
		return domain.ErrEmptyImage.WithError(err)
	case errors.Is(err, vision.ErrImageTooLarge):
		return domain.ErrImageDimensions.WithError(err)
	default:
		return domain.ErrInternal.WithError(err)
	}
}
