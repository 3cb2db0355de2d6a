package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/fer/internal/domain"
	"github.com/your-org/fer/internal/models"
	"github.com/your-org/fer/internal/service"
	"github.com/your-org/fer/internal/storage"
	"github.com/your-org/fer/internal/vision"
	"github.com/your-org/fer/pkg/dto"
)

const photoField = "photo"

// Submitter is the service behind the submission endpoints.
type Submitter interface {
	Submit(ctx context.Context, in service.SubmitInput) (*service.SubmitResult, error)
	Predict(imageData []byte) (*vision.Result, error)
}

// SubmissionReader loads stored submissions. A missing record is (nil, nil).
type SubmissionReader interface {
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error)
}

// ImageReader fetches stored uploads by object key.
type ImageReader interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

type SubmissionHandler struct {
	svc            Submitter
	db             SubmissionReader
	images         ImageReader
	maxUploadBytes int64
}

func NewSubmissionHandler(svc Submitter, db SubmissionReader, images ImageReader, maxUploadBytes int64) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, db: db, images: images, maxUploadBytes: maxUploadBytes}
}

// Create handles POST /v1/submissions.
func (h *SubmissionHandler) Create(c *gin.Context) {
	in, err := h.bindSubmission(c)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSubmissionResponse(res.Submission, res.Message))
}

// Predict handles POST /v1/predict. Nothing is stored.
func (h *SubmissionHandler) Predict(c *gin.Context) {
	data, _, _, err := h.readPhoto(c)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.svc.Predict(data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPredictionResponse(res))
}

// Get handles GET /v1/submissions/:id.
func (h *SubmissionHandler) Get(c *gin.Context) {
	sub, err := h.loadSubmission(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubmissionResponse(sub, ""))
}

// Image handles GET /v1/submissions/:id/image, returning the stored upload.
func (h *SubmissionHandler) Image(c *gin.Context) {
	sub, err := h.loadSubmission(c)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := h.images.GetObject(c.Request.Context(), sub.ImagePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			respondError(c, domain.ErrNotFound.WithMessage("image not found"))
			return
		}
		respondError(c, domain.ErrInternal.WithError(err))
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (h *SubmissionHandler) loadSubmission(c *gin.Context) (*models.Submission, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, domain.ErrValidationFailed.WithMessage("invalid submission id")
	}

	sub, err := h.db.GetSubmission(c.Request.Context(), id)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	if sub == nil {
		return nil, domain.ErrNotFound.WithMessage("submission not found")
	}
	return sub, nil
}

func (h *SubmissionHandler) bindSubmission(c *gin.Context) (service.SubmitInput, error) {
	data, filename, contentType, err := h.readPhoto(c)
	if err != nil {
		return service.SubmitInput{}, err
	}

	var req dto.SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		return service.SubmitInput{}, domain.ErrValidationFailed.WithError(err)
	}

	return service.SubmitInput{
		Name:        req.Name,
		Email:       req.Email,
		Department:  req.Department,
		Filename:    filename,
		ContentType: contentType,
		Image:       data,
	}, nil
}

// readPhoto returns the uploaded photo, its client filename and content type.
func (h *SubmissionHandler) readPhoto(c *gin.Context) ([]byte, string, string, error) {
	fh, err := c.FormFile(photoField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, "", "", domain.ErrImageTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, "", "", domain.ErrNoImage
		default:
			return nil, "", "", domain.ErrValidationFailed.WithError(err)
		}
	}
	if fh.Size == 0 {
		return nil, "", "", domain.ErrNoImage
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return nil, "", "", domain.ErrImageTooLarge
	}

	data, err := readFile(fh)
	if err != nil {
		return nil, "", "", domain.ErrInternal.WithError(err)
	}
	return data, fh.Filename, fh.Header.Get("Content-Type"), nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// asAppError unwraps err to an AppError, treating anything else as internal.
func asAppError(err error) *domain.AppError {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return domain.ErrInternal.WithError(err)
}

func respondError(c *gin.Context, err error) {
	appErr := asAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logFailure(c, err)
	}
	c.JSON(appErr.StatusCode, dto.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

func logFailure(c *gin.Context, err error) {
	slog.Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
}
