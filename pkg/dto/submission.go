package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/your-org/fer/internal/emotion"
	"github.com/your-org/fer/internal/models"
	"github.com/your-org/fer/internal/vision"
)

// SubmitRequest is the multipart form accepted by /submit and POST /v1/submissions.
// The photo itself arrives as the "photo" file field.
type SubmitRequest struct {
	Name       string `form:"name"`
	Email      string `form:"email"`
	Department string `form:"department"`
}

type SubmissionResponse struct {
	ID         uuid.UUID                 `json:"id"`
	Name       string                    `json:"name"`
	Email      string                    `json:"email"`
	Department string                    `json:"department"`
	ImagePath  string                    `json:"image_path"`
	Emotion    string                    `json:"emotion"`
	Message    string                    `json:"message,omitempty"`
	Scores     map[emotion.Label]float32 `json:"scores,omitempty"`
	CreatedAt  string                    `json:"created_at"`
}

type PredictionResponse struct {
	Emotion    string                    `json:"emotion"`
	Message    string                    `json:"message"`
	Confidence float32                   `json:"confidence"`
	Scores     map[emotion.Label]float32 `json:"scores"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WSEvent is a WebSocket message announcing a stored submission.
type WSEvent struct {
	Type         string    `json:"type"` // submission_created
	SubmissionID uuid.UUID `json:"submission_id"`
	Department   string    `json:"department"`
	Emotion      string    `json:"emotion"`
	Confidence   float32   `json:"confidence"`
	Timestamp    string    `json:"timestamp"`
}

const WSEventSubmissionCreated = "submission_created"

func NewSubmissionResponse(sub *models.Submission, message string) SubmissionResponse {
	resp := SubmissionResponse{
		ID:         sub.ID,
		Name:       sub.Name,
		Email:      sub.Email,
		Department: sub.Department,
		ImagePath:  sub.ImagePath,
		Emotion:    string(sub.Emotion),
		Message:    message,
		CreatedAt:  sub.CreatedAt.UTC().Format(time.RFC3339),
	}
	if len(sub.Scores) > 0 {
		resp.Scores = sub.Scores.Scores()
	}
	return resp
}

func NewPredictionResponse(res *vision.Result) PredictionResponse {
	return PredictionResponse{
		Emotion:    string(res.Label),
		Message:    res.Message,
		Confidence: res.Confidence,
		Scores:     res.Scores.Scores(),
	}
}

func NewWSEvent(evt models.SubmissionEvent) *WSEvent {
	return &WSEvent{
		Type:         WSEventSubmissionCreated,
		SubmissionID: evt.SubmissionID,
		Department:   evt.Department,
		Emotion:      string(evt.Emotion),
		Confidence:   evt.Confidence,
		Timestamp:    evt.Timestamp.UTC().Format(time.RFC3339),
	}
}
