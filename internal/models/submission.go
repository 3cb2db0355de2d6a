package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/your-org/fer/internal/emotion"
)

// Submission is one classified photo together with who sent it.
// It is written once and never updated.
type Submission struct {
	ID         uuid.UUID            `json:"id" db:"id"`
	Name       string               `json:"name" db:"name"`
	Email      string               `json:"email" db:"email"`
	Department string               `json:"department" db:"department"`
	ImagePath  string               `json:"image_path" db:"image_path"` // MinIO object key
	Emotion    emotion.Label        `json:"emotion" db:"emotion"`
	Scores     emotion.Distribution `json:"scores" db:"scores"`
	CreatedAt  time.Time            `json:"created_at" db:"created_at"`
}

// SubmissionEvent is published after a submission is stored.
type SubmissionEvent struct {
	SubmissionID uuid.UUID     `json:"submission_id"`
	Department   string        `json:"department"`
	Emotion      emotion.Label `json:"emotion"`
	Confidence   float32       `json:"confidence"`
	Timestamp    time.Time     `json:"timestamp"`
}
