package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/fer/internal/emotion"
	"github.com/your-org/fer/internal/models"
)

var (
	insertSubmissionSQL = regexp.QuoteMeta(`INSERT INTO submissions (id, name, email, department, image_path, emotion, scores) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`)
	selectSubmissionSQL = regexp.QuoteMeta(`SELECT id, name, email, department, image_path, emotion, scores::real[], created_at FROM submissions WHERE id = $1`)
)

func sampleSubmission() *models.Submission {
	return &models.Submission{
		ID:         uuid.New(),
		Name:       "Ada",
		Email:      "ada@example.com",
		Department: "Computer Science",
		ImagePath:  "uploads/abc_face.jpg",
		Emotion:    emotion.Happy,
		Scores:     emotion.Distribution{0.1, 0.05, 0.05, 0.6, 0.1, 0.05, 0.05},
	}
}

func TestPostgresStore_CreateSubmission(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface, sub *models.Submission)
		wantErr   string
	}{
		{
			name: "inserted",
			mockSetup: func(mock pgxmock.PgxPoolIface, sub *models.Submission) {
				mock.ExpectQuery(insertSubmissionSQL).
					WithArgs(sub.ID, sub.Name, sub.Email, sub.Department, sub.ImagePath, "Happy", pgvector.NewVector(sub.Scores)).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
			},
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface, sub *models.Submission) {
				mock.ExpectQuery(insertSubmissionSQL).
					WithArgs(sub.ID, sub.Name, sub.Email, sub.Department, sub.ImagePath, "Happy", pgvector.NewVector(sub.Scores)).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: "create submission: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			sub := sampleSubmission()
			tt.mockSetup(mock, sub)

			store := NewPostgresStoreWithPool(mock)
			err = store.CreateSubmission(context.Background(), sub)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			} else {
				require.NoError(t, err)
				assert.Equal(t, now, sub.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_CreateSubmission_AssignsID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(insertSubmissionSQL).
		WithArgs(pgxmock.AnyArg(), "Ada", "ada@example.com", "Computer Science", "uploads/abc_face.jpg", "Happy", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	sub := sampleSubmission()
	sub.ID = uuid.Nil
	require.NoError(t, NewPostgresStoreWithPool(mock).CreateSubmission(context.Background(), sub))
	assert.NotEqual(t, uuid.Nil, sub.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateSubmission_RejectsBadScores(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sub := sampleSubmission()
	sub.Scores = emotion.Distribution{1}
	err = NewPostgresStoreWithPool(mock).CreateSubmission(context.Background(), sub)
	assert.ErrorIs(t, err, emotion.ErrEmptyDistribution)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSubmission(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	scores := []float32{0, 0, 0, 0, 1, 0, 0}

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(selectSubmissionSQL).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "name", "email", "department", "image_path", "emotion", "scores", "created_at",
			}).AddRow(id, "Ada", "ada@example.com", "CS", "uploads/x.png", "Sad", scores, now))

		got, err := NewPostgresStoreWithPool(mock).GetSubmission(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, emotion.Sad, got.Emotion)
		assert.Equal(t, emotion.Distribution(scores), got.Scores)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(selectSubmissionSQL).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		got, err := NewPostgresStoreWithPool(mock).GetSubmission(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(selectSubmissionSQL).WithArgs(id).WillReturnError(errors.New("timeout"))

		_, err = NewPostgresStoreWithPool(mock).GetSubmission(context.Background(), id)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get submission")
	})
}

func TestMigrationsEmbedded(t *testing.T) {
	up, err := migrationsFS.ReadFile("migrations/000001_create_submissions.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "vector(7)")

	_, err = migrationsFS.ReadFile("migrations/000001_create_submissions.down.sql")
	require.NoError(t, err)
}
