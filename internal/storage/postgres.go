package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/fer/internal/config"
	"github.com/your-org/fer/internal/emotion"
	"github.com/your-org/fer/internal/models"
)

// PgxPool is the subset of *pgxpool.Pool the store needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type PostgresStore struct {
	pool PgxPool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreWithPool wraps an existing pool.
func NewPostgresStoreWithPool(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateSubmission inserts a new record and fills in its ID and CreatedAt.
func (s *PostgresStore) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	if len(sub.Scores) != emotion.NumClasses {
		return fmt.Errorf("create submission: %w", emotion.ErrEmptyDistribution)
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO submissions (id, name, email, department, image_path, emotion, scores) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		sub.ID, sub.Name, sub.Email, sub.Department, sub.ImagePath, string(sub.Emotion), pgvector.NewVector(sub.Scores),
	).Scan(&sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// GetSubmission returns nil, nil when no record matches.
func (s *PostgresStore) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	sub := &models.Submission{}
	var label string
	var scores []float32
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, department, image_path, emotion, scores::real[], created_at FROM submissions WHERE id = $1`, id,
	).Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Department, &sub.ImagePath, &label, &scores, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	sub.Emotion = emotion.Label(label)
	sub.Scores = scores
	return sub, nil
}
