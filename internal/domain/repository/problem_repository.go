package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codearena/internal/common"
	"codearena/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	Create(ctx context.Context, p *model.Problem) error
	GetBySlug(ctx context.Context, slug string) (*model.Problem, error)
	// GetExamples returns the problem's ordered free-form example blocks.
	GetExamples(ctx context.Context, problemID string) ([]string, error)
	IncrementSubmissions(ctx context.Context, problemID string, delta int) error
	Stats(ctx context.Context) (model.ProblemStats, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) Create(ctx context.Context, p *model.Problem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO problems (id, title, slug, description, difficulty, submissions)
	          VALUES ($1, $2, $3, $4, $5, 0)`
	if _, err := tx.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Difficulty); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique constraint for slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO problem_examples (problem_id, body, sort_order) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create prepare examples: %w", err)
	}
	defer stmt.Close()
	for i, body := range p.Examples {
		if _, err := stmt.ExecContext(ctx, p.ID, body, i+1); err != nil {
			return fmt.Errorf("pgProblemRepository.Create example %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *pgProblemRepository) GetBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	query := `SELECT id, title, slug, description, difficulty, submissions, created_at, updated_at
	          FROM problems WHERE slug = $1`

	p := &model.Problem{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Difficulty,
		&p.Submissions, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.GetBySlug: %w", err)
	}

	examples, err := r.GetExamples(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Examples = examples
	return p, nil
}

func (r *pgProblemRepository) GetExamples(ctx context.Context, problemID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT body FROM problem_examples WHERE problem_id = $1 ORDER BY sort_order`, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetExamples: %w", err)
	}
	defer rows.Close()

	examples := []string{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetExamples scan: %w", err)
		}
		examples = append(examples, body)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetExamples rows: %w", err)
	}
	return examples, nil
}

func (r *pgProblemRepository) IncrementSubmissions(ctx context.Context, problemID string, delta int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE problems SET submissions = submissions + $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		delta, problemID)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.IncrementSubmissions: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) Stats(ctx context.Context) (model.ProblemStats, error) {
	var stats model.ProblemStats
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problems`).Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("pgProblemRepository.Stats: %w", err)
	}
	return stats, nil
}
