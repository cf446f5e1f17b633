package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codearena/internal/common"
	"codearena/internal/domain/model"
)

type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	List(ctx context.Context) ([]model.Submission, error)
	ListByUser(ctx context.Context, userID string) ([]model.Submission, error)
	// UpdateEvaluation overwrites all evaluation fields in one statement so a
	// record never mixes results from two judging runs.
	UpdateEvaluation(ctx context.Context, id string, res model.EvaluationResult) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (model.SubmissionStats, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	query := `INSERT INTO submissions (id, problem_id, user_id, language, source, stdin, verdict, time, memory, output, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ProblemID, s.UserID, s.Language, s.Source, s.Stdin,
		s.Verdict, s.Time, s.Memory, s.Output, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `
        SELECT s.id, s.problem_id, s.user_id, s.language, s.source, s.stdin,
               s.verdict, s.time, s.memory, s.output, s.created_at,
               p.title, u.username
        FROM submissions s
        LEFT JOIN problems p ON s.problem_id = p.id
        LEFT JOIN users u ON s.user_id = u.id
        WHERE s.id = $1`

	s := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.ProblemID, &s.UserID, &s.Language, &s.Source, &s.Stdin,
		&s.Verdict, &s.Time, &s.Memory, &s.Output, &s.CreatedAt,
		&s.ProblemTitle, &s.Username,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetByID: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) List(ctx context.Context) ([]model.Submission, error) {
	query := `
        SELECT s.id, s.problem_id, s.user_id, s.language, s.verdict,
               s.time, s.memory, s.created_at, p.title, u.username
        FROM submissions s
        LEFT JOIN problems p ON s.problem_id = p.id
        LEFT JOIN users u ON s.user_id = u.id
        ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.List: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.ProblemID, &s.UserID, &s.Language, &s.Verdict,
			&s.Time, &s.Memory, &s.CreatedAt, &s.ProblemTitle, &s.Username); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.List scan: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.List rows: %w", err)
	}
	return submissions, nil
}

func (r *pgSubmissionRepository) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	query := `
        SELECT s.id, s.problem_id, s.user_id, s.language, s.verdict,
               s.time, s.memory, s.created_at, p.title
        FROM user_submissions us
        JOIN submissions s ON us.submission_id = s.id
        LEFT JOIN problems p ON s.problem_id = p.id
        WHERE us.user_id = $1
        ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.ProblemID, &s.UserID, &s.Language, &s.Verdict,
			&s.Time, &s.Memory, &s.CreatedAt, &s.ProblemTitle); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByUser scan: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUser rows: %w", err)
	}
	return submissions, nil
}

func (r *pgSubmissionRepository) UpdateEvaluation(ctx context.Context, id string, res model.EvaluationResult) error {
	query := `UPDATE submissions
	          SET verdict = $1, time = $2, memory = $3, output = $4, stdin = $5
	          WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, res.Verdict, res.Time, res.Memory, res.Output, res.Stdin, id)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateEvaluation: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSubmissionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Delete: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSubmissionRepository) Stats(ctx context.Context) (model.SubmissionStats, error) {
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE verdict = 'Pending'),
               COUNT(*) FILTER (WHERE verdict = 'Accepted'),
               COUNT(*) FILTER (WHERE verdict = 'Wrong Answer'),
               COUNT(*) FILTER (WHERE verdict ILIKE '%error%')
        FROM submissions`

	var stats model.SubmissionStats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.Total, &stats.Pending, &stats.Accepted, &stats.Wrong, &stats.Errored)
	if err != nil {
		return stats, fmt.Errorf("pgSubmissionRepository.Stats: %w", err)
	}
	return stats, nil
}
