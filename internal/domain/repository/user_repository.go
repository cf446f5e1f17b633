package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codearena/internal/common"
	"codearena/internal/domain/model"
)

// ModerationUpdate carries the moderation attributes an admin may change.
// Nil fields are left untouched.
type ModerationUpdate struct {
	Flag          *bool
	AccountStatus *string
	Role          *string
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateModeration(ctx context.Context, id string, upd ModerationUpdate) (*model.User, error)
	AppendSubmission(ctx context.Context, userID, submissionID string) error
	RemoveSubmission(ctx context.Context, userID, submissionID string) error
	Stats(ctx context.Context) (model.UserStats, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, role, flag, account_status, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.Flag, &u.AccountStatus, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *pgUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.GetByID: %w", err)
	}
	return u, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.Flag, &u.AccountStatus, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.List rows: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) UpdateModeration(ctx context.Context, id string, upd ModerationUpdate) (*model.User, error) {
	query := `UPDATE users
	          SET flag = COALESCE($1, flag),
	              account_status = COALESCE($2, account_status),
	              role = COALESCE($3, role),
	              updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4
	          RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, upd.Flag, upd.AccountStatus, upd.Role, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.UpdateModeration: %w", err)
	}
	return u, nil
}

func (r *pgUserRepository) AppendSubmission(ctx context.Context, userID, submissionID string) error {
	query := `INSERT INTO user_submissions (user_id, submission_id, created_at)
	          VALUES ($1, $2, CURRENT_TIMESTAMP)
	          ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, submissionID); err != nil {
		return fmt.Errorf("pgUserRepository.AppendSubmission: %w", err)
	}
	return nil
}

func (r *pgUserRepository) RemoveSubmission(ctx context.Context, userID, submissionID string) error {
	query := `DELETE FROM user_submissions WHERE user_id = $1 AND submission_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, submissionID); err != nil {
		return fmt.Errorf("pgUserRepository.RemoveSubmission: %w", err)
	}
	return nil
}

func (r *pgUserRepository) Stats(ctx context.Context) (model.UserStats, error) {
	query := `
        SELECT COUNT(*) FILTER (WHERE role = 'user'),
               COUNT(*) FILTER (WHERE role = 'admin'),
               COUNT(*) FILTER (WHERE flag),
               COUNT(*) FILTER (WHERE account_status = 'inactive')
        FROM users`

	var stats model.UserStats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.UserTotal, &stats.AdminTotal, &stats.Flagged, &stats.Inactive)
	if err != nil {
		return stats, fmt.Errorf("pgUserRepository.Stats: %w", err)
	}
	return stats, nil
}
