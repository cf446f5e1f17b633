package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codearena/internal/common"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Invalidator drops cached example blocks for a problem.
type Invalidator interface {
	Invalidate(ctx context.Context, problemID string)
}

type ProblemService struct {
	problemRepo repository.ProblemRepository
	invalidator Invalidator
}

func NewProblemService(problemRepo repository.ProblemRepository, invalidator Invalidator) *ProblemService {
	return &ProblemService{problemRepo: problemRepo, invalidator: invalidator}
}

type CreateProblemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Examples    []string `json:"examples"`
}

func (s *ProblemService) Create(ctx context.Context, req CreateProblemRequest) (*model.Problem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("problem title is required: %w", common.ErrBadRequest)
	}
	difficulty := model.ProblemDifficulty(req.Difficulty)
	switch difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return nil, fmt.Errorf("unknown difficulty %q: %w", req.Difficulty, common.ErrBadRequest)
	}

	now := time.Now().UTC()
	problem := &model.Problem{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Difficulty:  difficulty,
		Examples:    req.Examples,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.problemRepo.Create(ctx, problem); err != nil {
		return nil, fmt.Errorf("create problem: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, problem.ID)
	}
	return problem, nil
}

func (s *ProblemService) GetBySlug(ctx context.Context, problemSlug string) (*model.Problem, error) {
	return s.problemRepo.GetBySlug(ctx, problemSlug)
}
