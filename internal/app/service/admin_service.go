package service

import (
	"context"
	"fmt"

	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"
)

type AdminService struct {
	userRepo       repository.UserRepository
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*model.PlatformStats, error) {
	users, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	problems, err := s.problemRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	submissions, err := s.submissionRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &model.PlatformStats{
		Users:       users,
		Problems:    problems,
		Submissions: submissions,
	}, nil
}
