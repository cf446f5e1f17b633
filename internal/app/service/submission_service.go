package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codearena/internal/common"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"
	"codearena/internal/judge"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Executor is the external judging service as the pipeline sees it.
type Executor interface {
	Execute(ctx context.Context, languageID int, source, stdin string) (*judge.Result, error)
}

// ExampleCache is a read-through cache for a problem's example blocks.
// Misses and failures fall through to the problem store.
type ExampleCache interface {
	Get(ctx context.Context, problemID string) ([]string, bool)
	Set(ctx context.Context, problemID string, examples []string)
}

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	userRepo       repository.UserRepository
	executor       Executor
	examples       ExampleCache
	logger         *zap.Logger
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	userRepo repository.UserRepository,
	executor Executor,
	examples ExampleCache,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		userRepo:       userRepo,
		executor:       executor,
		examples:       examples,
		logger:         logger,
	}
}

type SubmitRequest struct {
	ProblemID string `json:"problem_id"`
	Language  string `json:"language"`
	Source    string `json:"source"`
}

// Submit grades source code against the problem's first example and persists
// the outcome. Grading always uses the sample input as stdin; user-supplied
// input is served by TrialRun only. After a successful judging call the
// submission row, the user's submission list and the problem counter are
// each written independently: a failed follow-up write is logged, not rolled
// back, so a graded result is never discarded over a counter.
func (s *SubmissionService) Submit(ctx context.Context, userID string, req SubmitRequest) (*model.Submission, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("submit: fetch user: %w", err)
	}
	if !user.CanSubmit() {
		return nil, common.ErrAccountRestricted
	}

	sampleInput, sampleOutput, err := s.sampleForProblem(ctx, req.ProblemID)
	if err != nil {
		return nil, err
	}

	languageID, ok := model.LanguageID(req.Language)
	if !ok {
		return nil, common.ErrUnsupportedLanguage
	}

	res, err := s.executor.Execute(ctx, languageID, req.Source, sampleInput)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	submission := &model.Submission{
		ID:        uuid.NewString(),
		ProblemID: req.ProblemID,
		UserID:    userID,
		Language:  req.Language,
		Source:    req.Source,
		Stdin:     sampleInput,
		Verdict:   judge.Resolve(res, sampleOutput),
		Time:      res.TimeMillis(),
		Memory:    res.MemoryString(),
		Output:    res.Output(),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("submit: persist submission: %w", err)
	}

	if err := s.userRepo.AppendSubmission(ctx, userID, submission.ID); err != nil {
		s.logger.Warn("submission list append failed, counters may drift",
			zap.String("submission_id", submission.ID),
			zap.String("user_id", userID),
			zap.Error(err))
	}
	if err := s.problemRepo.IncrementSubmissions(ctx, req.ProblemID, 1); err != nil {
		s.logger.Warn("problem counter increment failed, counters may drift",
			zap.String("submission_id", submission.ID),
			zap.String("problem_id", req.ProblemID),
			zap.Error(err))
	}

	return submission, nil
}

// Rejudge re-runs an existing submission with its stored source and language
// and overwrites all evaluation fields as one record update. Counters are
// untouched; the submission was counted at creation. The verdict never
// reverts to Pending.
func (s *SubmissionService) Rejudge(ctx context.Context, submissionID string) (*model.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("rejudge: fetch submission: %w", err)
	}

	sampleInput, sampleOutput, err := s.sampleForProblem(ctx, submission.ProblemID)
	if err != nil {
		return nil, err
	}

	languageID, ok := model.LanguageID(submission.Language)
	if !ok {
		return nil, common.ErrUnsupportedLanguage
	}

	res, err := s.executor.Execute(ctx, languageID, submission.Source, sampleInput)
	if err != nil {
		return nil, fmt.Errorf("rejudge: %w", err)
	}

	eval := model.EvaluationResult{
		Verdict: judge.Resolve(res, sampleOutput),
		Time:    res.TimeMillis(),
		Memory:  res.MemoryString(),
		Output:  res.Output(),
		Stdin:   sampleInput,
	}
	if err := s.submissionRepo.UpdateEvaluation(ctx, submissionID, eval); err != nil {
		return nil, fmt.Errorf("rejudge: persist result: %w", err)
	}

	submission.Verdict = eval.Verdict
	submission.Time = eval.Time
	submission.Memory = eval.Memory
	submission.Output = eval.Output
	submission.Stdin = eval.Stdin
	return submission, nil
}

// Delete removes a submission, then best-effort detaches it from the owning
// user's list and decrements the problem counter.
func (s *SubmissionService) Delete(ctx context.Context, submissionID string) error {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("delete submission: fetch: %w", err)
	}

	if err := s.submissionRepo.Delete(ctx, submissionID); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}

	if err := s.userRepo.RemoveSubmission(ctx, submission.UserID, submissionID); err != nil {
		s.logger.Warn("submission list removal failed, counters may drift",
			zap.String("submission_id", submissionID),
			zap.String("user_id", submission.UserID),
			zap.Error(err))
	}
	if err := s.problemRepo.IncrementSubmissions(ctx, submission.ProblemID, -1); err != nil {
		s.logger.Warn("problem counter decrement failed, counters may drift",
			zap.String("submission_id", submissionID),
			zap.String("problem_id", submission.ProblemID),
			zap.Error(err))
	}
	return nil
}

type TrialRunRequest struct {
	Language string `json:"language"`
	Source   string `json:"source"`
	Stdin    string `json:"stdin"`
}

type TrialRunResult struct {
	Stdout  string   `json:"stdout"`
	Stderr  string   `json:"stderr"`
	Status  string   `json:"status"`
	Verdict string   `json:"verdict"`
	Time    *float64 `json:"time"`
	Memory  *float64 `json:"memory"`
}

// TrialRun executes code against caller-supplied input without persisting
// anything. The sample is the fixed grading oracle; this is the only path
// where custom stdin reaches the judging service.
func (s *SubmissionService) TrialRun(ctx context.Context, req TrialRunRequest) (*TrialRunResult, error) {
	languageID, ok := model.LanguageID(req.Language)
	if !ok {
		return nil, common.ErrUnsupportedLanguage
	}

	res, err := s.executor.Execute(ctx, languageID, req.Source, req.Stdin)
	if err != nil {
		return nil, fmt.Errorf("trial run: %w", err)
	}

	return &TrialRunResult{
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
		Status:  res.StatusDescription,
		Verdict: judge.ResolveTrial(res),
		Time:    res.TimeSec,
		Memory:  res.MemoryKB,
	}, nil
}

func (s *SubmissionService) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	return s.submissionRepo.GetByID(ctx, id)
}

func (s *SubmissionService) List(ctx context.Context) ([]model.Submission, error) {
	return s.submissionRepo.List(ctx)
}

func (s *SubmissionService) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	return s.submissionRepo.ListByUser(ctx, userID)
}

// sampleForProblem loads the problem's example blocks (through the cache
// when available) and parses the first into the sample input/output pair.
// Grading uses only the first example; later blocks are authoring material.
func (s *SubmissionService) sampleForProblem(ctx context.Context, problemID string) (string, string, error) {
	var examples []string
	cached := false
	if s.examples != nil {
		examples, cached = s.examples.Get(ctx, problemID)
	}
	if !cached {
		var err error
		examples, err = s.problemRepo.GetExamples(ctx, problemID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return "", "", common.ErrExamplesMissing
			}
			return "", "", fmt.Errorf("fetch examples: %w", err)
		}
		if s.examples != nil && len(examples) > 0 {
			s.examples.Set(ctx, problemID, examples)
		}
	}
	if len(examples) == 0 {
		return "", "", common.ErrExamplesMissing
	}
	return judge.ParseExample(examples[0])
}
