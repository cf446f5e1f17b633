package service

import (
	"context"
	"errors"
	"testing"

	"codearena/internal/common"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"
	"codearena/internal/judge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users     map[string]*model.User
	appended  [][2]string
	removed   [][2]string
	appendErr error
	removeErr error
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]model.User, error) { return nil, nil }

func (r *fakeUserRepo) UpdateModeration(ctx context.Context, id string, upd repository.ModerationUpdate) (*model.User, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) AppendSubmission(ctx context.Context, userID, submissionID string) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.appended = append(r.appended, [2]string{userID, submissionID})
	return nil
}

func (r *fakeUserRepo) RemoveSubmission(ctx context.Context, userID, submissionID string) error {
	if r.removeErr != nil {
		return r.removeErr
	}
	r.removed = append(r.removed, [2]string{userID, submissionID})
	return nil
}

func (r *fakeUserRepo) Stats(ctx context.Context) (model.UserStats, error) {
	return model.UserStats{}, nil
}

type fakeProblemRepo struct {
	examples   map[string][]string
	increments map[string]int
	incErr     error
}

func (r *fakeProblemRepo) Create(ctx context.Context, p *model.Problem) error { return nil }

func (r *fakeProblemRepo) GetBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	return nil, common.ErrNotFound
}

func (r *fakeProblemRepo) GetExamples(ctx context.Context, problemID string) ([]string, error) {
	examples, ok := r.examples[problemID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return examples, nil
}

func (r *fakeProblemRepo) IncrementSubmissions(ctx context.Context, problemID string, delta int) error {
	if r.incErr != nil {
		return r.incErr
	}
	if r.increments == nil {
		r.increments = map[string]int{}
	}
	r.increments[problemID] += delta
	return nil
}

func (r *fakeProblemRepo) Stats(ctx context.Context) (model.ProblemStats, error) {
	return model.ProblemStats{}, nil
}

type fakeSubmissionRepo struct {
	store       map[string]*model.Submission
	updates     []model.EvaluationResult
	createCalls int
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, s *model.Submission) error {
	if r.store == nil {
		r.store = map[string]*model.Submission{}
	}
	cp := *s
	r.store[s.ID] = &cp
	r.createCalls++
	return nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	s, ok := r.store[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) List(ctx context.Context) ([]model.Submission, error) { return nil, nil }

func (r *fakeSubmissionRepo) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	return nil, nil
}

func (r *fakeSubmissionRepo) UpdateEvaluation(ctx context.Context, id string, res model.EvaluationResult) error {
	s, ok := r.store[id]
	if !ok {
		return common.ErrNotFound
	}
	s.Verdict = res.Verdict
	s.Time = res.Time
	s.Memory = res.Memory
	s.Output = res.Output
	s.Stdin = res.Stdin
	r.updates = append(r.updates, res)
	return nil
}

func (r *fakeSubmissionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.store[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *fakeSubmissionRepo) Stats(ctx context.Context) (model.SubmissionStats, error) {
	return model.SubmissionStats{}, nil
}

type fakeExecutor struct {
	result *judge.Result
	err    error
	calls  []struct {
		LanguageID int
		Source     string
		Stdin      string
	}
}

func (e *fakeExecutor) Execute(ctx context.Context, languageID int, source, stdin string) (*judge.Result, error) {
	e.calls = append(e.calls, struct {
		LanguageID int
		Source     string
		Stdin      string
	}{languageID, source, stdin})
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func floatPtr(f float64) *float64 { return &f }

func activeUser(id string) *model.User {
	return &model.User{ID: id, Role: model.RoleUser, AccountStatus: model.AccountActive}
}

const sampleExample = "Input:\n3 4\nOutput:\n7"

func newTestService(users *fakeUserRepo, problems *fakeProblemRepo, subs *fakeSubmissionRepo, exec *fakeExecutor) *SubmissionService {
	return NewSubmissionService(subs, problems, users, exec, nil, zap.NewNop())
}

func TestSubmitAccepted(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {sampleExample}}}
	subs := &fakeSubmissionRepo{}
	exec := &fakeExecutor{result: &judge.Result{
		Stdout:            "7\n",
		StatusDescription: "Accepted",
		TimeSec:           floatPtr(0.002),
		MemoryKB:          floatPtr(3456),
	}}
	svc := newTestService(users, problems, subs, exec)

	submission, err := svc.Submit(context.Background(), "u1", SubmitRequest{
		ProblemID: "p1",
		Language:  "python3",
		Source:    "print(sum(map(int, input().split())))",
	})
	require.NoError(t, err)

	assert.Equal(t, model.VerdictAccepted, submission.Verdict)
	assert.Equal(t, "3 4", submission.Stdin)
	assert.Equal(t, "2", submission.Time)
	assert.Equal(t, "3456", submission.Memory)
	assert.Equal(t, "7\n", submission.Output)

	// Grading always uses the problem's sample input, never caller input.
	require.Len(t, exec.calls, 1)
	assert.Equal(t, 71, exec.calls[0].LanguageID)
	assert.Equal(t, "3 4", exec.calls[0].Stdin)

	assert.Equal(t, 1, subs.createCalls)
	assert.Equal(t, [][2]string{{"u1", submission.ID}}, users.appended)
	assert.Equal(t, 1, problems.increments["p1"])
}

func TestSubmitWrongAnswer(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {sampleExample}}}
	subs := &fakeSubmissionRepo{}
	exec := &fakeExecutor{result: &judge.Result{Stdout: "8", StatusDescription: "Accepted"}}
	svc := newTestService(users, problems, subs, exec)

	submission, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "go", Source: "x"})
	require.NoError(t, err)
	assert.Equal(t, model.VerdictWrongAnswer, submission.Verdict)
	assert.Equal(t, model.MetricUnknown, submission.Time)
	assert.Equal(t, model.MetricUnknown, submission.Memory)
}

func TestSubmitErrorStatusKeptVerbatim(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {sampleExample}}}
	subs := &fakeSubmissionRepo{}
	exec := &fakeExecutor{result: &judge.Result{
		Stdout:            "7\n",
		Stderr:            "segfault",
		StatusDescription: "Runtime Error (NZEC)",
	}}
	svc := newTestService(users, problems, subs, exec)

	submission, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "c", Source: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Runtime Error (NZEC)", submission.Verdict)
}

func TestSubmitFlaggedUser(t *testing.T) {
	flagged := activeUser("u1")
	flagged.Flag = true
	users := &fakeUserRepo{users: map[string]*model.User{"u1": flagged}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {sampleExample}}}
	subs := &fakeSubmissionRepo{}
	exec := &fakeExecutor{}
	svc := newTestService(users, problems, subs, exec)

	_, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "go", Source: "x"})
	assert.ErrorIs(t, err, common.ErrAccountRestricted)
	assert.Empty(t, exec.calls)
	assert.Zero(t, subs.createCalls)
}

func TestSubmitInactiveUser(t *testing.T) {
	inactive := activeUser("u1")
	inactive.AccountStatus = model.AccountInactive
	users := &fakeUserRepo{users: map[string]*model.User{"u1": inactive}}
	svc := newTestService(users, &fakeProblemRepo{}, &fakeSubmissionRepo{}, &fakeExecutor{})

	_, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "go", Source: "x"})
	assert.ErrorIs(t, err, common.ErrAccountRestricted)
}

func TestSubmitUnknownUser(t *testing.T) {
	svc := newTestService(&fakeUserRepo{}, &fakeProblemRepo{}, &fakeSubmissionRepo{}, &fakeExecutor{})

	_, err := svc.Submit(context.Background(), "ghost", SubmitRequest{ProblemID: "p1", Language: "go", Source: "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmitExamplesMissing(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{examples: map[string][]string{"empty": {}}}
	exec := &fakeExecutor{}
	svc := newTestService(users, problems, &fakeSubmissionRepo{}, exec)

	_, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "absent", Language: "go", Source: "x"})
	assert.ErrorIs(t, err, common.ErrExamplesMissing)

	_, err = svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "empty", Language: "go", Source: "x"})
	assert.ErrorIs(t, err, common.ErrExamplesMissing)
	assert.Empty(t, exec.calls)
}

func TestSubmitInvalidExampleFormat(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {"no markers here"}}}
	exec := &fakeExecutor{}
	svc := newTestService(users, problems, &fakeSubmissionRepo{}, exec)

	_, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "go", Source: "x"})
	assert.ErrorIs(t, err, common.ErrInvalidExampleFormat)
	assert.Empty(t, exec.calls)
}

func TestSubmitUnsupportedLanguage(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {sampleExample}}}
	exec := &fakeExecutor{}
	svc := newTestService(users, problems, &fakeSubmissionRepo{}, exec)

	_, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "brainfuck", Source: "x"})
	assert.ErrorIs(t, err, common.ErrUnsupportedLanguage)
	assert.Empty(t, exec.calls)
}

func TestSubmitJudgeUnavailable(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {sampleExample}}}
	subs := &fakeSubmissionRepo{}
	exec := &fakeExecutor{err: common.ErrJudgeUnavailable}
	svc := newTestService(users, problems, subs, exec)

	_, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "go", Source: "x"})
	assert.ErrorIs(t, err, common.ErrJudgeUnavailable)
	// No partial record on judging failure.
	assert.Zero(t, subs.createCalls)
	assert.Empty(t, users.appended)
	assert.Empty(t, problems.increments)
}

func TestSubmitFollowUpWriteFailuresDoNotFailSubmit(t *testing.T) {
	users := &fakeUserRepo{
		users:     map[string]*model.User{"u1": activeUser("u1")},
		appendErr: errors.New("user store down"),
	}
	problems := &fakeProblemRepo{
		examples: map[string][]string{"p1": {sampleExample}},
		incErr:   errors.New("problem store down"),
	}
	subs := &fakeSubmissionRepo{}
	exec := &fakeExecutor{result: &judge.Result{Stdout: "7", StatusDescription: "Accepted"}}
	svc := newTestService(users, problems, subs, exec)

	submission, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "go", Source: "x"})
	require.NoError(t, err)
	assert.Equal(t, model.VerdictAccepted, submission.Verdict)
	assert.Equal(t, 1, subs.createCalls)
}

func TestRejudgeOverwritesAllEvaluationFields(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {sampleExample}}}
	subs := &fakeSubmissionRepo{store: map[string]*model.Submission{
		"s1": {
			ID: "s1", ProblemID: "p1", UserID: "u1", Language: "python3", Source: "print(7)",
			Verdict: model.VerdictWrongAnswer, Time: "5", Memory: "100", Output: "8", Stdin: "old",
		},
	}}
	exec := &fakeExecutor{result: &judge.Result{
		Stdout:            "7",
		StatusDescription: "Accepted",
		TimeSec:           floatPtr(0.001),
		MemoryKB:          floatPtr(2048),
	}}
	svc := newTestService(users, problems, subs, exec)

	submission, err := svc.Rejudge(context.Background(), "s1")
	require.NoError(t, err)

	require.Len(t, subs.updates, 1)
	assert.Equal(t, model.EvaluationResult{
		Verdict: model.VerdictAccepted,
		Time:    "1",
		Memory:  "2048",
		Output:  "7",
		Stdin:   "3 4",
	}, subs.updates[0])

	assert.Equal(t, model.VerdictAccepted, submission.Verdict)
	assert.Equal(t, "1", submission.Time)
	assert.Equal(t, "2048", submission.Memory)
	assert.Equal(t, "3 4", submission.Stdin)

	// Rejudge never touches counters.
	assert.Empty(t, problems.increments)
	assert.Empty(t, users.appended)
}

func TestRejudgeNotFound(t *testing.T) {
	svc := newTestService(&fakeUserRepo{}, &fakeProblemRepo{}, &fakeSubmissionRepo{}, &fakeExecutor{})

	_, err := svc.Rejudge(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRejudgeJudgeFailureLeavesRecordUntouched(t *testing.T) {
	subs := &fakeSubmissionRepo{store: map[string]*model.Submission{
		"s1": {ID: "s1", ProblemID: "p1", UserID: "u1", Language: "go", Source: "x", Verdict: model.VerdictAccepted},
	}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {sampleExample}}}
	exec := &fakeExecutor{err: common.ErrJudgeUnavailable}
	svc := newTestService(&fakeUserRepo{}, problems, subs, exec)

	_, err := svc.Rejudge(context.Background(), "s1")
	assert.ErrorIs(t, err, common.ErrJudgeUnavailable)
	assert.Empty(t, subs.updates)
	assert.Equal(t, model.VerdictAccepted, subs.store["s1"].Verdict)
}

func TestDelete(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{}
	subs := &fakeSubmissionRepo{store: map[string]*model.Submission{
		"s1": {ID: "s1", ProblemID: "p1", UserID: "u1"},
	}}
	svc := newTestService(users, problems, subs, &fakeExecutor{})

	require.NoError(t, svc.Delete(context.Background(), "s1"))

	_, err := subs.GetByID(context.Background(), "s1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, [][2]string{{"u1", "s1"}}, users.removed)
	assert.Equal(t, -1, problems.increments["p1"])
}

func TestDeleteNotFound(t *testing.T) {
	svc := newTestService(&fakeUserRepo{}, &fakeProblemRepo{}, &fakeSubmissionRepo{}, &fakeExecutor{})
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), common.ErrNotFound)
}

func TestDeleteBestEffortOnFollowUpFailure(t *testing.T) {
	users := &fakeUserRepo{
		users:     map[string]*model.User{"u1": activeUser("u1")},
		removeErr: errors.New("user store down"),
	}
	problems := &fakeProblemRepo{incErr: errors.New("problem store down")}
	subs := &fakeSubmissionRepo{store: map[string]*model.Submission{
		"s1": {ID: "s1", ProblemID: "p1", UserID: "u1"},
	}}
	svc := newTestService(users, problems, subs, &fakeExecutor{})

	// The primary delete wins even when follow-up writes fail.
	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.Empty(t, subs.store)
}

func TestTrialRun(t *testing.T) {
	subs := &fakeSubmissionRepo{}
	problems := &fakeProblemRepo{}
	exec := &fakeExecutor{result: &judge.Result{
		Stdout:            "hello\n",
		StatusDescription: "Accepted",
		TimeSec:           floatPtr(0.01),
	}}
	svc := newTestService(&fakeUserRepo{}, problems, subs, exec)

	result, err := svc.TrialRun(context.Background(), TrialRunRequest{
		Language: "python3",
		Source:   "print(input())",
		Stdin:    "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "Output Generated", result.Verdict)
	assert.Equal(t, "hello\n", result.Stdout)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, "hello", exec.calls[0].Stdin)

	// Trial runs persist nothing and touch no counters.
	assert.Zero(t, subs.createCalls)
	assert.Empty(t, problems.increments)
}

func TestTrialRunUnsupportedLanguage(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newTestService(&fakeUserRepo{}, &fakeProblemRepo{}, &fakeSubmissionRepo{}, exec)

	_, err := svc.TrialRun(context.Background(), TrialRunRequest{Language: "cobol", Source: "x"})
	assert.ErrorIs(t, err, common.ErrUnsupportedLanguage)
	assert.Empty(t, exec.calls)
}

type fakeExampleCache struct {
	entries map[string][]string
	sets    int
}

func (c *fakeExampleCache) Get(ctx context.Context, problemID string) ([]string, bool) {
	examples, ok := c.entries[problemID]
	return examples, ok
}

func (c *fakeExampleCache) Set(ctx context.Context, problemID string, examples []string) {
	if c.entries == nil {
		c.entries = map[string][]string{}
	}
	c.entries[problemID] = examples
	c.sets++
}

func TestSubmitUsesExampleCache(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	// Problem store knows nothing; only the cache holds the examples.
	problems := &fakeProblemRepo{}
	exampleCache := &fakeExampleCache{entries: map[string][]string{"p1": {sampleExample}}}
	exec := &fakeExecutor{result: &judge.Result{Stdout: "7", StatusDescription: "Accepted"}}
	svc := NewSubmissionService(&fakeSubmissionRepo{}, problems, users, exec, exampleCache, zap.NewNop())

	submission, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "go", Source: "x"})
	require.NoError(t, err)
	assert.Equal(t, model.VerdictAccepted, submission.Verdict)
	assert.Zero(t, exampleCache.sets)
}

func TestSubmitFillsExampleCacheOnMiss(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*model.User{"u1": activeUser("u1")}}
	problems := &fakeProblemRepo{examples: map[string][]string{"p1": {sampleExample}}}
	exampleCache := &fakeExampleCache{}
	exec := &fakeExecutor{result: &judge.Result{Stdout: "7", StatusDescription: "Accepted"}}
	svc := NewSubmissionService(&fakeSubmissionRepo{}, problems, users, exec, exampleCache, zap.NewNop())

	_, err := svc.Submit(context.Background(), "u1", SubmitRequest{ProblemID: "p1", Language: "go", Source: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{sampleExample}, exampleCache.entries["p1"])
}
