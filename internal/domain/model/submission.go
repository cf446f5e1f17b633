package model

import "time"

const (
	// VerdictPending is the verdict a submission carries until exactly one
	// judging call has completed for it.
	VerdictPending     = "Pending"
	VerdictAccepted    = "Accepted"
	VerdictWrongAnswer = "Wrong Answer"

	// MetricUnknown is stored for time/memory when the judge reported none.
	MetricUnknown = "—"
)

type Submission struct {
	ID        string    `json:"id"`
	ProblemID string    `json:"problem_id"`
	UserID    string    `json:"user_id"`
	Language  string    `json:"language"`
	Source    string    `json:"source"`
	Stdin     string    `json:"stdin"`
	Verdict   string    `json:"verdict"`
	Time      string    `json:"time"`
	Memory    string    `json:"memory"`
	Output    string    `json:"output"`
	CreatedAt time.Time `json:"created_at"`

	// Joined for display in listings.
	ProblemTitle *string `json:"problem_title,omitempty"`
	Username     *string `json:"username,omitempty"`
}

// EvaluationResult is the set of submission fields one judging run produces.
// Rejudge overwrites them together, never partially.
type EvaluationResult struct {
	Verdict string
	Time    string
	Memory  string
	Output  string
	Stdin   string
}
