package model

import "time"

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"
)

type Problem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Difficulty  ProblemDifficulty `json:"difficulty"`

	// Examples holds ordered free-form text blocks, each expected to contain
	// "Input:" and "Output:" sections (optionally "Explanation:").
	Examples []string `json:"examples,omitempty"`

	// Submissions counts graded submissions; incremented on create,
	// decremented on delete.
	Submissions int       `json:"submissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
