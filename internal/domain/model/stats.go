package model

// PlatformStats aggregates moderation-facing counts for the admin dashboard.
type PlatformStats struct {
	Users       UserStats       `json:"users"`
	Problems    ProblemStats    `json:"problems"`
	Submissions SubmissionStats `json:"submissions"`
}

type UserStats struct {
	UserTotal  int `json:"userTotal"`
	AdminTotal int `json:"adminTotal"`
	Flagged    int `json:"flagged"`
	Inactive   int `json:"inactive"`
}

type ProblemStats struct {
	Total int `json:"total"`
}

type SubmissionStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Wrong    int `json:"wrong"`
	Errored  int `json:"errored"`
}
