package judge

import (
	"strings"

	"codearena/internal/domain/model"
)

// Resolve turns a judging result and the expected sample output into a
// verdict label. Error statuses win outright and are kept verbatim, which
// covers compile errors, runtime errors and time-limit messages the service
// frames as errors. Comparison is strict byte equality on trimmed output;
// formatting-tolerant grading is deliberately out of scope.
func Resolve(res *Result, expectedOutput string) string {
	if strings.Contains(strings.ToLower(res.StatusDescription), "error") {
		return res.StatusDescription
	}
	if strings.TrimSpace(res.Stdout) == strings.TrimSpace(expectedOutput) {
		return model.VerdictAccepted
	}
	return model.VerdictWrongAnswer
}

// ResolveTrial produces the coarse verdict for ungraded trial runs.
func ResolveTrial(res *Result) string {
	if strings.Contains(strings.ToLower(res.StatusDescription), "error") {
		return res.StatusDescription
	}
	if strings.TrimSpace(res.Stdout) != "" {
		return "Output Generated"
	}
	if res.StatusDescription != "" {
		return res.StatusDescription
	}
	return "Unknown"
}
