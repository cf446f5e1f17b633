package judge

import (
	"regexp"
	"strings"

	"codearena/internal/common"
)

// Example text blocks are authored free-form but must carry an "Input:"
// section followed by an "Output:" section, optionally followed by an
// "Explanation:" section:
//
//	Input:
//	3 4
//	Output:
//	7
var (
	inputRe  = regexp.MustCompile(`(?is)Input:\s*(.*?)\nOutput:`)
	outputRe = regexp.MustCompile(`(?is)Output:\s*(.*?)(\nExplanation:|$)`)
)

// ParseExample extracts the sample input/output pair from one example block.
// Both captures are trimmed; an empty capture is valid (an empty expected
// output is still a definitive string to grade against).
func ParseExample(text string) (sampleInput, sampleOutput string, err error) {
	inputMatch := inputRe.FindStringSubmatch(text)
	outputMatch := outputRe.FindStringSubmatch(text)
	if inputMatch == nil || outputMatch == nil {
		return "", "", common.ErrInvalidExampleFormat
	}
	return strings.TrimSpace(inputMatch[1]), strings.TrimSpace(outputMatch[1]), nil
}
