package grading

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	scorePrefix    = "Score:"
	feedbackPrefix = "Feedback:"
)

// ParseScoreFeedback extracts the numeric score and feedback text from a raw
// model response. The contract is two labelled lines: a line beginning with
// "Score:" followed by a later line beginning with "Feedback:"; everything
// from the feedback label onward (label stripped) is the feedback. Any
// deviation returns ErrMalformedResponse; no partial recovery is attempted.
func ParseScoreFeedback(raw string) (int, string, error) {
	lines := strings.Split(raw, "\n")

	scoreLine := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), scorePrefix) {
			scoreLine = i
			break
		}
	}
	if scoreLine == -1 {
		return 0, "", fmt.Errorf("%w: no %q line", ErrMalformedResponse, scorePrefix)
	}

	rest := strings.TrimSpace(strings.TrimSpace(lines[scoreLine])[len(scorePrefix):])
	score, err := parseLeadingInt(rest)
	if err != nil {
		return 0, "", fmt.Errorf("%w: score %q is not an integer", ErrMalformedResponse, rest)
	}

	feedbackLine := -1
	for i := scoreLine + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), feedbackPrefix) {
			feedbackLine = i
			break
		}
	}
	if feedbackLine == -1 {
		return 0, "", fmt.Errorf("%w: no %q line", ErrMalformedResponse, feedbackPrefix)
	}

	feedback := strings.Join(lines[feedbackLine:], "\n")
	feedback = strings.Replace(feedback, feedbackPrefix, "", 1)
	return score, strings.TrimSpace(feedback), nil
}

// parseLeadingInt reads the first integer token in s. Model responses often
// append units or markdown after the number ("85 points", "85/100").
func parseLeadingInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty score")
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("no digits")
	}

	return strconv.Atoi(s[:end])
}
