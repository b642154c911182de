package services

import (
	"fmt"
	"regexp"
	"strconv"
)

var scorePattern = regexp.MustCompile(`^\s*(\d+)\s*:\s*(\d+)\s*$`)

// ParseScore reads "X:Y" where both sides are non-negative integers.
func ParseScore(text string) (home, away int, err error) {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidScoreFormat, text)
	}
	home, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidScoreFormat, text)
	}
	away, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidScoreFormat, text)
	}
	return home, away, nil
}
