package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	naturaldate "github.com/tj/go-naturaldate"
)

// shorthandPattern matches duration-style timeframe shorthand such as "7d",
// "2w", "3m", "1y".
var shorthandPattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParseFlexibleDate parses a frontmatter date value or a context-builder
// timeframe string against exactly three grammars, tried in order:
//
//  1. Duration shorthand: an integer followed by d(ays)/w(eeks)/m(onths)/
//     y(ears), interpreted relative to now.
//  2. Relative natural language: "yesterday", "2 days ago", "3 weeks ago".
//  3. Absolute dates: RFC3339, "2024-01-15", "Jan 15, 2024", and the other
//     layouts dateparse recognises.
//
// No other forms are accepted; callers should surface the returned error to
// the user rather than guessing further.
func ParseFlexibleDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("dateparse: empty value")
	}

	if m := shorthandPattern.FindStringSubmatch(value); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("dateparse: invalid shorthand %q: %w", value, err)
		}
		switch m[2] {
		case "d":
			return now.AddDate(0, 0, -n), nil
		case "w":
			return now.AddDate(0, 0, -7*n), nil
		case "m":
			return now.AddDate(0, -n, 0), nil
		case "y":
			return now.AddDate(-n, 0, 0), nil
		}
	}

	if t, err := naturaldate.Parse(value, now); err == nil {
		return t, nil
	}

	if t, err := dateparse.ParseIn(value, now.Location()); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("dateparse: unrecognised date/timeframe %q", value)
}
