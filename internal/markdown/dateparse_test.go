package markdown

import (
	"testing"
	"time"
)

func TestParseFlexibleDateShorthand(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		value string
		want  time.Time
	}{
		{"7d", now.AddDate(0, 0, -7)},
		{"2w", now.AddDate(0, 0, -14)},
		{"3m", now.AddDate(0, -3, 0)},
		{"1y", now.AddDate(-1, 0, 0)},
	}

	for _, c := range cases {
		got, err := ParseFlexibleDate(c.value, now)
		if err != nil {
			t.Fatalf("ParseFlexibleDate(%q): %v", c.value, err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("ParseFlexibleDate(%q) = %v, want %v", c.value, got, c.want)
		}
	}
}

func TestParseFlexibleDateRelativeNaturalLanguage(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	got, err := ParseFlexibleDate("yesterday", now)
	if err != nil {
		t.Fatalf("ParseFlexibleDate: %v", err)
	}
	if got.Year() != 2024 || got.Month() != 6 || got.Day() != 14 {
		t.Fatalf("got = %v", got)
	}
}

func TestParseFlexibleDateAbsolute(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	got, err := ParseFlexibleDate("2024-01-15", now)
	if err != nil {
		t.Fatalf("ParseFlexibleDate: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.January || got.Day() != 15 {
		t.Fatalf("got = %v", got)
	}
}

func TestParseFlexibleDateRejectsGarbage(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	if _, err := ParseFlexibleDate("not a date at all !!", now); err == nil {
		t.Fatal("expected an error for unparseable input")
	}
}

func TestParseFlexibleDateRejectsEmpty(t *testing.T) {
	if _, err := ParseFlexibleDate("", time.Now()); err == nil {
		t.Fatal("expected an error for empty input")
	}
}
