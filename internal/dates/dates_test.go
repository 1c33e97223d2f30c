package dates

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "same day ignores time of day",
			from: time.Date(2026, 8, 20, 1, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 8, 20, 23, 59, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "forward across a month boundary",
			from: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
			want: 3,
		},
		{
			name: "negative when to precedes from",
			from: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			want: -5,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysBetween(tc.from, tc.to); got != tc.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestParseAndFormat(t *testing.T) {
	parsed, err := Parse("2026-08-20")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got := Format(parsed); got != "2026-08-20" {
		t.Errorf("Format() = %q, want %q", got, "2026-08-20")
	}

	if _, err := Parse("2025-13-40"); err == nil {
		t.Errorf("Parse() accepted an invalid calendar date")
	}
}

func TestMidnight(t *testing.T) {
	midnight := Midnight(time.Date(2026, 8, 20, 18, 45, 12, 99, time.FixedZone("X", 3600)))
	want := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	if !midnight.Equal(want) {
		t.Errorf("Midnight() = %v, want %v", midnight, want)
	}
}
