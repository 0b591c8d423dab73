package dates

import (
	"testing"
	"time"
)

func TestAddMonths_TableTests(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			name:   "plain month in the middle of the year",
			start:  time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2024, 4, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:   "jan 31 clamps to leap february",
			start:  time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "jan 31 clamps to non-leap february",
			start:  time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "jan 31 plus three months clamps to april 30",
			start:  time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months: 3,
			want:   time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "december rolls over the year",
			start:  time.Date(2024, 12, 10, 8, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			name:   "twelve months keeps the day",
			start:  time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			months: 12,
			want:   time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "zero months is identity",
			start:  time.Date(2024, 7, 31, 23, 59, 59, 0, time.UTC),
			months: 0,
			want:   time.Date(2024, 7, 31, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.start, tt.months)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

func TestTruncateToDate(t *testing.T) {
	ts := time.Date(2024, 4, 30, 18, 45, 12, 0, time.UTC)
	if got := TruncateToDate(ts); got != "2024-04-30" {
		t.Errorf("TruncateToDate(%v) = %q, want %q", ts, got, "2024-04-30")
	}
}

func TestFormatHuman(t *testing.T) {
	ts := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if got := FormatHuman(ts); got != "31 Jan 2024" {
		t.Errorf("FormatHuman(%v) = %q, want %q", ts, got, "31 Jan 2024")
	}
}
