package progression

import (
	"testing"
	"time"

	"habitQuestAPI/internal/habit"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestSamePeriodDaily(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"same date", d(2024, 5, 15), d(2024, 5, 15), true},
		{"next day", d(2024, 5, 15), d(2024, 5, 16), false},
		{"same date different time of day", time.Date(2024, 5, 15, 23, 59, 0, 0, time.UTC), time.Date(2024, 5, 15, 0, 1, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		if got := SamePeriod(habit.CadenceDaily, tt.a, tt.b); got != tt.want {
			t.Errorf("%s: SamePeriod(DAILY, %v, %v) = %v, want %v", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSamePeriodWeekly(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"monday and sunday of one ISO week", d(2024, 1, 1), d(2024, 1, 7), true},
		{"sunday and following monday", d(2024, 1, 7), d(2024, 1, 8), false},
		{"same week across calendar years", d(2020, 12, 31), d(2021, 1, 1), true}, // both week 53 of 2020
		{"week 53 vs week 1 of next year", d(2021, 1, 1), d(2021, 1, 4), false},
		{"same week number different years", d(2023, 3, 8), d(2024, 3, 6), false}, // both week 10
	}

	for _, tt := range tests {
		if got := SamePeriod(habit.CadenceWeekly, tt.a, tt.b); got != tt.want {
			t.Errorf("%s: SamePeriod(WEEKLY, %v, %v) = %v, want %v", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsConsecutivePeriodDaily(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr time.Time
		want       bool
	}{
		{"next day", d(2024, 5, 15), d(2024, 5, 16), true},
		{"same day", d(2024, 5, 15), d(2024, 5, 15), false},
		{"two days later", d(2024, 5, 15), d(2024, 5, 17), false},
		{"day before", d(2024, 5, 16), d(2024, 5, 15), false},
		{"across month boundary", d(2024, 4, 30), d(2024, 5, 1), true},
		{"leap day into march", d(2024, 2, 29), d(2024, 3, 1), true},
		{"across year boundary", d(2023, 12, 31), d(2024, 1, 1), true},
	}

	for _, tt := range tests {
		if got := IsConsecutivePeriod(habit.CadenceDaily, tt.prev, tt.curr); got != tt.want {
			t.Errorf("%s: IsConsecutivePeriod(DAILY, %v, %v) = %v, want %v", tt.name, tt.prev, tt.curr, got, tt.want)
		}
	}
}

func TestIsConsecutivePeriodWeekly(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr time.Time
		want       bool
	}{
		{"adjacent weeks same year", d(2024, 3, 4), d(2024, 3, 11), true},
		{"same week", d(2024, 3, 4), d(2024, 3, 8), false},
		{"two weeks apart", d(2024, 3, 4), d(2024, 3, 18), false},
		{"week 52 into week 1", d(2023, 12, 27), d(2024, 1, 1), true},
		{"week 53 into week 1", d(2020, 12, 30), d(2021, 1, 4), true},
		{"jan 1 in week 53 into week 1", d(2021, 1, 1), d(2021, 1, 4), true},
		{"week 51 into week 1", d(2023, 12, 20), d(2024, 1, 1), false},
		{"week 52 into dec date already in week 1", d(2019, 12, 23), d(2019, 12, 30), true}, // 2019-12-30 is week 1 of 2020
		{"reversed order", d(2024, 3, 11), d(2024, 3, 4), false},
	}

	for _, tt := range tests {
		if got := IsConsecutivePeriod(habit.CadenceWeekly, tt.prev, tt.curr); got != tt.want {
			t.Errorf("%s: IsConsecutivePeriod(WEEKLY, %v, %v) = %v, want %v", tt.name, tt.prev, tt.curr, got, tt.want)
		}
	}
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{"wednesday", d(2024, 5, 15), d(2024, 5, 13)},
		{"monday is its own start", d(2024, 5, 13), d(2024, 5, 13)},
		{"sunday", d(2024, 5, 19), d(2024, 5, 13)},
		{"friday across year boundary", d(2021, 1, 1), d(2020, 12, 28)},
	}

	for _, tt := range tests {
		if got := StartOfWeek(tt.date); !got.Equal(tt.want) {
			t.Errorf("%s: StartOfWeek(%v) = %v, want %v", tt.name, tt.date, got, tt.want)
		}
	}
}
