package features

import (
	"testing"

	"demand-forecast-api/models"
)

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		day  int
		want int
	}{
		{1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0},
		{6, 1}, {7, 1},
		{0, 0}, {8, 0},
	}
	for _, tt := range tests {
		if got := IsWeekend(tt.day); got != tt.want {
			t.Errorf("IsWeekend(%d) = %d, want %d", tt.day, got, tt.want)
		}
	}
}

func TestSeasonPartition(t *testing.T) {
	want := map[int]models.Season{
		12: models.SeasonWinter, 1: models.SeasonWinter, 2: models.SeasonWinter,
		3: models.SeasonSpring, 4: models.SeasonSpring, 5: models.SeasonSpring,
		6: models.SeasonSummer, 7: models.SeasonSummer, 8: models.SeasonSummer,
		9: models.SeasonAutumn, 10: models.SeasonAutumn, 11: models.SeasonAutumn,
	}
	counts := map[models.Season]int{}
	for m := 1; m <= 12; m++ {
		got := SeasonOf(m)
		if got != want[m] {
			t.Errorf("SeasonOf(%d) = %s, want %s", m, got, want[m])
		}
		counts[got]++
	}
	if len(counts) != 4 {
		t.Fatalf("months fall into %d buckets, want 4", len(counts))
	}
	for s, n := range counts {
		if n != 3 {
			t.Errorf("season %s has %d months, want 3", s, n)
		}
	}
}

func TestSeasonOutOfRange(t *testing.T) {
	for _, m := range []int{0, 13, -1} {
		if got := SeasonOf(m); got != models.SeasonUnknown {
			t.Errorf("SeasonOf(%d) = %s, want unknown", m, got)
		}
	}
}

func TestNames(t *testing.T) {
	if DayName(1) != "Lunes" || DayName(7) != "Domingo" || DayName(0) != "" {
		t.Error("unexpected day names")
	}
	if MonthName(1) != "Enero" || MonthName(12) != "Diciembre" || MonthName(13) != "" {
		t.Error("unexpected month names")
	}
	if len(DayOptions()) != 7 || DayOptions()[5].Value != Saturday {
		t.Error("unexpected day options")
	}
	if len(MonthOptions()) != 12 {
		t.Error("unexpected month options")
	}
}
