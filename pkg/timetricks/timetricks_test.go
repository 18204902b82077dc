package timetricks

import (
	"fmt"
	"testing"
	"time"
)

func ExampleSameDay() {
	t := time.Date(2024, time.March, 9, 23, 59, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		next := t.Add(time.Duration(i) * time.Minute)
		fmt.Println(DayKey(next), SameDay(t, next))
	}
	// Output:
	// 2024-03-09 true
	// 2024-03-10 false
	// 2024-03-10 false
}

func ExampleDay() {
	t := time.Date(2024, time.March, 9, 17, 42, 10, 0, time.UTC)
	fmt.Println(Day(t).Format(time.RFC3339))
	fmt.Println(SetClock(t, 6, 30).Format(time.RFC3339))
	// Output:
	// 2024-03-09T00:00:00Z
	// 2024-03-09T06:30:00Z
}

func TestWallClock(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	in := time.Date(2024, time.March, 9, 17, 42, 0, 0, time.UTC)
	got := WallClock(in, loc)

	if got.Hour() != 17 || got.Minute() != 42 || got.Location() != loc {
		t.Errorf("WallClock(%v) = %v", in, got)
	}
	if !got.Equal(in.Add(8 * time.Hour)) {
		t.Errorf("WallClock(%v) = %v, want same fields 8h later in absolute time", in, got)
	}
}
