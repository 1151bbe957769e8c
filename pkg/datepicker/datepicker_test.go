package datepicker

import (
	"testing"
	"time"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 15, 30, 0, 0, time.UTC) }
}

func TestGridCompleteWeeks(t *testing.T) {
	for year := 2023; year <= 2026; year++ {
		for month := time.January; month <= time.December; month++ {
			for ws := time.Sunday; ws <= time.Saturday; ws++ {
				grid := MonthGrid(time.Date(year, month, 17, 0, 0, 0, 0, time.UTC), ws, nil)
				if len(grid)%7 != 0 || len(grid) < 28 {
					t.Fatalf("%d-%02d ws=%v: grid length %d", year, month, ws, len(grid))
				}
				if grid[0].Date.Weekday() != ws {
					t.Fatalf("%d-%02d: grid starts on %v, want %v", year, month, grid[0].Date.Weekday(), ws)
				}
				if grid[0].Date.Day() != 1 && !grid[0].Outside {
					t.Fatalf("%d-%02d: leading day should be outside", year, month)
				}
				inMonth := 0
				for _, d := range grid {
					if !d.Outside {
						inMonth++
					}
				}
				want := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
				if inMonth != want {
					t.Fatalf("%d-%02d: %d in-month days, want %d", year, month, inMonth, want)
				}
			}
		}
	}
}

func TestGridFebruaryExactFit(t *testing.T) {
	// 2026-02-01 is a Sunday and February 2026 has 28 days.
	grid := MonthGrid(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), time.Sunday, nil)
	if len(grid) != 28 {
		t.Fatalf("len = %d, want 28", len(grid))
	}
	for _, d := range grid {
		if d.Outside {
			t.Fatalf("%s should be inside the month", d.ISO())
		}
	}
}

func TestWeekdays(t *testing.T) {
	got := Weekdays(time.Monday)
	if got[0] != time.Monday || got[6] != time.Sunday {
		t.Errorf("Weekdays(Monday) = %v", got)
	}
}

func TestToggleResetsViewedMonth(t *testing.T) {
	p, err := New("", WithClock(fixedClock(2026, time.March, 10)))
	if err != nil {
		t.Fatal(err)
	}

	p.Toggle()
	if !p.IsOpen() {
		t.Fatal("expected open")
	}
	if got := p.ViewedMonth(); got.Month() != time.March || got.Year() != 2026 {
		t.Errorf("viewed = %v, want March 2026", got)
	}

	p.NextMonth()
	p.NextMonth()
	p.Toggle()
	p.Toggle()
	if got := p.ViewedMonth(); got.Month() != time.March {
		t.Errorf("reopen without value should reset to current month, got %v", got)
	}
}

func TestSelectThenReopenShowsSelectedMonth(t *testing.T) {
	p, _ := New("", WithClock(fixedClock(2026, time.March, 10)))
	p.Toggle()

	// pick a trailing day from the next month
	grid := p.Grid()
	last := grid[len(grid)-1]
	if !last.Outside {
		t.Skip("grid has no trailing days")
	}
	value := p.Select(last.Date)
	if p.IsOpen() {
		t.Fatal("select should close the popover")
	}
	if value != last.ISO() || p.Value() != value {
		t.Errorf("value = %q, want %q", p.Value(), last.ISO())
	}

	p.Toggle()
	if got := p.ViewedMonth(); got.Month() != last.Date.Month() {
		t.Errorf("viewed month = %v, want %v", got.Month(), last.Date.Month())
	}
}

func TestTodayUsesClockNotViewedMonth(t *testing.T) {
	var changes []string
	p, _ := New("2025-01-15",
		WithClock(fixedClock(2026, time.October, 19)),
		WithOnChange(func(v string) { changes = append(changes, v) }),
	)
	p.Toggle()
	p.PrevMonth()

	if got := p.Today(); got != "2026-10-19" {
		t.Errorf("Today() = %q", got)
	}
	if p.IsOpen() {
		t.Error("Today should close the popover")
	}
	if len(changes) != 1 || changes[0] != "2026-10-19" {
		t.Errorf("onChange calls = %v", changes)
	}
}

func TestPointerDown(t *testing.T) {
	p, _ := New("2026-05-02")
	p.Toggle()

	if p.PointerDown(TargetPanel) || p.PointerDown(TargetTrigger) {
		t.Fatal("clicks on the trigger or panel must not close")
	}
	if !p.IsOpen() {
		t.Fatal("expected open")
	}
	if !p.PointerDown(TargetOutside) {
		t.Fatal("outside click should close")
	}
	if p.IsOpen() || p.Value() != "2026-05-02" {
		t.Errorf("open=%v value=%q", p.IsOpen(), p.Value())
	}
}

func TestGridMarksSelectedAndToday(t *testing.T) {
	p, _ := New("2026-10-03", WithClock(fixedClock(2026, time.October, 19)))
	var selected, today int
	for _, d := range p.Grid() {
		if d.Selected {
			selected++
			if d.ISO() != "2026-10-03" {
				t.Errorf("selected %s", d.ISO())
			}
		}
		if d.Today {
			today++
		}
	}
	if selected != 1 || today != 1 {
		t.Errorf("selected=%d today=%d", selected, today)
	}
}

func TestParseISODate(t *testing.T) {
	if _, err := ParseISODate("2026-13-01"); err == nil {
		t.Error("expected error for month 13")
	}
	if _, err := New("10/19/2026"); err == nil {
		t.Error("New should reject non-ISO values")
	}
	d, err := ParseISODate("2024-02-29")
	if err != nil || FormatISODate(d) != "2024-02-29" {
		t.Errorf("round trip failed: %v %v", d, err)
	}
}

func TestParseWeekday(t *testing.T) {
	for _, name := range []string{"monday", "Mon", "MONDAY"} {
		if d, ok := ParseWeekday(name); !ok || d != time.Monday {
			t.Errorf("ParseWeekday(%q) = %v, %v", name, d, ok)
		}
	}
	if _, ok := ParseWeekday("funday"); ok {
		t.Error("unknown weekday accepted")
	}
}

func TestShowMonthKeepsValue(t *testing.T) {
	p, err := New("2026-02-14")
	if err != nil {
		t.Fatal(err)
	}
	p.ShowMonth(time.Date(2027, time.July, 20, 0, 0, 0, 0, time.UTC))
	if got := p.ViewedMonth(); got.Year() != 2027 || got.Month() != time.July || got.Day() != 1 {
		t.Errorf("viewed = %v", got)
	}
	if p.Value() != "2026-02-14" {
		t.Errorf("value changed: %q", p.Value())
	}
}
