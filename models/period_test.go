package models

import (
	"errors"
	"testing"
	"time"

	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
)

func TestNewPeriod_BothEmptyMeansNoFilter(t *testing.T) {
	p, err := NewPeriod("", "")
	if err != nil {
		t.Fatalf("NewPeriod(\"\", \"\") error: %v", err)
	}
	if p != nil {
		t.Fatalf("NewPeriod(\"\", \"\") expected nil period, got %+v", p)
	}
}

func TestNewPeriod_InvalidInputs(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"only start", "2026-01-01", ""},
		{"only end", "", "2026-01-31"},
		{"bad start", "01/01/2026", "2026-01-31"},
		{"bad end", "2026-01-01", "yesterday"},
		{"start after end", "2026-02-01", "2026-01-31"},
	}
	for _, tc := range cases {
		_, err := NewPeriod(tc.start, tc.end)
		if !errors.Is(err, utils.ErrInvalidPeriod) {
			t.Fatalf("%s: NewPeriod(%q, %q) expected ErrInvalidPeriod, got %v", tc.name, tc.start, tc.end, err)
		}
	}
}

func TestNewPeriod_NormalizesToDayBounds(t *testing.T) {
	p, err := NewPeriod("2026-03-05", "2026-03-10")
	if err != nil {
		t.Fatalf("NewPeriod error: %v", err)
	}
	if p.Start.Hour() != 0 || p.Start.Minute() != 0 || p.Start.Second() != 0 {
		t.Fatalf("start not normalized to 00:00:00: %v", p.Start)
	}
	if p.End.Hour() != 23 || p.End.Minute() != 59 || p.End.Second() != 59 {
		t.Fatalf("end not normalized to 23:59:59: %v", p.End)
	}
	if p.StartString() != "2026-03-05" || p.EndString() != "2026-03-10" {
		t.Fatalf("wire dates round-trip: got %s / %s", p.StartString(), p.EndString())
	}
}

func TestNewPeriod_SingleDayRange(t *testing.T) {
	p, err := NewPeriod("2026-03-05", "2026-03-05")
	if err != nil {
		t.Fatalf("single-day period should be valid: %v", err)
	}
	if !p.Contains(time.Date(2026, 3, 5, 18, 30, 0, 0, time.UTC)) {
		t.Fatal("record later in the day should fall inside a single-day period")
	}
}

func TestPeriod_ContainsDayGranularity(t *testing.T) {
	p, err := NewPeriod("2026-01-10", "2026-01-20")
	if err != nil {
		t.Fatalf("NewPeriod error: %v", err)
	}
	cases := []struct {
		in       time.Time
		expected bool
	}{
		{time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 1, 20, 23, 59, 59, 0, time.UTC), true},
		{time.Date(2026, 1, 9, 23, 59, 59, 0, time.UTC), false},
		{time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := p.Contains(tc.in); got != tc.expected {
			t.Fatalf("Contains(%v) expected %v, got %v", tc.in, tc.expected, got)
		}
	}
}

func TestPeriod_NilContainsEverything(t *testing.T) {
	var p *Period
	if !p.Contains(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("nil period must not filter anything")
	}
}

func TestRequirePeriod_AbsenceIsAnError(t *testing.T) {
	if _, err := RequirePeriod("", ""); !errors.Is(err, utils.ErrInvalidPeriod) {
		t.Fatalf("RequirePeriod(\"\", \"\") expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := RequirePeriod("2026-01-01", "2026-01-31"); err != nil {
		t.Fatalf("RequirePeriod with both dates should succeed: %v", err)
	}
}
