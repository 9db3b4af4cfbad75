package utils

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseGymIds(t *testing.T) {
	cases := []struct {
		in       string
		expected []int
	}{
		{"7", []int{7}},
		{"1,2,3", []int{1, 2, 3}},
		{" 1 , 2 ", []int{1, 2}},
		{"3,1,3,2,1", []int{3, 1, 2}},
	}
	for _, tc := range cases {
		ids, err := ParseGymIds(tc.in)
		if err != nil {
			t.Fatalf("ParseGymIds(%q) error: %v", tc.in, err)
		}
		if !reflect.DeepEqual(ids, tc.expected) {
			t.Fatalf("ParseGymIds(%q) expected %v, got %v", tc.in, tc.expected, ids)
		}
	}
}

func TestParseGymIds_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "1,abc", "1,,2", "0", "-1", "1,-2", "1.5"} {
		if _, err := ParseGymIds(in); !errors.Is(err, ErrInvalidGymSet) {
			t.Fatalf("ParseGymIds(%q) expected ErrInvalidGymSet, got %v", in, err)
		}
	}
}

func TestGetThisMonthRange(t *testing.T) {
	start, end := GetThisMonthRange()
	now := time.Now().UTC()
	if start.Day() != 1 || start.Month() != now.Month() || start.Year() != now.Year() {
		t.Fatalf("start should be the first of the current month: %v", start)
	}
	if end.Before(now) {
		t.Fatalf("end %v should not be before now", end)
	}
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Fatalf("end should be the last second of the month: %v", end)
	}
}

// The driver converts query parameters to UTC and DATE columns compare as
// tz-less midnight, so every window must already be in UTC: a local-zone
// window (e.g. UTC-3) would be sent shifted by the offset and BETWEEN would
// exclude the boundary days entirely.
func TestCalendarWindows_AreBuiltInUTC(t *testing.T) {
	bounds := map[string][2]time.Time{}
	s, e := GetTodayRange()
	bounds["today"] = [2]time.Time{s, e}
	s, e = GetThisMonthRange()
	bounds["thisMonth"] = [2]time.Time{s, e}
	s, e = GetPreviousMonthRange()
	bounds["previousMonth"] = [2]time.Time{s, e}
	s, e = GetTrailingMonthsRange(4)
	bounds["trailing"] = [2]time.Time{s, e}

	for name, b := range bounds {
		for _, tt := range b {
			if tt.Location() != time.UTC {
				t.Fatalf("%s window bound %v not in UTC (would shift on the wire)", name, tt)
			}
		}
	}

	start := bounds["today"][0]
	now := time.Now().UTC()
	dateOnlyMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !start.Equal(dateOnlyMidnight) {
		t.Fatalf("today's window start %v must equal the date-only midnight %v the store compares against", start, dateOnlyMidnight)
	}
}

func TestGetPreviousMonthRange(t *testing.T) {
	start, end := GetPreviousMonthRange()
	thisStart, _ := GetThisMonthRange()
	if !end.Before(thisStart) {
		t.Fatalf("previous month end %v should precede current month start %v", end, thisStart)
	}
	if start.Day() != 1 {
		t.Fatalf("previous month start should be day 1: %v", start)
	}
	if thisStart.Sub(end) > 24*time.Hour {
		t.Fatalf("previous month end %v should be adjacent to current month start %v", end, thisStart)
	}
}

func TestGetTrailingMonthsRange(t *testing.T) {
	start, end := GetTrailingMonthsRange(4)
	if start.Day() != 1 {
		t.Fatalf("trailing range should start on day 1: %v", start)
	}
	now := time.Now().UTC()
	monthsApart := int(now.Month()) - int(start.Month()) + 12*(now.Year()-start.Year())
	if monthsApart != 3 {
		t.Fatalf("trailing 4 months should start 3 calendar months back, got %d (%v)", monthsApart, start)
	}
	if end.Day() != now.Day() || end.Hour() != 23 {
		t.Fatalf("trailing range should end today at 23:59:59: %v", end)
	}
}

func TestGetTodayRange(t *testing.T) {
	start, end := GetTodayRange()
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Fatalf("today range should start at midnight: %v", start)
	}
	if end.Sub(start) != time.Hour*23+time.Minute*59+time.Second*59 {
		t.Fatalf("today range should span one day: %v .. %v", start, end)
	}
}

func TestExecTemplate(t *testing.T) {
	sql, err := ExecTemplate(`SELECT * FROM t WHERE id IN ?{{- if .period }} AND data BETWEEN ? AND ?{{- end }}`,
		map[string]interface{}{"period": true})
	if err != nil {
		t.Fatalf("ExecTemplate error: %v", err)
	}
	if !strings.Contains(sql, "BETWEEN ? AND ?") {
		t.Fatalf("conditional clause missing: %q", sql)
	}

	sql, err = ExecTemplate(`SELECT * FROM t WHERE id IN ?{{- if .period }} AND data BETWEEN ? AND ?{{- end }}`,
		map[string]interface{}{"period": false})
	if err != nil {
		t.Fatalf("ExecTemplate error: %v", err)
	}
	if strings.Contains(sql, "BETWEEN") {
		t.Fatalf("clause should be omitted when period is false: %q", sql)
	}
}

func TestOnlyDigits(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"123.456.789-00", "12345678900"},
		{"12345678900", "12345678900"},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := OnlyDigits(tc.in); got != tc.expected {
			t.Fatalf("OnlyDigits(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}

func TestDefaultIfBlank(t *testing.T) {
	blank := "   "
	pix := "PIX"
	if got := DefaultIfBlank(nil, "RENOVAÇÃO"); got != "RENOVAÇÃO" {
		t.Fatalf("nil should fall back, got %q", got)
	}
	if got := DefaultIfBlank(&blank, "RENOVAÇÃO"); got != "RENOVAÇÃO" {
		t.Fatalf("whitespace should fall back, got %q", got)
	}
	if got := DefaultIfBlank(&pix, "RENOVAÇÃO"); got != "PIX" {
		t.Fatalf("non-blank should pass through, got %q", got)
	}
}

func TestMonthLabel(t *testing.T) {
	cases := []struct {
		month    time.Month
		expected string
	}{
		{time.January, "Jan"},
		{time.August, "Aug"},
		{time.December, "Dec"},
	}
	for _, tc := range cases {
		if got := MonthLabel(2026, tc.month); got != tc.expected {
			t.Fatalf("MonthLabel(2026, %v) expected %q, got %q", tc.month, tc.expected, got)
		}
	}
}

func TestIntsToCSV(t *testing.T) {
	if got := IntsToCSV([]int{1, 2, 3}); got != "1,2,3" {
		t.Fatalf("expected \"1,2,3\", got %q", got)
	}
	if got := IntsToCSV(nil); got != "" {
		t.Fatalf("expected empty string for nil, got %q", got)
	}
}

func TestIsBcryptHash(t *testing.T) {
	hashed, err := HashPassword("segredo")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !IsBcryptHash(string(hashed)) {
		t.Fatalf("generated hash not recognized: %s", hashed)
	}
	if IsBcryptHash("segredo") {
		t.Fatal("plain text must not be treated as a hash")
	}
	if err := ComparePassword(string(hashed), "segredo"); err != nil {
		t.Fatalf("ComparePassword should accept the original senha: %v", err)
	}
	if err := ComparePassword(string(hashed), "errado"); err == nil {
		t.Fatal("ComparePassword should reject a wrong senha")
	}
}
