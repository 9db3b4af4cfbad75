package models

import (
	"time"

	"github.com/melsolucoesdeinformatica-prog/melfitness-backend/utils"
)

const periodDateLayout = "2006-01-02"

// Period is an optional inclusive [start, end] date range compared at day
// granularity: Start is normalized to 00:00:00 and End to 23:59:59 so a
// record on the end date is included no matter its time of day.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a Period from the datainicio/datafim query values.
// Both empty means "no filter" and returns nil. Exactly one supplied, an
// unparseable date, or start after end fail with ErrInvalidPeriod.
func NewPeriod(startStr string, endStr string) (*Period, error) {
	if startStr == "" && endStr == "" {
		return nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, utils.ErrInvalidPeriod
	}

	start, err := time.Parse(periodDateLayout, startStr)
	if err != nil {
		return nil, utils.ErrInvalidPeriod
	}
	end, err := time.Parse(periodDateLayout, endStr)
	if err != nil {
		return nil, utils.ErrInvalidPeriod
	}
	if start.After(end) {
		return nil, utils.ErrInvalidPeriod
	}

	return &Period{
		Start: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		End:   time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC),
	}, nil
}

// RequirePeriod is NewPeriod for endpoints where the range is mandatory
// (the filtered dashboard): absence is also ErrInvalidPeriod.
func RequirePeriod(startStr string, endStr string) (*Period, error) {
	if startStr == "" && endStr == "" {
		return nil, utils.ErrInvalidPeriod
	}
	return NewPeriod(startStr, endStr)
}

// Contains reports whether t falls inside the period, at day granularity.
func (p *Period) Contains(t time.Time) bool {
	if p == nil {
		return true
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(p.Start) && !day.After(p.End)
}

// StartString / EndString render the bounds back to wire dates.
func (p *Period) StartString() string { return p.Start.Format(periodDateLayout) }
func (p *Period) EndString() string   { return p.End.Format(periodDateLayout) }
