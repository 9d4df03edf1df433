// Package stub provides an in-memory wrds.Service for testing.
package stub

import (
	"context"
	"time"

	"equity-factor-lab/internal/domain"
)

// Service returns fixed in-memory datasets filtered to the requested date
// range. Calls counts invocations per dataset so tests can assert that a
// warm cache never reaches the remote service. When Err is set every
// method returns it. Implements wrds.Service.
type Service struct {
	Months    []domain.SecurityMonth
	Days      []domain.SecurityDay
	IndexDays []domain.IndexDay
	Fund      []domain.Fundamentals
	Links     []domain.LinkRow

	Err   error          // returned by every method when set
	Calls map[string]int // invocation count per dataset
}

func (s *Service) record(dataset string) {
	if s.Calls == nil {
		s.Calls = make(map[string]int)
	}
	s.Calls[dataset]++
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// MonthlyStock returns the fixture months inside the range.
func (s *Service) MonthlyStock(_ context.Context, start, end time.Time) ([]domain.SecurityMonth, error) {
	s.record("crsp_stock_m")
	if s.Err != nil {
		return nil, s.Err
	}
	var out []domain.SecurityMonth
	for _, m := range s.Months {
		if inRange(m.Date, start, end) {
			out = append(out, m)
		}
	}
	return out, nil
}

// DailyStock returns the fixture days inside the range.
func (s *Service) DailyStock(_ context.Context, start, end time.Time) ([]domain.SecurityDay, error) {
	s.record("crsp_stock_d")
	if s.Err != nil {
		return nil, s.Err
	}
	var out []domain.SecurityDay
	for _, d := range s.Days {
		if inRange(d.Date, start, end) {
			out = append(out, d)
		}
	}
	return out, nil
}

// DailyIndex returns the fixture index days inside the range.
func (s *Service) DailyIndex(_ context.Context, start, end time.Time) ([]domain.IndexDay, error) {
	s.record("crsp_index_d")
	if s.Err != nil {
		return nil, s.Err
	}
	var out []domain.IndexDay
	for _, d := range s.IndexDays {
		if inRange(d.Date, start, end) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Fundamentals returns the fixture rows with a fiscal period end inside
// the range.
func (s *Service) Fundamentals(_ context.Context, start, end time.Time) ([]domain.Fundamentals, error) {
	s.record("compustat_fund")
	if s.Err != nil {
		return nil, s.Err
	}
	var out []domain.Fundamentals
	for _, f := range s.Fund {
		if inRange(f.DataDate, start, end) {
			out = append(out, f)
		}
	}
	return out, nil
}

// LinkTable returns all fixture link rows.
func (s *Service) LinkTable(_ context.Context) ([]domain.LinkRow, error) {
	s.record("crsp_comp_link_table")
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.LinkRow, len(s.Links))
	copy(out, s.Links)
	return out, nil
}
