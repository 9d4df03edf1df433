package ingestion

import (
	"sort"
	"time"

	"equity-factor-lab/internal/domain"
)

// Canonical ordering and duplicate handling for fetched datasets. Every
// dataset is sorted by its natural key before caching so that repeated
// fetches of the same range produce byte-identical files. When the source
// returns the same key twice the first row wins.

// SortMonthly orders monthly rows by (permno ASC, date ASC).
func SortMonthly(rows []domain.SecurityMonth) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareMonthly(rows[i], rows[j]) < 0
	})
}

// DedupeMonthly drops rows whose (permno, date) repeats an earlier row.
// Input must already be sorted.
func DedupeMonthly(rows []domain.SecurityMonth) []domain.SecurityMonth {
	out := rows[:0]
	for i, r := range rows {
		if i > 0 && compareMonthly(rows[i-1], r) == 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortDaily orders daily rows by (permno ASC, date ASC).
func SortDaily(rows []domain.SecurityDay) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareDaily(rows[i], rows[j]) < 0
	})
}

// DedupeDaily drops rows whose (permno, date) repeats an earlier row.
func DedupeDaily(rows []domain.SecurityDay) []domain.SecurityDay {
	out := rows[:0]
	for i, r := range rows {
		if i > 0 && compareDaily(rows[i-1], r) == 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortIndex orders index rows by date.
func SortIndex(rows []domain.IndexDay) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}

// DedupeIndex drops rows whose date repeats an earlier row.
func DedupeIndex(rows []domain.IndexDay) []domain.IndexDay {
	out := rows[:0]
	for i, r := range rows {
		if i > 0 && rows[i-1].Date.Equal(r.Date) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortFundamentals orders fundamental rows by (gvkey ASC, datadate ASC).
func SortFundamentals(rows []domain.Fundamentals) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareFundamentals(rows[i], rows[j]) < 0
	})
}

// DedupeFundamentals drops rows whose (gvkey, datadate) repeats an earlier row.
func DedupeFundamentals(rows []domain.Fundamentals) []domain.Fundamentals {
	out := rows[:0]
	for i, r := range rows {
		if i > 0 && compareFundamentals(rows[i-1], r) == 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortLinks orders link rows by (gvkey ASC, permno ASC, linkdt ASC).
func SortLinks(rows []domain.LinkRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareLinks(rows[i], rows[j]) < 0
	})
}

func compareMonthly(a, b domain.SecurityMonth) int {
	if a.Permno != b.Permno {
		if a.Permno < b.Permno {
			return -1
		}
		return 1
	}
	return compareDates(a.Date, b.Date)
}

func compareDaily(a, b domain.SecurityDay) int {
	if a.Permno != b.Permno {
		if a.Permno < b.Permno {
			return -1
		}
		return 1
	}
	return compareDates(a.Date, b.Date)
}

func compareFundamentals(a, b domain.Fundamentals) int {
	if a.GVKey != b.GVKey {
		if a.GVKey < b.GVKey {
			return -1
		}
		return 1
	}
	return compareDates(a.DataDate, b.DataDate)
}

func compareLinks(a, b domain.LinkRow) int {
	if a.GVKey != b.GVKey {
		if a.GVKey < b.GVKey {
			return -1
		}
		return 1
	}
	if a.Permno != b.Permno {
		if a.Permno < b.Permno {
			return -1
		}
		return 1
	}
	return compareDates(a.LinkStart, b.LinkStart)
}

func compareDates(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// midnightUTC truncates a timestamp to its calendar date in UTC. Source
// drivers may return dates with session offsets attached; everything
// downstream keys on the bare date.
func midnightUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
