package bazi

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ZRnown/ai-fortune-telling/internal/lunisolar"
	"github.com/ZRnown/ai-fortune-telling/pkg/models"
)

// Default inversion search bounds. The lower bound predates the calendar's
// supported window; years the calendar cannot convert are skipped, the same
// way the original search silently skipped years its converter rejected.
const (
	SearchMinYear = 1801
	SearchMaxYear = 2099
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// specMatchesIdx tests a pillar constraint against a cycle index. Empty
// fields always match.
func specMatchesIdx(spec models.PillarSpec, idx int) bool {
	if spec.Stem != "" && spec.Stem != lunisolar.Stems[idx%10] {
		return false
	}
	if spec.Branch != "" && spec.Branch != lunisolar.Branches[idx%12] {
		return false
	}
	return true
}

// chartMatches tests all four constraints of a query against a chart.
func chartMatches(rc *lunisolar.RawChart, input models.PillarsInput) bool {
	return specMatchesIdx(input.Year, rc.YearIdx) &&
		specMatchesIdx(input.Month, rc.MonthIdx) &&
		specMatchesIdx(input.Day, rc.DayIdx) &&
		specMatchesIdx(input.Hour, rc.HourIdx)
}

// FindDateByPillars searches a bounded year/month/day/hour grid for the
// first solar timestamp whose four pillars satisfy every specified field of
// the query. Years ascend, then months, days and hours; the earliest match
// wins. A nil result with a nil error means the range was exhausted without
// a match — an expected outcome, not a failure.
//
// Months within a year are scanned concurrently; result order stays
// deterministic because the earliest candidate across shards is selected.
// The context cancels the search early.
func (e *Engine) FindDateByPillars(ctx context.Context, input models.PillarsInput, opts models.SearchOptions) (*models.FoundDate, error) {
	yearStart := clampInt(opts.YearStart, SearchMinYear, SearchMaxYear)
	if opts.YearStart == 0 {
		yearStart = SearchMinYear
	}
	yearEnd := clampInt(opts.YearEnd, yearStart, SearchMaxYear)
	if opts.YearEnd == 0 {
		yearEnd = SearchMaxYear
	}
	// opts.MinuteStep is accepted for interface compatibility but needs no
	// loop: pillars are minute-invariant, so the first matching minute of a
	// matching hour is always :00 whatever the step.

	for y := yearStart; y <= yearEnd; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if y < lunisolar.MinYear || y > lunisolar.MaxYear {
			continue
		}
		// Cheap pre-check: a calendar year carries the previous sexagenary
		// year before 立春 and its own after, so a year-pillar constraint
		// matching neither rules the whole year out.
		if !input.Year.Empty() {
			cur := e.cal.YearGanzhiIndex(y)
			prev := e.cal.YearGanzhiIndex(y - 1)
			if !specMatchesIdx(input.Year, cur) && !specMatchesIdx(input.Year, prev) {
				continue
			}
		}
		found, err := e.scanYear(ctx, y, input)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}

// scanYear scans one calendar year, sharding months across goroutines and
// keeping the earliest match.
func (e *Engine) scanYear(ctx context.Context, year int, input models.PillarsInput) (*models.FoundDate, error) {
	var (
		mu      sync.Mutex
		matches [13]*models.FoundDate // indexed by month
	)
	g, ctx := errgroup.WithContext(ctx)
	for month := 1; month <= 12; month++ {
		g.Go(func() error {
			found, err := e.scanMonth(ctx, year, month, input)
			if err != nil {
				return err
			}
			if found != nil {
				mu.Lock()
				matches[month] = found
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m != nil {
			return m, nil
		}
	}
	return nil, nil
}

// scanMonth walks every day and hour of one month and returns the earliest
// match, or nil.
func (e *Engine) scanMonth(ctx context.Context, year, month int, input models.PillarsInput) (*models.FoundDate, error) {
	for day := 1; day <= daysInMonth(year, month); day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for hour := 0; hour < 24; hour++ {
			rc, err := e.cal.Chart(lunisolar.DateTime{Year: year, Month: month, Day: day, Hour: hour})
			if err != nil {
				// Unconvertible timestamps are skipped, not fatal.
				continue
			}
			if chartMatches(rc, input) {
				return &models.FoundDate{Year: year, Month: month, Day: day, Hour: hour, Minute: 0}, nil
			}
		}
	}
	return nil, nil
}

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysInMonth(year, month int) int {
	if month == 2 && (year%4 == 0 && (year%100 != 0 || year%400 == 0)) {
		return 29
	}
	return monthDays[month]
}
