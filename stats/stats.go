// fixit/stats/stats.go
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AB-App-Dev/FixIt/database"
	"github.com/AB-App-Dev/FixIt/models"
	"github.com/AB-App-Dev/FixIt/utils"
)

// View selects the filtered statistics shape.
type View string

const (
	ViewAll     View = "all"
	ViewCurrent View = "current"
)

// Counter runs the grouped incident counts.
type Counter interface {
	CountByMonth(ctx context.Context, field database.DateField, status models.IncidentStatus, from, to time.Time) ([]models.PeriodCount, error)
	CountByYear(ctx context.Context, field database.DateField, status models.IncidentStatus) ([]models.PeriodCount, error)
}

// Aggregator builds the statistics served by the API.
type Aggregator struct {
	counter Counter
	now     func() time.Time
}

func NewAggregator(counter Counter) *Aggregator {
	return &Aggregator{counter: counter, now: utils.GetTime}
}

// yearRange returns [Jan 1 of year, Jan 1 of year+1) in UTC.
func yearRange(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

// Combined returns open and closed counts per month of the current year,
// zero-filled up to the current month, plus per-year totals for every year
// with activity.
func (a *Aggregator) Combined(ctx context.Context) (*models.CombinedStats, error) {
	now := a.now().UTC()
	from, to := yearRange(now.Year())

	openMonthly, err := a.counter.CountByMonth(ctx, database.ReportDate, models.StatusOpen, from, to)
	if err != nil {
		return nil, fmt.Errorf("open incidents by month: %w", err)
	}
	closedMonthly, err := a.counter.CountByMonth(ctx, database.CloseDate, models.StatusClosed, from, to)
	if err != nil {
		return nil, fmt.Errorf("closed incidents by month: %w", err)
	}
	openByMonth := toMap(openMonthly)
	closedByMonth := toMap(closedMonthly)

	monthly := make([]models.MonthlyStat, 0, int(now.Month()))
	for m := 1; m <= int(now.Month()); m++ {
		monthly = append(monthly, models.MonthlyStat{
			Month:  m,
			Open:   openByMonth[m],
			Closed: closedByMonth[m],
		})
	}

	openYearly, err := a.counter.CountByYear(ctx, database.ReportDate, models.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("open incidents by year: %w", err)
	}
	closedYearly, err := a.counter.CountByYear(ctx, database.CloseDate, models.StatusClosed)
	if err != nil {
		return nil, fmt.Errorf("closed incidents by year: %w", err)
	}
	openByYear := toMap(openYearly)
	closedByYear := toMap(closedYearly)

	years := make([]int, 0, len(openByYear)+len(closedByYear))
	for y := range openByYear {
		years = append(years, y)
	}
	for y := range closedByYear {
		if _, seen := openByYear[y]; !seen {
			years = append(years, y)
		}
	}
	sort.Ints(years)

	yearly := make([]models.YearlyStat, 0, len(years))
	for _, y := range years {
		yearly = append(yearly, models.YearlyStat{
			Year:   y,
			Open:   openByYear[y],
			Closed: closedByYear[y],
		})
	}

	return &models.CombinedStats{Monthly: monthly, Yearly: yearly}, nil
}

// ClosedByYear returns closures per year, ascending.
func (a *Aggregator) ClosedByYear(ctx context.Context) ([]models.YearCount, error) {
	rows, err := a.counter.CountByYear(ctx, database.CloseDate, models.StatusClosed)
	if err != nil {
		return nil, fmt.Errorf("closed incidents by year: %w", err)
	}
	out := make([]models.YearCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.YearCount{Year: r.Period, Count: r.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

// ClosedByMonth returns closures per month of the current year, ascending.
// Months without closures are omitted.
func (a *Aggregator) ClosedByMonth(ctx context.Context) ([]models.MonthCount, error) {
	from, to := yearRange(a.now().UTC().Year())
	rows, err := a.counter.CountByMonth(ctx, database.CloseDate, models.StatusClosed, from, to)
	if err != nil {
		return nil, fmt.Errorf("closed incidents by month: %w", err)
	}
	out := make([]models.MonthCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.MonthCount{Month: r.Period, Count: r.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// Filtered serves the view query parameter: ViewAll yields []models.YearCount,
// any other view []models.MonthCount.
func (a *Aggregator) Filtered(ctx context.Context, view View) (interface{}, error) {
	if view == ViewAll {
		return a.ClosedByYear(ctx)
	}
	return a.ClosedByMonth(ctx)
}

func toMap(rows []models.PeriodCount) map[int]int {
	m := make(map[int]int, len(rows))
	for _, r := range rows {
		m[r.Period] += r.Count
	}
	return m
}
