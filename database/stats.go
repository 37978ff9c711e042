// fixit/database/stats.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/AB-App-Dev/FixIt/models"
)

// DateField selects which incident timestamp a grouped count is based on.
type DateField string

const (
	ReportDate DateField = "report_date"
	CloseDate  DateField = "close_date"
)

func (f DateField) valid() bool {
	return f == ReportDate || f == CloseDate
}

// CountByMonth counts incidents with status whose field falls in [from, to),
// grouped by calendar month.
func (ds *DatabaseService) CountByMonth(ctx context.Context, field DateField, status models.IncidentStatus, from, to time.Time) ([]models.PeriodCount, error) {
	if !field.valid() {
		return nil, fmt.Errorf("invalid date field %q", field)
	}
	col := string(field)
	query := fmt.Sprintf(`
		SELECT %[1]s AS period, COUNT(*) AS count
		FROM incidents
		WHERE status = ? AND %[2]s IS NOT NULL AND %[2]s >= ? AND %[2]s < ?
		GROUP BY %[1]s
		ORDER BY period`, ds.monthExpr(col), col)

	counts := []models.PeriodCount{}
	if err := ds.DB.SelectContext(ctx, &counts, ds.DB.Rebind(query), status, from, to); err != nil {
		return nil, fmt.Errorf("count incidents by month of %s: %w", col, err)
	}
	return counts, nil
}

// CountByYear counts incidents with status grouped by the year of field.
func (ds *DatabaseService) CountByYear(ctx context.Context, field DateField, status models.IncidentStatus) ([]models.PeriodCount, error) {
	if !field.valid() {
		return nil, fmt.Errorf("invalid date field %q", field)
	}
	col := string(field)
	query := fmt.Sprintf(`
		SELECT %[1]s AS period, COUNT(*) AS count
		FROM incidents
		WHERE status = ? AND %[2]s IS NOT NULL
		GROUP BY %[1]s
		ORDER BY period`, ds.yearExpr(col), col)

	counts := []models.PeriodCount{}
	if err := ds.DB.SelectContext(ctx, &counts, ds.DB.Rebind(query), status); err != nil {
		return nil, fmt.Errorf("count incidents by year of %s: %w", col, err)
	}
	return counts, nil
}
