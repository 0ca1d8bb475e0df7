package lifelog

import (
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Period selects the log groups an aggregate runs over.
type Period interface {
	// Previous returns the period immediately before this one.
	Previous() Period
	scope(q *gorm.DB) *gorm.DB
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Previous() Period {
	start, end := dateOnly(r.Start), dateOnly(r.End)
	n := int(end.Sub(start).Hours()/24) + 1
	return DateRange{Start: start.AddDate(0, 0, -n), End: start.AddDate(0, 0, -1)}
}

func (r DateRange) scope(q *gorm.DB) *gorm.DB {
	return q.Where("log_date >= ? AND log_date <= ?", dateOnly(r.Start), dateOnly(r.End))
}

func (r DateRange) String() string {
	return r.Start.Format(time.DateOnly) + ".." + r.End.Format(time.DateOnly)
}

// TrailingYear is the twelve months ending today, the window lifespan
// estimates average over.
func TrailingYear(now time.Time) DateRange {
	today := dateOnly(now)
	return DateRange{Start: today.AddDate(-1, 0, 0), End: today}
}

// Month is a calendar month; Month runs 1..12.
type Month struct {
	Year  int
	Month int
}

func (m Month) Previous() Period {
	if m.Month <= 1 {
		return Month{Year: m.Year - 1, Month: 12}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

func (m Month) scope(q *gorm.DB) *gorm.DB {
	return q.Where("year_number = ? AND month_number = ?", m.Year, m.Month)
}

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, m.Month) }

// Week is an ISO-8601 week; Year is the ISO week-numbering year.
type Week struct {
	Year int
	Week int
}

func (w Week) Previous() Period {
	if w.Week <= 1 {
		return Week{Year: w.Year - 1, Week: ISOWeeksIn(w.Year - 1)}
	}
	return Week{Year: w.Year, Week: w.Week - 1}
}

func (w Week) scope(q *gorm.DB) *gorm.DB {
	return q.Where("week_year = ? AND week_of_year = ?", w.Year, w.Week)
}

func (w Week) String() string { return fmt.Sprintf("%04d-W%02d", w.Year, w.Week) }

// ISOWeeksIn returns 52 or 53. December 28th always falls in the last week.
func ISOWeeksIn(year int) int {
	_, w := time.Date(year, 12, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

type Year struct {
	Year int
}

func (y Year) Previous() Period { return Year{Year: y.Year - 1} }

func (y Year) scope(q *gorm.DB) *gorm.DB {
	return q.Where("year_number = ?", y.Year)
}

func (y Year) String() string { return strconv.Itoa(y.Year) }

// FormatScore renders an average with three decimals; no data renders as
// "0.000".
func FormatScore(avg *float64) string {
	if avg == nil {
		return "0.000"
	}
	return strconv.FormatFloat(*avg, 'f', 3, 64)
}
