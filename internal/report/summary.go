// Package report provides history statistics and text reports.
package report

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bryan-cox/wintheday/internal/board"
	"github.com/bryan-cox/wintheday/internal/model"
)

// ErrNoData is returned when a date range matches no recorded days.
var ErrNoData = errors.New("no data found")

// Totals counts decided days across the whole history.
type Totals struct {
	Wins   int
	Losses int
}

// Decided is the number of days that ended as a WIN or a LOSS.
func (t Totals) Decided() int { return t.Wins + t.Losses }

// Rate is the win percentage over decided days.
func (t Totals) Rate() int { return WinRate(t.Wins, t.Losses) }

// CountTotals tallies WIN and LOSS records. IN_PROGRESS days are not counted.
func CountTotals(history model.History) Totals {
	var t Totals
	for _, rec := range history {
		switch rec.Status {
		case model.StatusWin:
			t.Wins++
		case model.StatusLoss:
			t.Losses++
		}
	}
	return t
}

// WinRate returns the rounded win percentage, or 0 when nothing is decided.
func WinRate(wins, losses int) int {
	if wins+losses == 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(wins+losses) * 100))
}

// DayCell is one day in a month calendar.
type DayCell struct {
	Date     string
	Day      int
	Status   model.Status // empty when nothing was recorded
	Recorded bool
	IsToday  bool
}

// MonthView is a calendar month with its outcome counts.
type MonthView struct {
	Year   int
	Month  time.Month
	Offset int // weekday of the 1st, Sunday = 0
	Days   []DayCell
	Totals
}

// Title renders the month heading, e.g. "August 2024".
func (m MonthView) Title() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// Month builds the calendar for the given month.
func Month(history model.History, year int, month time.Month, today time.Time) MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	todayKey := model.FormatDate(model.Day(today))

	view := MonthView{
		Year:   year,
		Month:  month,
		Offset: int(first.Weekday()),
		Days:   make([]DayCell, 0, last.Day()),
	}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := model.FormatDate(d)
		rec, ok := history[key]
		cell := DayCell{Date: key, Day: d.Day(), Recorded: ok, IsToday: key == todayKey}
		if ok {
			cell.Status = rec.Status
			switch rec.Status {
			case model.StatusWin:
				view.Wins++
			case model.StatusLoss:
				view.Losses++
			}
		}
		view.Days = append(view.Days, cell)
	}
	return view
}

// DailyCompletion is one bar of the last-seven-days chart.
type DailyCompletion struct {
	Date      string
	Weekday   string
	Completed int
}

// LastSevenDays returns completion counts for the week ending today, oldest
// first. A WIN counts as five; otherwise completed tasks are counted.
func LastSevenDays(history model.History, today time.Time) []DailyCompletion {
	day := model.Day(today)
	out := make([]DailyCompletion, 0, 7)
	for i := 6; i >= 0; i-- {
		d := day.AddDate(0, 0, -i)
		key := model.FormatDate(d)
		entry := DailyCompletion{Date: key, Weekday: d.Format("Mon")}
		if rec, ok := history[key]; ok {
			if rec.Status == model.StatusWin {
				entry.Completed = model.TasksPerDay
			} else {
				entry.Completed = board.CompletedCount(rec.Tasks)
			}
		}
		out = append(out, entry)
	}
	return out
}

// DatesInRange returns the recorded dates between start and end (inclusive),
// sorted. Either bound may be empty: a single bound selects one day, no
// bounds select every recorded day.
func DatesInRange(history model.History, startStr, endStr string) ([]string, error) {
	if startStr != "" && endStr == "" {
		endStr = startStr
	}
	if endStr != "" && startStr == "" {
		startStr = endStr
	}

	if startStr == "" && endStr == "" {
		allDates := make([]string, 0, len(history))
		for date := range history {
			allDates = append(allDates, date)
		}
		if len(allDates) == 0 {
			return nil, fmt.Errorf("%w in the ledger", ErrNoData)
		}
		sort.Strings(allDates)
		return allDates, nil
	}

	startDate, err := model.ParseDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	endDate, err := model.ParseDate(endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}
	if endDate.Before(startDate) {
		return nil, errors.New("end date cannot be before start date")
	}

	var datesInRange []string
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := model.FormatDate(d)
		if _, exists := history[dateStr]; exists {
			datesInRange = append(datesInRange, dateStr)
		}
	}
	if len(datesInRange) == 0 {
		return nil, fmt.Errorf("%w for the specified date range", ErrNoData)
	}
	return datesInRange, nil
}

// RangeSummary groups the days of a range by outcome.
type RangeSummary struct {
	Start string
	End   string
	Days  []model.DayRecord
	Totals
	Open int // days still IN_PROGRESS
}

// Summarize collects the records for dates, which must be sorted.
func Summarize(history model.History, dates []string) RangeSummary {
	s := RangeSummary{}
	if len(dates) > 0 {
		s.Start, s.End = dates[0], dates[len(dates)-1]
	}
	for _, date := range dates {
		rec, ok := history[date]
		if !ok {
			continue
		}
		s.Days = append(s.Days, rec)
		switch rec.Status {
		case model.StatusWin:
			s.Wins++
		case model.StatusLoss:
			s.Losses++
		default:
			s.Open++
		}
	}
	return s
}
