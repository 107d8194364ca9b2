package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/bryan-cox/wintheday/internal/board"
	"github.com/bryan-cox/wintheday/internal/model"
)

// Section headers for text output.
const (
	TextHeaderBoard   = "Win The Day"
	TextHeaderStats   = "\nStats"
	TextHeaderWeek    = "\nLast 7 days"
	TextHeaderHistory = "History"
)

var (
	winColor  = color.New(color.FgHiGreen, color.Bold)
	lossColor = color.New(color.FgRed)
	openColor = color.New(color.FgHiBlue)
	dimColor  = color.New(color.FgHiBlack)
)

// StatusLabel renders a day status, coloured when colour output is enabled.
func StatusLabel(s model.Status) string {
	switch s {
	case model.StatusWin:
		return winColor.Sprint(string(s))
	case model.StatusLoss:
		return lossColor.Sprint(string(s))
	case model.StatusInProgress:
		return openColor.Sprint(string(s))
	default:
		return dimColor.Sprint("-")
	}
}

// PrintBoard prints today's tasks with their completion marks.
func PrintBoard(out io.Writer, rec model.DayRecord, streak, bestStreak int) {
	fmt.Fprintf(out, "%s (%s)\n", TextHeaderBoard, rec.Date)
	fmt.Fprintf(out, "Streak: %d    Best: %d\n\n", streak, bestStreak)

	for i, task := range rec.Tasks {
		mark := "[ ]"
		if task.Completed {
			mark = winColor.Sprint("[x]")
		}
		text := task.Text
		if text == "" {
			text = dimColor.Sprint("(empty)")
		}
		fmt.Fprintf(out, "  %d. %s %s\n", i+1, mark, text)
	}

	fmt.Fprintf(out, "\n%d/%d complete    %s\n", board.CompletedCount(rec.Tasks), model.TasksPerDay, StatusLabel(rec.Status))
	if rec.Notes != "" {
		fmt.Fprintf(out, "Notes: %s\n", rec.Notes)
	}
}

// PrintStats prints overall totals, streaks and the last seven days.
func PrintStats(out io.Writer, totals Totals, streak, bestStreak int, week []DailyCompletion) {
	fmt.Fprintln(out, strings.TrimPrefix(TextHeaderStats, "\n"))
	fmt.Fprintf(out, "    • Current streak: %d\n", streak)
	fmt.Fprintf(out, "    • Best streak: %d\n", bestStreak)
	fmt.Fprintf(out, "    • Wins: %d\n", totals.Wins)
	fmt.Fprintf(out, "    • Losses: %d\n", totals.Losses)
	if totals.Decided() == 0 {
		fmt.Fprintln(out, "    • Win rate: no completed days yet")
	} else {
		fmt.Fprintf(out, "    • Win rate: %d%%\n", totals.Rate())
	}

	if len(week) == 0 {
		return
	}
	fmt.Fprintln(out, TextHeaderWeek)
	for _, d := range week {
		bar := strings.Repeat("#", d.Completed) + strings.Repeat(".", model.TasksPerDay-d.Completed)
		fmt.Fprintf(out, "    %s %s %d/%d\n", d.Weekday, bar, d.Completed, model.TasksPerDay)
	}
}

// PrintMonth prints a calendar grid. W marks a win, L a loss, * today and
// o a recorded day that is still open.
func PrintMonth(out io.Writer, m MonthView) {
	fmt.Fprintf(out, "%s: %s\n\n", TextHeaderHistory, m.Title())
	fmt.Fprintln(out, "  S   M   T   W   T   F   S")

	col := 0
	var line strings.Builder
	for ; col < m.Offset; col++ {
		line.WriteString("    ")
	}
	for _, cell := range m.Days {
		fmt.Fprintf(&line, "%3d%s", cell.Day, cellMark(cell))
		col++
		if col == 7 {
			fmt.Fprintln(out, strings.TrimRight(line.String(), " "))
			line.Reset()
			col = 0
		}
	}
	if line.Len() > 0 {
		fmt.Fprintln(out, strings.TrimRight(line.String(), " "))
	}

	fmt.Fprintf(out, "\nWins: %d    Losses: %d    Win rate: %d%%\n", m.Wins, m.Losses, m.Rate())
}

func cellMark(cell DayCell) string {
	switch {
	case cell.Status == model.StatusWin:
		return winColor.Sprint("W")
	case cell.Status == model.StatusLoss:
		return lossColor.Sprint("L")
	case cell.IsToday:
		return openColor.Sprint("*")
	case cell.Recorded:
		return dimColor.Sprint("o")
	default:
		return " "
	}
}

// PrintRange prints a per-day report for a date range.
func PrintRange(out io.Writer, s RangeSummary) {
	fmt.Fprintf(out, "Win The Day Report (%s to %s)\n", s.Start, s.End)
	fmt.Fprintln(out, "=======Autogenerated by WinTheDay=======")

	for _, rec := range s.Days {
		fmt.Fprintf(out, "\n%s  %s  %d/%d\n", rec.Date, StatusLabel(rec.Status), board.CompletedCount(rec.Tasks), model.TasksPerDay)
		for _, task := range rec.Tasks {
			if task.Text == "" {
				continue
			}
			mark := "◦"
			if task.Completed {
				mark = "✓"
			}
			fmt.Fprintf(out, "    %s %s\n", mark, task.Text)
		}
		if rec.Notes != "" {
			fmt.Fprintf(out, "    Notes: %s\n", rec.Notes)
		}
	}

	fmt.Fprintf(out, "\nWins: %d    Losses: %d    Open: %d    Win rate: %d%%\n", s.Wins, s.Losses, s.Open, s.Rate())
}
