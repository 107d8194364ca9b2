// Package ledger owns the mapping from calendar date to day outcome.
// It recomputes day status and streaks whenever today's tasks change and
// persists the result through a key-value store.
package ledger

import (
	"time"

	"github.com/bryan-cox/wintheday/internal/board"
	"github.com/bryan-cox/wintheday/internal/model"
)

// StatusFor returns WIN when every task is complete, IN_PROGRESS otherwise.
func StatusFor(tasks []model.Task) model.Status {
	if board.CompletedCount(tasks) == model.TasksPerDay {
		return model.StatusWin
	}
	return model.StatusInProgress
}

// Recompute records today's tasks and derives the streak counters.
//
// The prior ledger is not modified. Only the calendar date of today is used.
// Any earlier day still IN_PROGRESS is closed out as a LOSS.
func Recompute(prior model.Ledger, today time.Time, tasks []model.Task) model.Ledger {
	day := model.Day(today)
	key := model.FormatDate(day)
	status := StatusFor(tasks)

	history := prior.History.Clone()
	rec := model.DayRecord{
		Date:   key,
		Tasks:  append([]model.Task(nil), tasks...),
		Status: status,
	}
	if existing, ok := history[key]; ok {
		rec.Notes = existing.Notes
	}
	history[key] = rec
	closeOut(history, key)

	streak := winsBefore(history, day)
	if status == model.StatusWin {
		streak++
	}

	return model.Ledger{
		CurrentDate: key,
		History:     history,
		Streak:      streak,
		BestStreak:  max(prior.BestStreak, streak),
	}
}

// CloseOut returns a copy of history where every day strictly before today
// that never reached WIN is marked LOSS. Days after today are left alone.
func CloseOut(history model.History, today time.Time) model.History {
	out := history.Clone()
	closeOut(out, model.FormatDate(model.Day(today)))
	return out
}

func closeOut(history model.History, todayKey string) {
	for date, rec := range history {
		// YYYY-MM-DD keys order lexically by date.
		if date < todayKey && rec.Status == model.StatusInProgress {
			rec.Status = model.StatusLoss
			history[date] = rec
		}
	}
}

// winsBefore counts consecutive WIN days immediately preceding day.
// A missing record ends the run the same way a non-WIN status does.
func winsBefore(history model.History, day time.Time) int {
	n := 0
	for d := day.AddDate(0, 0, -1); ; d = d.AddDate(0, 0, -1) {
		rec, ok := history[model.FormatDate(d)]
		if !ok || rec.Status != model.StatusWin {
			return n
		}
		n++
	}
}
