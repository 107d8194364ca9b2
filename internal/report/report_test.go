package report

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-cox/wintheday/internal/model"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func tasks(done int) []model.Task {
	out := make([]model.Task, model.TasksPerDay)
	for i := range out {
		out[i] = model.Task{ID: string(rune('a' + i)), Text: "Task " + string(rune('A'+i)), Completed: i < done}
	}
	return out
}

func sampleHistory() model.History {
	return model.History{
		"2024-07-31": {Date: "2024-07-31", Tasks: tasks(5), Status: model.StatusWin},
		"2024-08-01": {Date: "2024-08-01", Tasks: tasks(5), Status: model.StatusWin},
		"2024-08-02": {Date: "2024-08-02", Tasks: tasks(2), Status: model.StatusLoss, Notes: "sick"},
		"2024-08-03": {Date: "2024-08-03", Tasks: tasks(5), Status: model.StatusWin},
		"2024-08-05": {Date: "2024-08-05", Tasks: tasks(3), Status: model.StatusInProgress},
	}
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestCountTotals(t *testing.T) {
	got := CountTotals(sampleHistory())
	assert.Equal(t, 3, got.Wins)
	assert.Equal(t, 1, got.Losses)
	assert.Equal(t, 4, got.Decided())
	assert.Equal(t, 75, got.Rate())

	empty := CountTotals(model.History{})
	assert.Zero(t, empty.Decided())
	assert.Zero(t, empty.Rate())
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		wins, losses, want int
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 3, 0},
		{1, 2, 33},
		{2, 1, 67},
		{1, 7, 13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WinRate(tt.wins, tt.losses), "%d/%d", tt.wins, tt.losses)
	}
}

func TestMonth(t *testing.T) {
	m := Month(sampleHistory(), 2024, time.August, mustDay(t, "2024-08-05"))

	assert.Equal(t, "August 2024", m.Title())
	assert.Equal(t, 4, m.Offset, "1 August 2024 is a Thursday")
	require.Len(t, m.Days, 31)
	assert.Equal(t, 2, m.Wins, "July wins are not counted")
	assert.Equal(t, 1, m.Losses)
	assert.Equal(t, 67, m.Rate())

	assert.Equal(t, model.StatusWin, m.Days[0].Status)
	assert.True(t, m.Days[4].IsToday)
	assert.True(t, m.Days[4].Recorded)
	assert.False(t, m.Days[3].Recorded)
	assert.Equal(t, "2024-08-31", m.Days[30].Date)
}

func TestMonth_February(t *testing.T) {
	assert.Len(t, Month(nil, 2024, time.February, mustDay(t, "2024-02-01")).Days, 29)
	assert.Len(t, Month(nil, 2023, time.February, mustDay(t, "2023-02-01")).Days, 28)
}

func TestLastSevenDays(t *testing.T) {
	got := LastSevenDays(sampleHistory(), mustDay(t, "2024-08-05"))
	require.Len(t, got, 7)

	assert.Equal(t, "2024-07-30", got[0].Date)
	assert.Equal(t, "Tue", got[0].Weekday)
	assert.Equal(t, 0, got[0].Completed, "no record")
	assert.Equal(t, 5, got[1].Completed, "win")
	assert.Equal(t, 2, got[3].Completed, "loss counts completed tasks")
	assert.Equal(t, 0, got[5].Completed)
	assert.Equal(t, "2024-08-05", got[6].Date)
	assert.Equal(t, "Mon", got[6].Weekday)
	assert.Equal(t, 3, got[6].Completed)
}

func TestDatesInRange(t *testing.T) {
	history := sampleHistory()

	tests := []struct {
		name    string
		start   string
		end     string
		want    []string
		wantErr bool
	}{
		{name: "all", want: []string{"2024-07-31", "2024-08-01", "2024-08-02", "2024-08-03", "2024-08-05"}},
		{name: "single start", start: "2024-08-02", want: []string{"2024-08-02"}},
		{name: "single end", end: "2024-08-01", want: []string{"2024-08-01"}},
		{name: "range skips gaps", start: "2024-08-02", end: "2024-08-06", want: []string{"2024-08-02", "2024-08-03", "2024-08-05"}},
		{name: "no records", start: "2024-09-01", end: "2024-09-30", wantErr: true},
		{name: "reversed", start: "2024-08-05", end: "2024-08-01", wantErr: true},
		{name: "bad start", start: "08/01/2024", end: "2024-08-05", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DatesInRange(history, tt.start, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DatesInRange(model.History{}, "", "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSummarize(t *testing.T) {
	history := sampleHistory()
	dates, err := DatesInRange(history, "2024-08-01", "2024-08-05")
	require.NoError(t, err)

	s := Summarize(history, dates)
	assert.Equal(t, "2024-08-01", s.Start)
	assert.Equal(t, "2024-08-05", s.End)
	assert.Len(t, s.Days, 4)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 1, s.Open)
}

func TestPrintBoard(t *testing.T) {
	rec := model.DayRecord{Date: "2024-08-05", Tasks: tasks(2), Status: model.StatusInProgress, Notes: "focus"}
	rec.Tasks[4].Text = ""

	var b bytes.Buffer
	PrintBoard(&b, rec, 3, 8)
	out := b.String()

	assert.Contains(t, out, "Win The Day (2024-08-05)")
	assert.Contains(t, out, "Streak: 3    Best: 8")
	assert.Contains(t, out, "  1. [x] Task A")
	assert.Contains(t, out, "  3. [ ] Task C")
	assert.Contains(t, out, "  5. [ ] (empty)")
	assert.Contains(t, out, "2/5 complete    IN_PROGRESS")
	assert.Contains(t, out, "Notes: focus")
}

func TestPrintStats(t *testing.T) {
	var b bytes.Buffer
	PrintStats(&b, Totals{Wins: 3, Losses: 1}, 2, 5, LastSevenDays(sampleHistory(), mustDay(t, "2024-08-05")))
	out := b.String()

	assert.Contains(t, out, "• Current streak: 2")
	assert.Contains(t, out, "• Best streak: 5")
	assert.Contains(t, out, "• Win rate: 75%")
	assert.Contains(t, out, "Last 7 days")
	assert.Contains(t, out, "Wed ##### 5/5")
	assert.Contains(t, out, "Fri ##... 2/5")

	b.Reset()
	PrintStats(&b, Totals{}, 0, 0, nil)
	assert.Contains(t, b.String(), "no completed days yet")
	assert.NotContains(t, b.String(), "Last 7 days")
}

func TestPrintMonth(t *testing.T) {
	var b bytes.Buffer
	PrintMonth(&b, Month(sampleHistory(), 2024, time.August, mustDay(t, "2024-08-05")))
	out := b.String()

	assert.Contains(t, out, "History: August 2024")
	assert.Contains(t, out, "  S   M   T   W   T   F   S")
	assert.Contains(t, out, "                  1W  2L  3W\n")
	assert.Contains(t, out, "  4   5*  6   7   8   9  10\n")
	assert.Contains(t, out, " 25  26  27  28  29  30  31\n")
	assert.Contains(t, out, "Wins: 2    Losses: 1    Win rate: 67%")
}

func TestPrintRange(t *testing.T) {
	history := sampleHistory()
	dates, err := DatesInRange(history, "2024-08-01", "2024-08-03")
	require.NoError(t, err)

	var b bytes.Buffer
	PrintRange(&b, Summarize(history, dates))
	out := b.String()

	assert.Contains(t, out, "Win The Day Report (2024-08-01 to 2024-08-03)")
	assert.Contains(t, out, "2024-08-02  LOSS  2/5")
	assert.Contains(t, out, "    ✓ Task A")
	assert.Contains(t, out, "    ◦ Task E")
	assert.Contains(t, out, "    Notes: sick")
	assert.Contains(t, out, "Wins: 2    Losses: 1    Open: 0    Win rate: 67%")
}
