package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusWin.Valid())
	assert.True(t, StatusLoss.Valid())
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, Status("DONE").Valid())
	assert.False(t, Status("").Valid())
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", FormatDate(got))

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)

	_, err = ParseDate("02/03/2024")
	assert.Error(t, err)
}

func TestDayDropsClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*60*60)
	in := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)

	got := Day(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, "2024-03-10", FormatDate(got))
	assert.Equal(t, "2024-03-09", FormatDate(got.AddDate(0, 0, -1)))
}

func TestHistoryCloneIsIndependent(t *testing.T) {
	orig := History{
		"2024-01-01": {Date: "2024-01-01", Tasks: []Task{{ID: "a", Text: "run"}}, Status: StatusInProgress},
	}

	cp := orig.Clone()
	rec := cp["2024-01-01"]
	rec.Tasks[0].Completed = true
	rec.Status = StatusWin
	cp["2024-01-01"] = rec
	cp["2024-01-02"] = DayRecord{Date: "2024-01-02"}

	assert.False(t, orig["2024-01-01"].Tasks[0].Completed)
	assert.Equal(t, StatusInProgress, orig["2024-01-01"].Status)
	assert.Len(t, orig, 1)
}

func TestNewLedger(t *testing.T) {
	l := NewLedger()
	assert.NotNil(t, l.History)
	assert.Empty(t, l.History)
	assert.Zero(t, l.Streak)
	assert.Zero(t, l.BestStreak)
}
