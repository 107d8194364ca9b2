// Package board edits the five-task list for the current day.
// Every operation returns a new slice; the input is never mutated.
package board

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bryan-cox/wintheday/internal/model"
)

// ErrTaskNotFound is returned when an id or position does not match a task.
var ErrTaskNotFound = errors.New("task not found")

// Blank returns a fresh set of empty, incomplete tasks with unique ids.
func Blank() []model.Task {
	tasks := make([]model.Task, model.TasksPerDay)
	for i := range tasks {
		tasks[i] = model.Task{ID: uuid.NewString()}
	}
	return tasks
}

// CompletedCount returns how many tasks are marked complete.
func CompletedCount(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// ByPosition returns the task at the 1-based position n.
func ByPosition(tasks []model.Task, n int) (model.Task, error) {
	if n < 1 || n > len(tasks) {
		return model.Task{}, fmt.Errorf("position %d out of range 1-%d: %w", n, len(tasks), ErrTaskNotFound)
	}
	return tasks[n-1], nil
}

// Toggle flips the completed flag of the task with the given id.
func Toggle(tasks []model.Task, id string) ([]model.Task, error) {
	return update(tasks, id, func(t *model.Task) { t.Completed = !t.Completed })
}

// SetCompleted sets the completed flag of the task with the given id.
func SetCompleted(tasks []model.Task, id string, completed bool) ([]model.Task, error) {
	return update(tasks, id, func(t *model.Task) { t.Completed = completed })
}

// SetText replaces the text of the task with the given id.
func SetText(tasks []model.Task, id, text string) ([]model.Task, error) {
	return update(tasks, id, func(t *model.Task) { t.Text = text })
}

// Apply maps suggested task texts onto the existing tasks by index.
// Empty or missing suggestions keep the current text. Completion is reset
// on every task since the list has been regenerated.
func Apply(tasks []model.Task, suggestions []string) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		if i < len(suggestions) && suggestions[i] != "" {
			t.Text = suggestions[i]
		}
		t.Completed = false
		out[i] = t
	}
	return out
}

func update(tasks []model.Task, id string, fn func(*model.Task)) ([]model.Task, error) {
	out := append([]model.Task(nil), tasks...)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
			return out, nil
		}
	}
	return nil, fmt.Errorf("task %q: %w", id, ErrTaskNotFound)
}
