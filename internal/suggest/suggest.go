// Package suggest asks a generative model for task ideas and coaching lines.
// Every call resolves to usable text: when no model is configured, or the
// model fails, a fixed fallback is returned instead of an error.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/bryan-cox/wintheday/internal/model"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultTemperature is used for task generation.
const DefaultTemperature float32 = 0.7

// padTask fills the list when the model returns fewer than five tasks.
const padTask = "Review goals"

// Fallbacks used when no API key is configured.
var (
	UnconfiguredTasks = []string{"Define your goal", "Break it down", "Execute step 1", "Review progress", "Plan tomorrow"}
	UnconfiguredQuote = "Action is the foundational key to all success."
	UnconfiguredLine  = "Keep pushing forward."
)

// Fallbacks used when the model call fails.
var (
	FailedTasks = []string{"Drink 1 gallon water", "Read 10 pages", "45 min workout", "Clear inbox", "Plan tomorrow"}
	FailedQuote = "Discipline equals freedom."
	FailedLine  = "Focus on the execution."
)

// Fallbacks used when the model answers with nothing usable.
const (
	EmptyQuote = "Dominate the day."
	EmptyLine  = "Go win."
)

// Request is a single prompt sent to a Generator.
type Request struct {
	Prompt      string
	Schema      *genai.Schema // non-nil asks for a JSON response matching the schema
	Temperature *float32
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Suggestion is a generated set of tasks plus a quote.
type Suggestion struct {
	Tasks []string
	Quote string
}

// Service wraps a Generator with prompts and fallbacks.
type Service struct {
	gen         Generator
	logger      *slog.Logger
	temperature float32
}

// New creates a Service. A nil Generator means no API key is configured.
func New(gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, logger: logger, temperature: DefaultTemperature}
}

// WithTemperature overrides the sampling temperature for task generation.
func (s *Service) WithTemperature(t float32) *Service {
	s.temperature = t
	return s
}

// Configured reports whether a model is available.
func (s *Service) Configured() bool {
	return s.gen != nil
}

// taskSchema describes the JSON object expected from task generation.
var taskSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"tasks": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString, Description: "A specific, actionable task description."},
			Description: "List of 5 critical tasks.",
		},
		"motivationalQuote": {
			Type:        genai.TypeString,
			Description: "A short, punchy motivational quote related to the goal.",
		},
	},
	Required: []string{"tasks", "motivationalQuote"},
}

type taskResponse struct {
	Tasks []string `json:"tasks"`
	Quote string   `json:"motivationalQuote"`
}

// GenerateTasks returns exactly five task suggestions for goal.
func (s *Service) GenerateTasks(ctx context.Context, goal string) Suggestion {
	if s.gen == nil {
		s.logger.Warn("no API key configured, using default tasks")
		return Suggestion{Tasks: cloneTasks(UnconfiguredTasks), Quote: UnconfiguredQuote}
	}

	temp := s.temperature
	text, err := s.gen.Generate(ctx, Request{
		Prompt:      taskPrompt(goal),
		Schema:      taskSchema,
		Temperature: &temp,
	})
	if err != nil {
		s.logger.Warn("task generation failed", "error", err)
		return Suggestion{Tasks: cloneTasks(FailedTasks), Quote: FailedQuote}
	}

	if strings.TrimSpace(text) == "" {
		text = "{}"
	}
	var resp taskResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		s.logger.Warn("task generation returned invalid JSON", "error", err)
		return Suggestion{Tasks: cloneTasks(FailedTasks), Quote: FailedQuote}
	}

	tasks := make([]string, 0, model.TasksPerDay)
	for _, t := range resp.Tasks {
		if len(tasks) == model.TasksPerDay {
			break
		}
		tasks = append(tasks, t)
	}
	for len(tasks) < model.TasksPerDay {
		tasks = append(tasks, padTask)
	}

	quote := resp.Quote
	if quote == "" {
		quote = EmptyQuote
	}
	return Suggestion{Tasks: tasks, Quote: quote}
}

// Motivation returns a short coaching line for the current streak and status.
func (s *Service) Motivation(ctx context.Context, streak int, status model.Status) string {
	if s.gen == nil {
		return UnconfiguredLine
	}

	text, err := s.gen.Generate(ctx, Request{Prompt: motivationPrompt(streak, status)})
	if err != nil {
		s.logger.Warn("motivation request failed", "error", err)
		return FailedLine
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyLine
	}
	return text
}

// Brief fetches task suggestions and a coaching line concurrently.
func (s *Service) Brief(ctx context.Context, goal string, streak int, status model.Status) (Suggestion, string) {
	var (
		sug  Suggestion
		line string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sug = s.GenerateTasks(gctx, goal)
		return nil
	})
	g.Go(func() error {
		line = s.Motivation(gctx, streak, status)
		return nil
	})
	_ = g.Wait() // both calls resolve to fallbacks instead of failing
	return sug, line
}

func taskPrompt(goal string) string {
	return fmt.Sprintf(`The user wants to 'Win the Day' based on this goal: %q.
Generate 5 specific, high-impact, actionable tasks that they can complete today to move the needle.
Also provide a short motivational quote.
Keep tasks concise (under 10 words).`, goal)
}

func motivationPrompt(streak int, status model.Status) string {
	return fmt.Sprintf(`The user is using a 'Win the Day' tracker.
Current Streak: %d days.
Current Status for today: %s.
Give me a very short, aggressive, high-performance coaching sentence to keep them moving.
Max 20 words.`, streak, status)
}

func cloneTasks(tasks []string) []string {
	return append([]string(nil), tasks...)
}
