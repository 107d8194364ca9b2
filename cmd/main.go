package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bryan-cox/wintheday/internal/board"
	"github.com/bryan-cox/wintheday/internal/clipboard"
	"github.com/bryan-cox/wintheday/internal/config"
	"github.com/bryan-cox/wintheday/internal/ledger"
	"github.com/bryan-cox/wintheday/internal/model"
	"github.com/bryan-cox/wintheday/internal/report"
	"github.com/bryan-cox/wintheday/internal/store"
	"github.com/bryan-cox/wintheday/internal/suggest"
)

// suggestTimeout bounds a single suggestion round trip.
const suggestTimeout = 30 * time.Second

// --- Cobra Command Definitions ---

var (
	// Used for flags.
	configPath   string
	dataDir      string
	dateFlag     string
	noColor      bool
	monthFlag    string
	startDate    string
	endDate      string
	copyReport   bool
	outDir       string
	exportFormat string
	applyTasks   bool

	// Replaced in tests.
	now                 = time.Now
	logOutput io.Writer = os.Stderr
	copyToClipboard     = clipboard.Copy
	newGenerator        = func(ctx context.Context, apiKey, modelName string) (suggest.Generator, error) {
		g, err := suggest.NewGenAI(ctx, apiKey, modelName)
		if err != nil {
			return nil, err
		}
		return g, nil
	}

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:           "wintheday",
		Short:         "Win the day: five tasks, one streak.",
		Long:          `WinTheDay tracks five tasks per day. Complete all five and the day is a WIN; consecutive wins build your streak.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	todayCmd = &cobra.Command{
		Use:   "today",
		Short: "Show today's board.",
		Args:  cobra.NoArgs,
		RunE:  withApp(runTodayCommand),
	}

	setCmd = &cobra.Command{
		Use:   "set N TEXT",
		Short: "Set the text of task N.",
		Args:  cobra.MinimumNArgs(2),
		RunE:  withApp(runSetCommand),
	}

	checkCmd = &cobra.Command{
		Use:   "check N",
		Short: "Mark task N complete.",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(completionCommand(true)),
	}

	uncheckCmd = &cobra.Command{
		Use:   "uncheck N",
		Short: "Mark task N not complete.",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(completionCommand(false)),
	}

	noteCmd = &cobra.Command{
		Use:   "note TEXT",
		Short: "Set today's notes.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withApp(runNoteCommand),
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show a month of wins and losses.",
		Args:  cobra.NoArgs,
		RunE:  withApp(runHistoryCommand),
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show totals, win rate and the last 7 days.",
		Args:  cobra.NoArgs,
		RunE:  withApp(runStatsCommand),
	}

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Generate a human-readable report for a date range.",
		Long:  `Generates a formatted text report of each recorded day's outcome and tasks for the specified date or date range.`,
		Args:  cobra.NoArgs,
		RunE:  withApp(runReportCommand),
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write a backup file.",
		Args:  cobra.NoArgs,
		RunE:  withApp(runExportCommand),
	}

	importCmd = &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all data with a backup file.",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runImportCommand),
	}

	suggestCmd = &cobra.Command{
		Use:   "suggest GOAL",
		Short: "Suggest five tasks for a goal.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withApp(runSuggestCommand),
	}

	motivateCmd = &cobra.Command{
		Use:   "motivate",
		Short: "Get a coaching line for your streak.",
		Args:  cobra.NoArgs,
		RunE:  withApp(runMotivateCommand),
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default $XDG_CONFIG_HOME/wintheday/config.toml).")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding the ledger (overrides store.dir).")
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "Treat this date (YYYY-MM-DD) as today.")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output.")

	historyCmd.Flags().StringVar(&monthFlag, "month", "", "Month to show (YYYY-MM, default current month).")

	reportCmd.Flags().StringVar(&startDate, "start-date", "", "Start date (YYYY-MM-DD).")
	reportCmd.Flags().StringVar(&endDate, "end-date", "", "End date (YYYY-MM-DD).")
	reportCmd.Flags().BoolVar(&copyReport, "copy", false, "Copy the report to the clipboard.")

	exportCmd.Flags().StringVar(&outDir, "out", ".", "Directory to write the backup to.")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Backup format: json or yaml.")

	suggestCmd.Flags().BoolVar(&applyTasks, "apply", false, "Replace today's tasks with the suggestions.")

	rootCmd.AddCommand(todayCmd, setCmd, checkCmd, uncheckCmd, noteCmd,
		historyCmd, statsCmd, reportCmd, exportCmd, importCmd, suggestCmd, motivateCmd)
}

// --- Main Application Entry Point ---

func main() {
	// Setup structured JSON logger until the config is read.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	Execute()
}

// app carries what every command needs for one invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  store.Backend
	keeper *ledger.Keeper
	today  time.Time
}

type runFunc func(cmd *cobra.Command, args []string, a *app) error

// withApp loads config, opens the store and closes it once fn returns.
func withApp(fn runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() {
			if err := a.store.Close(); err != nil {
				a.logger.Warn("failed to close store", "error", err)
			}
		}()
		return fn(cmd, args, a)
	}
}

func openApp() (*app, error) {
	if noColor {
		color.NoColor = true
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w, "path", path)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	today, err := resolveToday()
	if err != nil {
		return nil, err
	}

	dir := cfg.Store.Dir
	if dataDir != "" {
		dir = dataDir
	}
	if cfg.Store.Backend != store.BackendMemory {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	s, err := store.Open(cfg.Store.Backend, dir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "backend", cfg.Store.Backend, "dir", dir)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  s,
		keeper: ledger.NewKeeper(s, logger),
		today:  today,
	}, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLevel(cfg.Log.Level)}
	if cfg.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(logOutput, opts))
	}
	return slog.New(slog.NewJSONHandler(logOutput, opts))
}

func resolveToday() (time.Time, error) {
	if dateFlag == "" {
		return model.Day(now()), nil
	}
	d, err := model.ParseDate(dateFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date: %w", err)
	}
	return d, nil
}

// suggestions builds the suggestion service. Without an API key, or when
// the client cannot be created, the service answers with fallbacks.
func (a *app) suggestions(ctx context.Context) *suggest.Service {
	var gen suggest.Generator
	if key := a.cfg.APIKey(); key != "" {
		g, err := newGenerator(ctx, key, a.cfg.Suggest.Model)
		if err != nil {
			a.logger.Warn("suggestion model unavailable, using fallbacks", "error", err)
		} else {
			gen = g
		}
	}
	return suggest.New(gen, a.logger).WithTemperature(float32(a.cfg.Suggest.Temperature))
}

// current returns the ledger as it stands today without persisting it.
func (a *app) current() (model.Ledger, []model.Task) {
	l, tasks := a.keeper.LoadOrInit(a.today)
	return ledger.Recompute(l, a.today, tasks), tasks
}

func (a *app) todayRecord(l model.Ledger) model.DayRecord {
	return l.History[model.FormatDate(a.today)]
}

// --- Command Execution Logic ---

func runTodayCommand(cmd *cobra.Command, args []string, a *app) error {
	l, _ := a.current()
	report.PrintBoard(cmd.OutOrStdout(), a.todayRecord(l), l.Streak, l.BestStreak)
	return nil
}

func runSetCommand(cmd *cobra.Command, args []string, a *app) error {
	n, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))

	_, tasks := a.keeper.LoadOrInit(a.today)
	task, err := board.ByPosition(tasks, n)
	if err != nil {
		return err
	}
	tasks, err = board.SetText(tasks, task.ID, text)
	if err != nil {
		return err
	}
	return a.updateAndPrint(cmd, tasks)
}

func completionCommand(completed bool) runFunc {
	return func(cmd *cobra.Command, args []string, a *app) error {
		n, err := parsePosition(args[0])
		if err != nil {
			return err
		}

		prior, tasks := a.keeper.LoadOrInit(a.today)
		wasWin := ledger.StatusFor(tasks) == model.StatusWin
		task, err := board.ByPosition(tasks, n)
		if err != nil {
			return err
		}
		tasks, err = board.SetCompleted(tasks, task.ID, completed)
		if err != nil {
			return err
		}
		if err := a.updateAndPrint(cmd, tasks); err != nil {
			return err
		}
		if !wasWin && ledger.StatusFor(tasks) == model.StatusWin {
			a.logger.Info("day won", "date", model.FormatDate(a.today), "prior_best", prior.BestStreak)
			fmt.Fprintln(cmd.OutOrStdout(), "\nDay won. Keep the streak alive tomorrow.")
		}
		return nil
	}
}

func (a *app) updateAndPrint(cmd *cobra.Command, tasks []model.Task) error {
	l, err := a.keeper.Update(a.today, tasks)
	if err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	report.PrintBoard(cmd.OutOrStdout(), a.todayRecord(l), l.Streak, l.BestStreak)
	return nil
}

func runNoteCommand(cmd *cobra.Command, args []string, a *app) error {
	l, err := a.keeper.SetNotes(a.today, strings.TrimSpace(strings.Join(args, " ")))
	if err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	report.PrintBoard(cmd.OutOrStdout(), a.todayRecord(l), l.Streak, l.BestStreak)
	return nil
}

func runHistoryCommand(cmd *cobra.Command, args []string, a *app) error {
	year, month := a.today.Year(), a.today.Month()
	if monthFlag != "" {
		m, err := time.Parse("2006-01", monthFlag)
		if err != nil {
			return fmt.Errorf("invalid month %q, use YYYY-MM", monthFlag)
		}
		year, month = m.Year(), m.Month()
	}

	l, _ := a.current()
	report.PrintMonth(cmd.OutOrStdout(), report.Month(l.History, year, month, a.today))
	return nil
}

func runStatsCommand(cmd *cobra.Command, args []string, a *app) error {
	l, _ := a.current()
	report.PrintStats(cmd.OutOrStdout(),
		report.CountTotals(l.History),
		l.Streak, l.BestStreak,
		report.LastSevenDays(l.History, a.today))
	return nil
}

func runReportCommand(cmd *cobra.Command, args []string, a *app) error {
	l, _ := a.keeper.LoadOrInit(a.today)

	dates, err := report.DatesInRange(l.History, startDate, endDate)
	if err != nil {
		a.logger.Error("failed to process date range", "error", err, "start_date", startDate, "end_date", endDate)
		return err
	}
	summary := report.Summarize(l.History, dates)
	report.PrintRange(cmd.OutOrStdout(), summary)

	if !copyReport {
		return nil
	}

	// Render once more without escape codes for the clipboard.
	prev := color.NoColor
	color.NoColor = true
	var plain bytes.Buffer
	report.PrintRange(&plain, summary)
	color.NoColor = prev

	if err := copyToClipboard(plain.String()); err != nil {
		return fmt.Errorf("failed to copy report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nReport copied to clipboard.")
	return nil
}

func runExportCommand(cmd *cobra.Command, args []string, a *app) error {
	var (
		data []byte
		name string
		err  error
	)
	switch exportFormat {
	case "json":
		data, name, err = a.keeper.ExportBackup(a.today)
	case "yaml":
		data, name, err = a.keeper.ExportYAML(a.today)
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", exportFormat)
	}
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("could not write backup '%s': %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
	return nil
}

func runImportCommand(cmd *cobra.Command, args []string, a *app) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("could not read file '%s': %w", args[0], err)
	}

	if _, err := a.keeper.ImportBackup(data); err != nil {
		if errors.Is(err, ledger.ErrInvalidBackup) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Invalid backup file format.")
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Data restored successfully!")
	return nil
}

func runSuggestCommand(cmd *cobra.Command, args []string, a *app) error {
	goal := strings.TrimSpace(strings.Join(args, " "))
	if goal == "" {
		return errors.New("goal cannot be empty")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), suggestTimeout)
	defer cancel()

	l, tasks := a.current()
	sug, line := a.suggestions(ctx).Brief(ctx, goal, l.Streak, a.todayRecord(l).Status)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Suggested tasks for %q\n", goal)
	for i, t := range sug.Tasks {
		fmt.Fprintf(out, "  %d. %s\n", i+1, t)
	}
	fmt.Fprintf(out, "\n\"%s\"\n%s\n", sug.Quote, line)

	if !applyTasks {
		return nil
	}
	fmt.Fprintln(out)
	return a.updateAndPrint(cmd, board.Apply(tasks, sug.Tasks))
}

func runMotivateCommand(cmd *cobra.Command, args []string, a *app) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), suggestTimeout)
	defer cancel()

	l, _ := a.current()
	fmt.Fprintln(cmd.OutOrStdout(), a.suggestions(ctx).Motivation(ctx, l.Streak, a.todayRecord(l).Status))
	return nil
}

// --- Helper Functions ---

func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > model.TasksPerDay {
		return 0, fmt.Errorf("task number must be between 1 and %d, got %q", model.TasksPerDay, arg)
	}
	return n, nil
}
