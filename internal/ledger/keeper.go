package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryan-cox/wintheday/internal/board"
	"github.com/bryan-cox/wintheday/internal/model"
	"github.com/bryan-cox/wintheday/internal/store"
)

// StateKey is the store key holding the serialized ledger.
const StateKey = "win-the-day-data"

var (
	// ErrInvalidBackup is returned when an import blob is not a usable backup.
	ErrInvalidBackup = errors.New("invalid backup file format")

	// ErrNothingToExport is returned when no ledger has been persisted yet.
	ErrNothingToExport = errors.New("no data to export")
)

// Keeper loads and persists the ledger through a store.
type Keeper struct {
	store  store.Store
	logger *slog.Logger
}

// NewKeeper creates a Keeper. A nil logger falls back to slog.Default.
func NewKeeper(s store.Store, logger *slog.Logger) *Keeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Keeper{store: s, logger: logger}
}

// LoadOrInit returns the persisted ledger and the tasks to seed today's board
// with. Missing or malformed state yields an empty ledger; it never fails.
// Days before today that were never won are closed out as LOSS.
func (k *Keeper) LoadOrInit(today time.Time) (model.Ledger, []model.Task) {
	l := k.load()
	l.History = CloseOut(l.History, today)

	if rec, ok := l.History[model.FormatDate(model.Day(today))]; ok && len(rec.Tasks) > 0 {
		return l, append([]model.Task(nil), rec.Tasks...)
	}
	return l, board.Blank()
}

func (k *Keeper) load() model.Ledger {
	data, err := k.store.Get(StateKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			k.logger.Warn("failed to read stored ledger, starting fresh", "error", err)
		}
		return model.NewLedger()
	}

	var l model.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		k.logger.Warn("failed to parse stored ledger, starting fresh", "error", err)
		return model.NewLedger()
	}
	if l.History == nil {
		l.History = model.History{}
	}
	return l
}

// Save persists the ledger.
func (k *Keeper) Save(l model.Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := k.store.Set(StateKey, data); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Update runs one recompute-and-persist pass for today's tasks.
func (k *Keeper) Update(today time.Time, tasks []model.Task) (model.Ledger, error) {
	prior, _ := k.LoadOrInit(today)
	next := Recompute(prior, today, tasks)
	if err := k.Save(next); err != nil {
		return prior, err
	}
	k.logger.Debug("ledger updated",
		"date", next.CurrentDate,
		"status", next.History[next.CurrentDate].Status,
		"streak", next.Streak,
		"best_streak", next.BestStreak)
	return next, nil
}

// SetNotes stores free-form notes on today's record.
func (k *Keeper) SetNotes(today time.Time, notes string) (model.Ledger, error) {
	prior, tasks := k.LoadOrInit(today)
	next := Recompute(prior, today, tasks)

	key := model.FormatDate(model.Day(today))
	rec := next.History[key]
	rec.Notes = notes
	next.History[key] = rec

	if err := k.Save(next); err != nil {
		return prior, err
	}
	return next, nil
}

// ImportBackup replaces the whole ledger with the contents of blob.
// JSON and YAML backups are accepted; either must carry a history field.
// A rejected blob leaves the stored ledger untouched.
func (k *Keeper) ImportBackup(blob []byte) (model.Ledger, error) {
	l, err := DecodeBackup(blob)
	if err != nil {
		return model.Ledger{}, err
	}
	if err := k.Save(l); err != nil {
		return model.Ledger{}, err
	}
	k.logger.Info("backup imported", "days", len(l.History), "streak", l.Streak, "best_streak", l.BestStreak)
	return l, nil
}

// ExportBackup returns the stored blob unchanged together with a file name
// that embeds today's date.
func (k *Keeper) ExportBackup(today time.Time) ([]byte, string, error) {
	data, err := k.store.Get(StateKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrNothingToExport
	}
	if err != nil {
		return nil, "", fmt.Errorf("read ledger: %w", err)
	}
	return data, BackupFileName(today, "json"), nil
}

// ExportYAML re-encodes the stored ledger as YAML.
func (k *Keeper) ExportYAML(today time.Time) ([]byte, string, error) {
	data, _, err := k.ExportBackup(today)
	if err != nil {
		return nil, "", err
	}
	var l model.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, "", fmt.Errorf("parse stored ledger: %w", err)
	}
	out, err := yaml.Marshal(l)
	if err != nil {
		return nil, "", fmt.Errorf("marshal yaml: %w", err)
	}
	return out, BackupFileName(today, "yaml"), nil
}

// BackupFileName names a backup file for the given day.
func BackupFileName(today time.Time, ext string) string {
	return fmt.Sprintf("win-the-day-backup-%s.%s", model.FormatDate(model.Day(today)), ext)
}

// DecodeBackup parses a JSON or YAML backup. The blob must contain a
// non-null history field and decode into the ledger shape.
func DecodeBackup(blob []byte) (model.Ledger, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 {
		return model.Ledger{}, fmt.Errorf("empty backup: %w", ErrInvalidBackup)
	}

	var l model.Ledger
	if json.Valid(trimmed) {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return model.Ledger{}, fmt.Errorf("backup is not an object: %w", ErrInvalidBackup)
		}
		if h, ok := fields["history"]; !ok || string(h) == "null" {
			return model.Ledger{}, fmt.Errorf("backup has no history: %w", ErrInvalidBackup)
		}
		if err := json.Unmarshal(trimmed, &l); err != nil {
			return model.Ledger{}, fmt.Errorf("decode backup: %v: %w", err, ErrInvalidBackup)
		}
	} else {
		var fields map[string]any
		if err := yaml.Unmarshal(trimmed, &fields); err != nil {
			return model.Ledger{}, fmt.Errorf("parse backup: %v: %w", err, ErrInvalidBackup)
		}
		if fields["history"] == nil {
			return model.Ledger{}, fmt.Errorf("backup has no history: %w", ErrInvalidBackup)
		}
		if err := yaml.Unmarshal(trimmed, &l); err != nil {
			return model.Ledger{}, fmt.Errorf("decode backup: %v: %w", err, ErrInvalidBackup)
		}
	}

	if l.History == nil {
		l.History = model.History{}
	}
	return l, nil
}
