package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Level classifies an activity log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// DefaultLogLimit caps ListLogs when the caller passes a non-positive limit.
const DefaultLogLimit = 100

// ParseLevel maps a user supplied string onto a Level.
func ParseLevel(raw string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelInfo:
		return LevelInfo, true
	case LevelWarning:
		return LevelWarning, true
	case LevelError:
		return LevelError, true
	case LevelSuccess:
		return LevelSuccess, true
	}
	return "", false
}

// ActivityLog is a user-facing history entry.
type ActivityLog struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Level     Level     `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

type activityRow struct {
	ID        int64  `db:"id"`
	Message   string `db:"message"`
	Level     string `db:"level"`
	CreatedAt string `db:"created_at"`
}

// AddLog appends an entry to the activity log, stamped now.
func (s *Store) AddLog(ctx context.Context, level Level, message string) (*ActivityLog, error) {
	return s.AddLogAt(ctx, level, message, time.Time{})
}

// AddLogAt appends an entry with an explicit timestamp. A zero at means now.
func (s *Store) AddLogAt(ctx context.Context, level Level, message string, at time.Time) (*ActivityLog, error) {
	if _, ok := ParseLevel(string(level)); !ok {
		return nil, fmt.Errorf("add log: unknown level %q", level)
	}
	if at.IsZero() {
		at = s.now()
	}
	stamp := at.UTC()
	id, _, err := s.exec(ctx,
		"INSERT INTO activity_logs (message, level, created_at) VALUES (?, ?, ?)",
		message, string(level), stamp.Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity log: %w", err)
	}
	return &ActivityLog{ID: id, Message: message, Level: level, Timestamp: stamp}, nil
}

// ListLogs returns up to limit entries, newest first.
func (s *Store) ListLogs(ctx context.Context, limit int) ([]ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	var rows []activityRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, message, level, created_at FROM activity_logs ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	logs := make([]ActivityLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, ActivityLog{
			ID:        row.ID,
			Message:   row.Message,
			Level:     Level(row.Level),
			Timestamp: parseTimestamp(row.CreatedAt),
		})
	}
	return logs, nil
}

// ClearLogs deletes every entry and then records that it did so.
func (s *Store) ClearLogs(ctx context.Context) error {
	if _, _, err := s.exec(ctx, "DELETE FROM activity_logs"); err != nil {
		return fmt.Errorf("clear activity logs: %w", err)
	}
	_, err := s.AddLog(ctx, LevelInfo, "All logs cleared")
	return err
}
