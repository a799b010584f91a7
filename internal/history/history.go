package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gallery/internal/db/sqlc"

	"github.com/google/uuid"
)

// Entry is one applied operation in an image's audit trail.
type Entry struct {
	ID         string         `json:"id"`
	ImageID    int64          `json:"image_id"`
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Log is the append-only operation history backed by the image_history
// table. Entries are removed only when their image row is deleted.
type Log struct {
	queries *sqlc.Queries
	now     func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// New creates a history log over db.
func New(db *sql.DB, opts ...Option) *Log {
	l := &Log{queries: sqlc.New(db), now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Record appends an entry. Failures are logged and returned; callers that
// already changed the image treat them as non-fatal.
func (l *Log) Record(ctx context.Context, imageID int64, operation string, params map[string]any) error {
	err := l.record(ctx, imageID, operation, params)
	if err != nil {
		log.Printf("History: failed to record %s for image %d: %v", operation, imageID, err)
	}
	return err
}

func (l *Log) record(ctx context.Context, imageID int64, operation string, params map[string]any) error {
	if params == nil {
		params = map[string]any{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	_, err = l.queries.CreateHistoryEntry(ctx, sqlc.CreateHistoryEntryParams{
		EntryID:    id.String(),
		ImageID:    imageID,
		Operation:  operation,
		Parameters: string(encoded),
		CreatedAt:  l.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// List returns the entries for imageID, newest first.
func (l *Log) List(ctx context.Context, imageID int64) ([]Entry, error) {
	rows, err := l.queries.ListHistoryEntries(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e := Entry{
			ID:        r.EntryID,
			ImageID:   r.ImageID,
			Operation: r.Operation,
			Timestamp: time.UnixMilli(r.CreatedAt).UTC(),
		}
		if err := json.Unmarshal([]byte(r.Parameters), &e.Parameters); err != nil {
			return nil, fmt.Errorf("decode parameters of %s: %w", r.EntryID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Count returns the number of entries recorded for imageID.
func (l *Log) Count(ctx context.Context, imageID int64) (int64, error) {
	return l.queries.CountHistoryEntries(ctx, imageID)
}
