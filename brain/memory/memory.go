// Package memory is the append-only semantic store of past utterances.
// Retrieval is similarity-ranked, never exact match.
package memory

import (
	"context"
	"time"
)

// Source values for a stored record.
const (
	SourceUser = "user"
	SourceBot  = "bot"
)

// Record is one remembered utterance. Immutable once written.
type Record struct {
	ID        string `gorm:"primaryKey;size:36"`
	Text      string `gorm:"not null"`
	Source    string `gorm:"size:8;index"`
	Embedding []byte
	CreatedAt time.Time
}

// Store is the narrow contract the brain depends on. The store is
// append-only: there is deliberately no update or delete.
type Store interface {
	// Save persists one utterance with its source.
	Save(ctx context.Context, text, source string) error
	// Recall returns up to k texts ranked by semantic similarity to the
	// query, most similar first. A degraded store returns an empty slice,
	// never an error the caller has to branch on for the happy path.
	Recall(ctx context.Context, query string, k int) ([]string, error)
	// Count reports how many records are held.
	Count(ctx context.Context) (int64, error)
}
