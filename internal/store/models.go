package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/fortuna/courtside/internal/standings"
)

// Snapshot is a season's standings as computed at TakenAt.
type Snapshot struct {
	ID      uuid.UUID
	Season  int
	TakenAt time.Time
	Entries []standings.Entry
}

// NewSnapshot captures t under a fresh id.
func NewSnapshot(t *standings.Table, takenAt time.Time) *Snapshot {
	return &Snapshot{
		ID:      uuid.New(),
		Season:  t.Season,
		TakenAt: takenAt.UTC(),
		Entries: t.Entries(),
	}
}

// SnapshotInfo describes a stored snapshot without its rows.
type SnapshotInfo struct {
	ID      uuid.UUID
	Season  int
	TakenAt time.Time
	Teams   int
}
