// Package archive keeps encoded roster snapshots in a pebble database keyed by
// KSUID, so iteration order follows creation time.
package archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested id
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Entry describes a stored snapshot
type Entry struct {
	ID        ksuid.KSUID `json:"id"`
	Size      int         `json:"size"`
	CreatedAt time.Time   `json:"created_at"`
}

// Archive is a snapshot store backed by pebble
type Archive struct {
	db *pebble.DB
}

// Open opens or creates an archive in dir
func Open(dir string) (*Archive, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", dir, err)
	}
	return &Archive{db: db}, nil
}

// ParseID parses the string form of a snapshot id
func ParseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("invalid snapshot id %q: %w", s, err)
	}
	return id, nil
}

// Put stores data under a fresh id
func (a *Archive) Put(data []byte) (Entry, error) {
	id := ksuid.New()
	if err := a.db.Set(id.Bytes(), data, pebble.Sync); err != nil {
		return Entry{}, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return Entry{ID: id, Size: len(data), CreatedAt: id.Time()}, nil
}

// Get returns a copy of the snapshot data
func (a *Archive) Get(id ksuid.KSUID) ([]byte, error) {
	value, closer, err := a.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", id, err)
	}
	defer closer.Close()

	data := make([]byte, len(value))
	copy(data, value)
	return data, nil
}

// List returns all snapshots, newest first
func (a *Archive) List() ([]Entry, error) {
	iter, err := a.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var entries []Entry
	for valid := iter.Last(); valid; valid = iter.Prev() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			// Not written by this package.
			continue
		}
		entries = append(entries, Entry{
			ID:        id,
			Size:      len(iter.Value()),
			CreatedAt: id.Time(),
		})
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return entries, nil
}

// Delete removes a snapshot
func (a *Archive) Delete(id ksuid.KSUID) error {
	if _, err := a.Get(id); err != nil {
		return err
	}
	if err := a.db.Delete(id.Bytes(), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying database
func (a *Archive) Close() error {
	return a.db.Close()
}
