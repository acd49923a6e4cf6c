// Package repository defines the member store interface and its drivers.
package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/okian/magicboard/internal/domain/model"
)

// Store provides read/write access to member activity and valentine notes.
//
// Handles are case-insensitive identities: "Alice" and "alice" address the
// same member. List returns records in first-insertion order; re-upserting an
// existing member replaces its counts without moving it.
type Store interface {
	// List returns every member in insertion order.
	List(ctx context.Context) ([]model.ActivityRecord, error)
	// Get returns one member. Returns ErrNotFound if the handle is unknown.
	Get(ctx context.Context, handle string) (model.ActivityRecord, error)
	// Upsert inserts or replaces a member.
	Upsert(ctx context.Context, rec model.ActivityRecord) error
	// Count returns the number of members.
	Count(ctx context.Context) (int, error)

	// SaveValentine persists a delivered note. Saving a note ID twice keeps one copy.
	SaveValentine(ctx context.Context, v model.Valentine) error
	// Valentines returns notes addressed to handle ordered by SentAt, newest
	// first. Notes sent at the same instant list the last saved first.
	Valentines(ctx context.Context, handle string) ([]model.Valentine, error)

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// handleKey normalizes a handle into its storage identity.
func handleKey(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// sortNewestFirst orders notes by SentAt descending. notes must already be in
// last-saved-first order, which the stable sort keeps for equal times.
func sortNewestFirst(notes []model.Valentine) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].SentAt.After(notes[j].SentAt)
	})
}
