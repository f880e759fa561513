// Package store defines the shared room-state store contract: point
// read/write, transactional update, uniqueness on create, and a push
// subscription per room.
package store

import (
	"context"
	"errors"

	"versebattle/internal/model"
)

var (
	// ErrRoomExists is returned by Create on a room-code collision.
	ErrRoomExists = errors.New("room already exists")

	// ErrNotFound is returned when the room does not exist (expired or purged).
	ErrNotFound = errors.New("room not found")

	// ErrNoChange may be returned by an Update mutator to abort without
	// writing. Update then returns the unmodified state and no error, which
	// is how racing actors absorb duplicate transitions as no-ops.
	ErrNoChange = errors.New("no change")
)

// Event is one push notification from a room subscription. A nil Room with
// Deleted set is the tombstone for a destroyed room.
type Event struct {
	Room    *model.RoomState `json:"room,omitempty"`
	Deleted bool             `json:"deleted,omitempty"`
}

// RoomStore is the persistence and notification backend shared by every
// client adapter. Update must be an atomic read-modify-write: the mutator
// runs against the current state and the write fails (and is retried)
// if another actor modified the room in between.
type RoomStore interface {
	Create(ctx context.Context, room *model.RoomState) error
	Get(ctx context.Context, code string) (*model.RoomState, error)
	Update(ctx context.Context, code string, mutate func(*model.RoomState) error) (*model.RoomState, error)
	Delete(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)

	// Subscribe pushes an Event after every committed write to the room.
	// The returned cancel func releases the subscription.
	Subscribe(ctx context.Context, code string) (<-chan Event, func(), error)
}
