/*
Package store
File: store.go
Description:
    Save slot backends. Every backend stores opaque snapshot blobs keyed by
    a slot name and satisfies game.Store:

        Save(ctx, slot, blob)            overwrite the slot
        Load(ctx, slot) (blob, found)    found=false for a slot never saved
        Delete(ctx, slot)                deleting a missing slot is not an error

    Backends:
    1. MemoryStore: process-local, used by tests and "-save-dir=memory" runs.
    2. FileStore: one JSON file per slot, replaced atomically.
    3. PostgresStore: one row per slot in the game_saves table.
*/

package store

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidSlot rejects slot names that could escape a directory or a key space.
var ErrInvalidSlot = errors.New("invalid save slot")

var slotRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

func checkSlot(slot string) error {
	if !slotRE.MatchString(slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}
