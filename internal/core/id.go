package core

import "github.com/google/uuid"

// NewID generates a fresh task/link identifier for callers that don't
// supply their own (e.g. dataio.ImportJSON for a task entry with no id).
// Split parts do not use it; package splittask derives their IDs.
func NewID() string {
	return uuid.NewString()
}
