package services

import "github.com/google/uuid"

// newID allocates the opaque identifiers used as public link tokens and
// primary keys.
func newID() string {
	return uuid.New().String()
}
