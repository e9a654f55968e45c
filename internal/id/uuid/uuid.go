// Package uuid generates identifiers for batch runs and API requests.
package uuid

import (
	"fmt"

	guuid "github.com/google/uuid"
)

// Generator produces UUIDv7 identifiers.
type Generator struct{}

// New returns a Generator.
func New() Generator {
	return Generator{}
}

// NewID returns a time-ordered UUID string.
func (Generator) NewID() (string, error) {
	id, err := guuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}
