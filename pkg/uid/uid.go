package uid

import "github.com/google/uuid"

// New generates a random request identifier.
func New() string {
	return uuid.NewString()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
