package service

import "github.com/google/uuid"

// generateID produces a UUID v4 string.
func generateID() string {
	return uuid.NewString()
}
