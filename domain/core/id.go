package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// JobID identifies a batch ingestion job.
type JobID ID

// RequestID correlates a classifier request with the state that issued it.
type RequestID ID

func (id JobID) String() string     { return ID(id).String() }
func (id RequestID) String() string { return ID(id).String() }

// NewJobID returns a fresh, time-ordered job identifier.
func NewJobID() JobID { return JobID(NewID()) }

// NewRequestID returns a fresh request correlation identifier.
func NewRequestID() RequestID { return RequestID(NewID()) }

// ParseJobID parses a string into JobID
func ParseJobID(s string) (JobID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("job ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("job ID %q is not a valid UUID: %w", s, err)
	}
	return JobID(s), nil
}
