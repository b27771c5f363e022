package core

import (
	"testing"

	"github.com/google/uuid"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestNewJobIDIsV7 checks job IDs are time-ordered UUIDs
func TestNewJobIDIsV7(t *testing.T) {
	parsed, err := uuid.Parse(NewJobID().String())
	if err != nil {
		t.Fatalf("job ID is not a UUID: %v", err)
	}
	if parsed.Version() != 7 {
		t.Errorf("Expected UUID version 7, got %d", parsed.Version())
	}
}

// TestParseJobID tests job ID parsing
func TestParseJobID(t *testing.T) {
	valid := NewJobID().String()
	tests := []struct {
		input    string
		expected JobID
		hasError bool
	}{
		{valid, JobID(valid), false},
		{"  " + valid + " ", JobID(valid), false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseJobID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}
