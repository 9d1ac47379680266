package natssink

import (
	"testing"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{
			name:     "single value",
			input:    []string{"events"},
			expected: "pickles.events",
		},
		{
			name:     "multiple values",
			input:    []string{"events", "pets"},
			expected: "pickles.events.pets",
		},
		{
			name:     "empty values filtered",
			input:    []string{"events", "", "pets"},
			expected: "pickles.events.pets",
		},
		{
			name:     "camel case conversion",
			input:    []string{"petEvents"},
			expected: "pickles.pet-events",
		},
		{
			name:     "leading upper case",
			input:    []string{"PetEvents"},
			expected: "pickles.pet-events",
		},
		{
			name:     "underscore conversion",
			input:    []string{"pet_events"},
			expected: "pickles.pet-events",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subject(tt.input...); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, "pickles.events"); err == nil {
		t.Errorf("Expected an error for nil connection")
	}
}
