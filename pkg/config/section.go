// Package config holds the configuration sections shared by the product service binaries.
// Every section validates itself and renders a block of the startup configuration dump.
package config

import (
	"fmt"
	"strings"
)

// Section renders one titled block of the configuration dump.
type Section struct {
	title string
	lines []string
}

func NewSection(title string) *Section {
	return &Section{title: title}
}

// Add appends a "key: value" line.
func (s *Section) Add(key string, value any) *Section {
	s.lines = append(s.lines, fmt.Sprintf("  %s: %v", key, value))
	return s
}

// AddIf appends the line only when cond holds.
func (s *Section) AddIf(cond bool, key string, value any) *Section {
	if cond {
		s.Add(key, value)
	}
	return s
}

func (s *Section) String() string {
	var b strings.Builder
	b.WriteString("\n--- ")
	b.WriteString(s.title)
	b.WriteString(" ---\n")
	for _, l := range s.lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// mask hides a secret while showing whether it is set.
func mask(secret string) string {
	if secret == "" {
		return "<not configured>"
	}
	return "****"
}

// positive collects an error for every duration that is not greater than zero.
func positive(errs []error, durations ...namedDuration) []error {
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be greater than 0, got %v", d.name, d.value))
		}
	}
	return errs
}
