// Package text formats the help text of the CLI commands.
package text

import (
	"strings"
)

// Indentation is the indentation of example lines.
const Indentation = `  `

// LongDesc trims a long description and strips the indentation of its lines, so that
// descriptions can be written as indented raw strings.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}

	return normalizer{s}.trim().dedent().string
}

// Examples trims the examples and indents every line.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}

	return normalizer{s}.trim().dedent().indent().string
}

type normalizer struct {
	string
}

func (s normalizer) trim() normalizer {
	s.string = strings.TrimSpace(s.string)

	return s
}

func (s normalizer) dedent() normalizer {
	lines := strings.Split(s.string, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s.string = strings.Join(lines, "\n")

	return s
}

func (s normalizer) indent() normalizer {
	lines := strings.Split(s.string, "\n")
	for i, line := range lines {
		lines[i] = Indentation + line
	}
	s.string = strings.Join(lines, "\n")

	return s
}
