// Package boot scripts the startup animation shown before input unlocks.
package boot

import (
	"strings"
	"time"
)

// CharDelay is the default delay between revealed characters.
const CharDelay = 25 * time.Millisecond

// UnknownCity is used when the visitor's location could not be resolved.
const UnknownCity = "UNKNOWN"

// Script returns the boot lines for a visitor from city.
func Script(city string) []string {
	city = strings.TrimSpace(city)
	if city == "" {
		city = UnknownCity
	}
	return []string{
		"> connection established",
		"> you've found the terminal",
		"> another visitor from " + strings.ToUpper(city),
		"> speak",
	}
}

// Typewriter reveals a fixed list of lines one rune at a time.
type Typewriter struct {
	lines []string
	line  int
	pos   int
}

// NewTypewriter returns a typewriter positioned before the first rune.
func NewTypewriter(lines []string) *Typewriter {
	return &Typewriter{lines: append([]string(nil), lines...)}
}

// Lines returns the full script.
func (t *Typewriter) Lines() []string { return t.lines }

// Done reports whether every line has been fully revealed.
func (t *Typewriter) Done() bool {
	return t.line >= len(t.lines)
}

// Line returns the index of the line currently being typed.
func (t *Typewriter) Line() int { return t.line }

// Step reveals one more rune. It returns the index of the line that changed,
// its visible text, and whether that line is now complete. Once Done, Step
// returns -1.
func (t *Typewriter) Step() (int, string, bool) {
	if t.Done() {
		return -1, "", true
	}
	runes := []rune(t.lines[t.line])
	if t.pos < len(runes) {
		t.pos++
	}
	idx := t.line
	visible := string(runes[:t.pos])
	complete := t.pos >= len(runes)
	if complete {
		t.line++
		t.pos = 0
	}
	return idx, visible, complete
}
