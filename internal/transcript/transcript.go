// Package transcript implements the ordered input/output log rendered by the
// terminal and its JSON persistence format.
package transcript

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes echoed user input from terminal output.
type Kind string

const (
	Input  Kind = "input"
	Output Kind = "output"
)

func (k Kind) valid() bool {
	return k == Input || k == Output
}

// Entry is one rendered line group.
type Entry struct {
	Kind     Kind   `json:"kind"`
	Text     string `json:"text"`
	Animated bool   `json:"animated"`
}

// In returns an input entry.
func In(text string) Entry { return Entry{Kind: Input, Text: text} }

// Out returns an output entry.
func Out(text string) Entry { return Entry{Kind: Output, Text: text} }

// Transcript is append-only except for in-place replacement of existing
// entries and wholesale clear/replace.
type Transcript struct {
	entries []Entry
}

// New returns a transcript holding a copy of entries.
func New(entries ...Entry) *Transcript {
	t := &Transcript{}
	t.Replace(entries)
	return t
}

func (t *Transcript) Len() int { return len(t.entries) }

// Append adds e and returns its index.
func (t *Transcript) Append(e Entry) int {
	t.entries = append(t.entries, e)
	return len(t.entries) - 1
}

// At returns the entry at i.
func (t *Transcript) At(i int) (Entry, bool) {
	if i < 0 || i >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Last returns the most recent entry.
func (t *Transcript) Last() (Entry, bool) {
	return t.At(len(t.entries) - 1)
}

// ReplaceAt overwrites the entry at i. It reports false if i is out of range.
func (t *Transcript) ReplaceAt(i int, e Entry) bool {
	if i < 0 || i >= len(t.entries) {
		return false
	}
	t.entries[i] = e
	return true
}

// ReplaceLast overwrites the most recent entry, appending if the transcript
// is empty.
func (t *Transcript) ReplaceLast(e Entry) {
	if len(t.entries) == 0 {
		t.entries = append(t.entries, e)
		return
	}
	t.entries[len(t.entries)-1] = e
}

// Truncate drops every entry at index n and beyond.
func (t *Transcript) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(t.entries) {
		t.entries = t.entries[:n]
	}
}

func (t *Transcript) Clear() { t.entries = nil }

// Replace swaps the whole transcript for a copy of entries.
func (t *Transcript) Replace(entries []Entry) {
	t.entries = append([]Entry(nil), entries...)
}

// Entries returns a copy of the entries.
func (t *Transcript) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Encode serializes entries as a JSON array.
func Encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// rawEntry keeps pointer fields so absent keys can be told apart from empty
// values.
type rawEntry struct {
	Kind     *Kind   `json:"kind"`
	Text     *string `json:"text"`
	Animated bool    `json:"animated"`
}

// Decode parses a persisted JSON array. Elements that are null, not objects,
// missing kind or text, or carry an unknown kind are dropped. Only a blob
// that is not a JSON array at all is an error.
func Decode(data []byte) ([]Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, msg := range raw {
		var r rawEntry
		if err := json.Unmarshal(msg, &r); err != nil {
			continue
		}
		if r.Kind == nil || r.Text == nil || !r.Kind.valid() {
			continue
		}
		entries = append(entries, Entry{Kind: *r.Kind, Text: *r.Text, Animated: r.Animated})
	}
	return entries, nil
}
