package session

import (
	"fmt"
	"strings"
)

// Policy decides what happens when a persisted transcript is found at boot.
type Policy string

const (
	// PolicyPrompt asks the visitor to restore or start over.
	PolicyPrompt Policy = "prompt"
	// PolicyAuto restores without asking.
	PolicyAuto Policy = "auto"
	// PolicyNever ignores the saved transcript.
	PolicyNever Policy = "never"
)

// ParsePolicy accepts a policy name case-insensitively. Empty means prompt.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyPrompt, nil
	case PolicyPrompt, PolicyAuto, PolicyNever:
		return p, nil
	default:
		return "", fmt.Errorf("unknown restore policy %q (want prompt, auto or never)", s)
	}
}
