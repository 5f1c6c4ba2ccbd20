package types

import (
	"fmt"
	"strings"
)

// Outcome is the result of considering one file during a run.
type Outcome int

const (
	// OutcomeUnchanged: installed bytes already equal the template.
	OutcomeUnchanged Outcome = iota
	// OutcomeUpdated: the file was untouched since the last engine write
	// and the template moved on; template bytes were copied in.
	OutcomeUpdated
	// OutcomeConflict: both sides changed. The installed file is preserved.
	OutcomeConflict
	// OutcomeMissing: a tracked file is absent on disk. Never recreated.
	OutcomeMissing
	// OutcomeLocal: no template counterpart; the file is left as-is.
	OutcomeLocal
	// OutcomeAdded: discovery copied a new template file in.
	OutcomeAdded
	// OutcomeError: a per-file failure; the run continued.
	OutcomeError
	// OutcomeModified: verify found bytes differing from the recorded fingerprint.
	OutcomeModified
)

var outcomeNames = map[Outcome]string{
	OutcomeUnchanged: "unchanged",
	OutcomeUpdated:   "updated",
	OutcomeConflict:  "preserved",
	OutcomeMissing:   "missing",
	OutcomeLocal:     "local",
	OutcomeAdded:     "added",
	OutcomeError:     "error",
	OutcomeModified:  "modified",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText renders the outcome name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for k, v := range outcomeNames {
		if v == s {
			*o = k
			return nil
		}
	}
	if s == "conflict" {
		*o = OutcomeConflict
		return nil
	}
	return fmt.Errorf("unknown outcome %q", string(text))
}

// Wrote reports whether the outcome implies the engine wrote the file.
func (o Outcome) Wrote() bool {
	return o == OutcomeUpdated || o == OutcomeAdded
}

// NeedsAttention reports outcomes an operator should look at.
func (o Outcome) NeedsAttention() bool {
	return o == OutcomeConflict || o == OutcomeMissing || o == OutcomeError || o == OutcomeModified
}
