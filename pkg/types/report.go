package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/cogsync/pkg/fingerprint"
)

// Item is the per-file line of a run report.
type Item struct {
	Path     string   `json:"path" yaml:"path"`
	Category Category `json:"category" yaml:"category"`
	Outcome  Outcome  `json:"outcome" yaml:"outcome"`

	Recorded fingerprint.Fingerprint `json:"recorded,omitempty" yaml:"recorded,omitempty"`
	Current  fingerprint.Fingerprint `json:"current,omitempty" yaml:"current,omitempty"`
	Latest   fingerprint.Fingerprint `json:"latest,omitempty" yaml:"latest,omitempty"`

	// Template is the resolved template file, when one exists.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Counts tallies items by outcome.
type Counts struct {
	Updated   int `json:"updated" yaml:"updated"`
	Added     int `json:"added" yaml:"added"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Preserved int `json:"preserved" yaml:"preserved"`
	Missing   int `json:"missing" yaml:"missing"`
	Local     int `json:"local" yaml:"local"`
	Errors    int `json:"errors" yaml:"errors"`
	Modified  int `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// Add counts one outcome.
func (c *Counts) Add(o Outcome) {
	switch o {
	case OutcomeUpdated:
		c.Updated++
	case OutcomeAdded:
		c.Added++
	case OutcomeUnchanged:
		c.Unchanged++
	case OutcomeConflict:
		c.Preserved++
	case OutcomeMissing:
		c.Missing++
	case OutcomeLocal:
		c.Local++
	case OutcomeError:
		c.Errors++
	case OutcomeModified:
		c.Modified++
	}
}

// Writes is the number of files the run wrote (or would write in dry-run).
func (c Counts) Writes() int {
	return c.Updated + c.Added
}

// Summary renders the counts as one line. The five headline counts always
// appear; the others only when non-zero.
func (c Counts) Summary() string {
	parts := []string{
		fmt.Sprintf("%d updated", c.Updated),
		fmt.Sprintf("%d added", c.Added),
		fmt.Sprintf("%d unchanged", c.Unchanged),
		fmt.Sprintf("%d preserved", c.Preserved),
		fmt.Sprintf("%d missing", c.Missing),
	}
	if c.Local > 0 {
		parts = append(parts, fmt.Sprintf("%d local", c.Local))
	}
	if c.Modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", c.Modified))
	}
	if c.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", c.Errors))
	}
	return strings.Join(parts, ", ")
}

// Report summarizes a run for humans and machines.
type Report struct {
	RunID          string        `json:"run_id" yaml:"run_id"`
	Command        string        `json:"command" yaml:"command"`
	DryRun         bool          `json:"dry_run" yaml:"dry_run"`
	InstallRoot    string        `json:"install_root" yaml:"install_root"`
	SourceLocation string        `json:"source_location,omitempty" yaml:"source_location,omitempty"`
	StartedAt      time.Time     `json:"started_at" yaml:"started_at"`
	Duration       time.Duration `json:"duration_ns" yaml:"duration"`
	Counts         Counts        `json:"counts" yaml:"counts"`
	Items          []Item        `json:"items" yaml:"items"`
}

// Append adds items and updates the counts.
func (r *Report) Append(items ...Item) {
	for _, it := range items {
		r.Items = append(r.Items, it)
		r.Counts.Add(it.Outcome)
	}
}

// Attention returns the items an operator should look at.
func (r *Report) Attention() []Item {
	var out []Item
	for _, it := range r.Items {
		if it.Outcome.NeedsAttention() {
			out = append(out, it)
		}
	}
	return out
}
