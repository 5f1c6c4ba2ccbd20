// Package status provides the status command: a dry-run sync that shows
// what update would do without touching the installation.
package status

import (
	"context"

	"github.com/arthur-debert/cogsync/pkg/clock"
	"github.com/arthur-debert/cogsync/pkg/commands/update"
	"github.com/arthur-debert/cogsync/pkg/fingerprint"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/types"
)

// StatusOptions holds options for the status command
type StatusOptions struct {
	Layout    *paths.Layout
	Source    string
	Algorithm fingerprint.Algorithm
	Clock     clock.Clock
}

// Status classifies every tracked entry and every discoverable template
// file. It never writes and never takes the run lock.
func Status(ctx context.Context, opts StatusOptions) (*types.Report, error) {
	return update.Update(ctx, update.UpdateOptions{
		Layout:    opts.Layout,
		Source:    opts.Source,
		Algorithm: opts.Algorithm,
		Clock:     opts.Clock,
		DryRun:    true,
		Command:   "status",
	})
}
