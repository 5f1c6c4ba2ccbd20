// Package verify provides the verify command: compare every tracked file
// with its recorded fingerprint to find local edits. The template tree is
// not consulted.
package verify

import (
	"context"
	"os"
	"time"

	"github.com/arthur-debert/cogsync/pkg/clock"
	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/fingerprint"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/manifest"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/google/uuid"
)

// VerifyOptions holds options for the verify command
type VerifyOptions struct {
	Layout    *paths.Layout
	Algorithm fingerprint.Algorithm
	Clock     clock.Clock
}

// Verify reports unchanged, modified, missing and unreadable entries.
func Verify(ctx context.Context, opts VerifyOptions) (*types.Report, error) {
	logger := logging.GetLogger("commands.verify")
	if opts.Layout == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no installation layout")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	began := time.Now()
	m, err := manifest.NewStore(opts.Layout.ManifestPath()).Load()
	if err != nil {
		return nil, err
	}

	report := &types.Report{
		RunID:          uuid.NewString(),
		Command:        "verify",
		DryRun:         true,
		InstallRoot:    opts.Layout.InstallRoot,
		SourceLocation: m.SourceLocation,
		StartedAt:      opts.Clock.Now(),
		Items:          []types.Item{},
	}

	for _, e := range m.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		item := types.Item{
			Path:     e.Path,
			Category: types.Classify(e.Path),
			Recorded: e.Fingerprint,
		}
		installed := opts.Layout.Installed(e.Path)

		if _, err := os.Stat(installed); os.IsNotExist(err) {
			item.Outcome = types.OutcomeMissing
			item.Message = "tracked file missing"
			report.Append(item)
			continue
		}

		current, err := fingerprint.File(fingerprint.Matching(e.Fingerprint, opts.Algorithm), installed)
		if err != nil {
			logger.Warn().Err(err).Str("path", e.Path).Msg("Cannot fingerprint tracked file")
			item.Outcome = types.OutcomeError
			item.Error = err.Error()
			item.Message = string(errors.GetErrorCode(err))
			report.Append(item)
			continue
		}
		item.Current = current

		if e.Fingerprint.Equal(current) {
			item.Outcome = types.OutcomeUnchanged
		} else {
			item.Outcome = types.OutcomeModified
			item.Message = "differs from the recorded fingerprint"
		}
		report.Append(item)
	}

	report.Duration = time.Since(began)
	logger.Info().
		Int("entries", len(m.Entries)).
		Int("modified", report.Counts.Modified).
		Int("missing", report.Counts.Missing).
		Msg("Verify finished")
	return report, nil
}
