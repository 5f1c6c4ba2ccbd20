// Package commands provides high-level command implementations for cogsync.
//
// This package is the orchestration layer between the CLI and the sync
// engine (manifest, reconcile, discovery). Each command lives in its own
// subdirectory:
//   - update/    - Update: reconcile, discover, rebuild the manifest
//   - status/    - Status: a dry-run update
//   - verify/    - Verify: compare installed files with recorded fingerprints
//   - prune/     - Prune: drop manifest entries for missing files
//   - genconfig/ - GenConfig: print or write a starter config
//
// This file re-exports the command functions so callers need one import.
package commands

import (
	"context"

	"github.com/arthur-debert/cogsync/pkg/commands/genconfig"
	"github.com/arthur-debert/cogsync/pkg/commands/prune"
	"github.com/arthur-debert/cogsync/pkg/commands/status"
	"github.com/arthur-debert/cogsync/pkg/commands/update"
	"github.com/arthur-debert/cogsync/pkg/commands/verify"
	"github.com/arthur-debert/cogsync/pkg/types"
)

// Update runs one sync of an installation against its template tree.
type UpdateOptions = update.UpdateOptions

func Update(ctx context.Context, opts UpdateOptions) (*types.Report, error) {
	return update.Update(ctx, opts)
}

// Status reports what Update would do without writing anything.
type StatusOptions = status.StatusOptions

func Status(ctx context.Context, opts StatusOptions) (*types.Report, error) {
	return status.Status(ctx, opts)
}

// Verify reports tracked files whose bytes differ from the manifest.
type VerifyOptions = verify.VerifyOptions

func Verify(ctx context.Context, opts VerifyOptions) (*types.Report, error) {
	return verify.Verify(ctx, opts)
}

// Prune removes manifest entries whose installed file is missing.
type PruneOptions = prune.PruneOptions

func Prune(ctx context.Context, opts PruneOptions) (*types.Report, error) {
	return prune.Prune(ctx, opts)
}

// GenConfig prints or writes the configuration.
type GenConfigOptions = genconfig.GenConfigOptions

func GenConfig(opts GenConfigOptions) (*genconfig.GenConfigResult, error) {
	return genconfig.GenConfig(opts)
}

// ResolveSource picks the template location: an explicit override wins over
// the one recorded in the manifest.
func ResolveSource(override, recorded string) string {
	return update.ResolveSource(override, recorded)
}
