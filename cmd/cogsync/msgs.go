package cogsync

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Keep an installed template tree in sync without losing local edits"
	MsgUpdateShort     = "Sync the installation with its template tree"
	MsgStatusShort     = "Show what update would do"
	MsgVerifyShort     = "List tracked files edited since cogsync wrote them"
	MsgPruneShort      = "Drop manifest entries for files that no longer exist"
	MsgWatchShort      = "Re-run update whenever the template tree changes"
	MsgGenConfigShort  = "Print or write a configuration file"
	MsgVersionShort    = "Print version information"
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgWatching      = "Watching %s for changes (Ctrl-C to stop)\n"
	MsgConfigWritten = "Wrote %s\n"
	MsgConfigExists  = "%s already exists, left unchanged\n"
	MsgVersionFormat = "cogsync version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrNoCommand = "no command specified"
	MsgErrNoSource  = "no template source: pass --source or set source.location"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun      = "Compute every outcome without writing anything"
	MsgFlagInstallRoot = "Installation root (default: COGSYNC_INSTALL_ROOT, the git root, or the current directory)"
	MsgFlagSource      = "Template tree to sync from (overrides config and manifest)"
	MsgFlagFormat      = "Report format: auto, term, text, json, yaml, junit"
	MsgFlagAlgorithm   = "Fingerprint algorithm for new entries: sha256 or blake3"
	MsgFlagMetricsFile = "Write run counts to this Prometheus textfile"
	MsgFlagOrphansOnly = "Only prune entries whose template file is also gone"
	MsgFlagDebounce    = "Quiet period after the last change before a run"
	MsgFlagWrite       = "Write the file instead of printing it"
	MsgFlagUser        = "With --write, target the user config file"
	MsgFlagEffective   = "Print the configuration in force instead of the defaults"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/update-long.txt
	msgUpdateLongRaw string
	MsgUpdateLong    = strings.TrimSpace(msgUpdateLongRaw)

	//go:embed msgs/update-example.txt
	msgUpdateExampleRaw string
	MsgUpdateExample    = strings.TrimRight(msgUpdateExampleRaw, "\n")

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/verify-long.txt
	msgVerifyLongRaw string
	MsgVerifyLong    = strings.TrimSpace(msgVerifyLongRaw)

	//go:embed msgs/prune-long.txt
	msgPruneLongRaw string
	MsgPruneLong    = strings.TrimSpace(msgPruneLongRaw)

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)

	//go:embed msgs/fallback-warning.txt
	msgFallbackWarningRaw string
	MsgFallbackWarning    = strings.TrimSpace(msgFallbackWarningRaw) + "\n"

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
