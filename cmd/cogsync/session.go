package cogsync

import (
	"fmt"

	"github.com/arthur-debert/cogsync/pkg/config"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/metrics"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/arthur-debert/cogsync/pkg/ui"
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	verbosity   int
	installRoot string
	source      string
	format      string
	algorithm   string
	metricsFile string
	dryRun      bool
}

// flagKeys maps flags to the configuration keys they override
var flagKeys = map[string]string{
	"source":       "source.location",
	"format":       "output.format",
	"algorithm":    "fingerprint.algorithm",
	"metrics-file": "metrics.textfile",
	"debounce":     "watch.debounce",
}

// session is everything a command needs once flags are parsed
type session struct {
	cfg      *config.Config
	layout   *paths.Layout
	format   ui.Format
	renderer ui.Renderer
}

// newSession locates the installation, loads the configuration with flag
// overrides applied, and picks the report renderer.
func newSession(cmd *cobra.Command, g *globalFlags) (*session, error) {
	logger := logging.GetLogger("cli")

	base, err := paths.New(g.installRoot)
	if err != nil {
		return nil, err
	}
	if base.UsedFallback {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), MsgFallbackWarning, base.InstallRoot)
	}

	cfg, err := config.Load(config.LoadOptions{
		InstallRoot: base.InstallRoot,
		Overrides:   flagOverrides(cmd),
	})
	if err != nil {
		return nil, err
	}

	layout, err := cfg.Layout(base.InstallRoot)
	if err != nil {
		return nil, err
	}
	layout.UsedFallback = base.UsedFallback

	format, err := ui.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("install_root", layout.InstallRoot).
		Str("format", format.String()).
		Msg("session ready")

	return &session{cfg: cfg, layout: layout, format: format, renderer: renderer}, nil
}

// flagOverrides collects the flags the user actually set
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	overrides := map[string]interface{}{}
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		overrides[key] = f.Value.String()
	}
	return overrides
}

// source returns the configured template location, home-expanded
func (s *session) source() string {
	if s.cfg.Source.Location == "" {
		return ""
	}
	return paths.ExpandHome(s.cfg.Source.Location)
}

// finish exports metrics and renders the outcome of a run. Fatal errors
// are rendered too when the format is machine-readable, then returned so
// the exit status reflects them.
func (s *session) finish(report *types.Report, runErr error) error {
	logger := logging.GetLogger("cli")

	if path := s.cfg.Metrics.Textfile; path != "" {
		rec := metrics.NewRecorder()
		rec.Observe(report, runErr)
		if err := rec.WriteTextfile(paths.ExpandHome(path)); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to write metrics textfile")
		}
	}

	if runErr != nil {
		switch s.format {
		case ui.FormatJSON, ui.FormatYAML, ui.FormatJUnit:
			_ = s.renderer.RenderError(runErr)
		}
		return runErr
	}
	return s.renderer.RenderReport(report)
}
