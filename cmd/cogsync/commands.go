package cogsync

import (
	"context"
	"fmt"

	"github.com/arthur-debert/cogsync/internal/version"
	"github.com/arthur-debert/cogsync/pkg/commands"
	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/manifest"
	"github.com/arthur-debert/cogsync/pkg/topics"
	"github.com/arthur-debert/cogsync/pkg/watch"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "cogsync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringVar(&g.installRoot, "install-root", "", MsgFlagInstallRoot)
	pf.StringVar(&g.source, "source", "", MsgFlagSource)
	pf.StringVar(&g.format, "format", "auto", MsgFlagFormat)
	pf.StringVar(&g.algorithm, "algorithm", "sha256", MsgFlagAlgorithm)
	pf.StringVar(&g.metricsFile, "metrics-file", "", MsgFlagMetricsFile)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newUpdateCmd(g))
	rootCmd.AddCommand(newStatusCmd(g))
	rootCmd.AddCommand(newVerifyCmd(g))
	rootCmd.AddCommand(newPruneCmd(g))
	rootCmd.AddCommand(newWatchCmd(g))
	rootCmd.AddCommand(newGenConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newCompletionCmd())

	if _, err := topics.Initialize(rootCmd, topics.Builtin(), topics.Options{
		Renderer: topics.NewGlamourRenderer(),
	}); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

func newUpdateCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update",
		Short:   MsgUpdateShort,
		Long:    MsgUpdateLong,
		Example: MsgUpdateExample,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, g)
			if err != nil {
				return err
			}

			log.Info().
				Str("install_root", s.layout.InstallRoot).
				Bool("dry_run", g.dryRun).
				Msg("Syncing installation")

			report, err := commands.Update(cmd.Context(), commands.UpdateOptions{
				Layout:         s.layout,
				Source:         s.source(),
				Algorithm:      s.cfg.Algorithm(),
				DryRun:         g.dryRun,
				LockStaleAfter: s.cfg.Lock.StaleAfter,
			})
			return s.finish(report, err)
		},
	}
	cmd.Flags().BoolVar(&g.dryRun, "dry-run", false, MsgFlagDryRun)
	return cmd
}

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, g)
			if err != nil {
				return err
			}
			report, err := commands.Status(cmd.Context(), commands.StatusOptions{
				Layout:    s.layout,
				Source:    s.source(),
				Algorithm: s.cfg.Algorithm(),
			})
			return s.finish(report, err)
		},
	}
}

func newVerifyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "verify",
		Short:   MsgVerifyShort,
		Long:    MsgVerifyLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, g)
			if err != nil {
				return err
			}
			report, err := commands.Verify(cmd.Context(), commands.VerifyOptions{
				Layout:    s.layout,
				Algorithm: s.cfg.Algorithm(),
			})
			return s.finish(report, err)
		},
	}
}

func newPruneCmd(g *globalFlags) *cobra.Command {
	var orphansOnly bool

	cmd := &cobra.Command{
		Use:     "prune",
		Short:   MsgPruneShort,
		Long:    MsgPruneLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, g)
			if err != nil {
				return err
			}
			report, err := commands.Prune(cmd.Context(), commands.PruneOptions{
				Layout:         s.layout,
				OrphansOnly:    orphansOnly,
				Source:         s.source(),
				DryRun:         g.dryRun,
				LockStaleAfter: s.cfg.Lock.StaleAfter,
			})
			return s.finish(report, err)
		},
	}
	cmd.Flags().BoolVar(&orphansOnly, "orphans-only", false, MsgFlagOrphansOnly)
	cmd.Flags().BoolVar(&g.dryRun, "dry-run", false, MsgFlagDryRun)
	return cmd
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, g)
			if err != nil {
				return err
			}

			m, err := manifest.NewStore(s.layout.ManifestPath()).Load()
			if err != nil {
				return s.finish(nil, err)
			}
			source := commands.ResolveSource(s.source(), m.SourceLocation)
			if source == "" {
				return s.finish(nil, errors.New(errors.ErrTemplateRoot, MsgErrNoSource))
			}

			w, err := watch.New(watch.Options{
				Root:     source,
				Debounce: s.cfg.Watch.Debounce,
				Run: func(ctx context.Context) error {
					report, err := commands.Update(ctx, commands.UpdateOptions{
						Layout:         s.layout,
						Source:         source,
						Algorithm:      s.cfg.Algorithm(),
						LockStaleAfter: s.cfg.Lock.StaleAfter,
						Command:        "watch",
					})
					return s.finish(report, err)
				},
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), MsgWatching, source)
			return w.Watch(cmd.Context())
		},
	}
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, MsgFlagDebounce)
	return cmd
}

func newGenConfigCmd(g *globalFlags) *cobra.Command {
	var write, user, effective bool

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, g)
			if err != nil {
				return err
			}

			opts := commands.GenConfigOptions{
				InstallRoot: s.layout.InstallRoot,
				Write:       write,
				User:        user,
			}
			if effective {
				opts.Effective = s.cfg
			}

			result, err := commands.GenConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !write {
				_, err = fmt.Fprint(out, result.ConfigContent)
				return err
			}
			if len(result.FilesWritten) == 0 {
				_, err = fmt.Fprintf(out, MsgConfigExists, "configuration file")
				return err
			}
			for _, f := range result.FilesWritten {
				if _, err := fmt.Fprintf(out, MsgConfigWritten, f); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, MsgFlagWrite)
	cmd.Flags().BoolVar(&user, "user", false, MsgFlagUser)
	cmd.Flags().BoolVar(&effective, "effective", false, MsgFlagEffective)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			if helpCmd, _, err := cmd.Root().Find([]string{"help"}); err == nil && helpCmd.Run != nil {
				helpCmd.Run(helpCmd, []string{"topics"})
				return nil
			}
			return errors.New(errors.ErrNotFound, "help command not found")
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
