// Package genconfig prints or writes a starter configuration file.
package genconfig

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/cogsync/pkg/config"
	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/paths"
)

// GenConfigOptions holds options for the genconfig command
type GenConfigOptions struct {
	// InstallRoot receives .cogsync.toml when writing a project config.
	InstallRoot string

	// Write writes the file instead of only returning its content.
	Write bool

	// User targets the user config file instead of the installation root.
	User bool

	// Effective renders this loaded configuration instead of the commented
	// defaults.
	Effective *config.Config
}

// GenConfigResult holds the generated content and any file written
type GenConfigResult struct {
	ConfigContent string   `json:"config_content"`
	FilesWritten  []string `json:"files_written"`
}

// GenConfig outputs or writes the configuration
func GenConfig(opts GenConfigOptions) (*GenConfigResult, error) {
	logger := logging.GetLogger("commands.genconfig")

	content := config.GenerateConfigContent()
	if opts.Effective != nil {
		out, err := opts.Effective.EncodeEffective()
		if err != nil {
			return nil, err
		}
		content = string(out)
	}

	result := &GenConfigResult{
		ConfigContent: content,
		FilesWritten:  []string{},
	}

	if !opts.Write {
		logger.Debug().Msg("Outputting config to stdout")
		return result, nil
	}

	targetPath := paths.UserConfigPath()
	if !opts.User {
		if opts.InstallRoot == "" {
			return nil, errors.New(errors.ErrInvalidInput, "no installation root to write to")
		}
		targetPath = filepath.Join(opts.InstallRoot, paths.ProjectConfigFile)
	}

	if _, err := os.Stat(targetPath); err == nil {
		logger.Warn().Str("path", targetPath).Msg("Config file already exists, skipping")
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to create directory for %s", targetPath).
			WithDetail("path", targetPath)
	}
	if err := os.WriteFile(targetPath, []byte(content), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to write config to %s", targetPath).
			WithDetail("path", targetPath)
	}

	logger.Info().Str("path", targetPath).Msg("Written config file")
	result.FilesWritten = append(result.FilesWritten, targetPath)
	return result, nil
}
