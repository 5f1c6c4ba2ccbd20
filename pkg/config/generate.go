package config

import (
	"strings"

	"github.com/arthur-debert/cogsync/pkg/errors"
	gotoml "github.com/pelletier/go-toml/v2"
)

// DefaultsContent returns the built-in defaults file as shipped
func DefaultsContent() string {
	return string(defaultConfig)
}

// GenerateConfigContent generates a config file with every value commented
// out, so uncommenting a line is the only edit needed to change it.
func GenerateConfigContent() string {
	return commentOutConfigValues(DefaultsContent())
}

// EncodeEffective renders the merged configuration as TOML.
func (c *Config) EncodeEffective() ([]byte, error) {
	if c.raw == nil {
		return nil, errors.New(errors.ErrInternal, "configuration was not loaded")
	}
	out, err := gotoml.Marshal(c.raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return out, nil
}

// commentOutConfigValues takes the TOML content and comments out all non-comment, non-blank lines
// that contain configuration values (assignments)
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			// Section headers stay so uncommented keys land in the right table
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}

	return strings.Join(result, "\n")
}
