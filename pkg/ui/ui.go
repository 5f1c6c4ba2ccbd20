// Package ui renders run reports. It supports terminal (rich), text (plain),
// JSON, YAML and JUnit XML output.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/arthur-debert/cogsync/pkg/ui/json"
	"github.com/arthur-debert/cogsync/pkg/ui/junit"
	"github.com/arthur-debert/cogsync/pkg/ui/terminal"
	"github.com/arthur-debert/cogsync/pkg/ui/text"
	"github.com/arthur-debert/cogsync/pkg/ui/yaml"
)

// Renderer is the common interface for all output renderers.
type Renderer interface {
	// RenderReport renders the result of a run
	RenderReport(report *types.Report) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a new renderer based on the specified format.
// It automatically detects terminal capabilities when format is Auto.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		// Buffers and pipes wrapped in other writers get plain text
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return terminal.New(output), nil
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return json.New(output), nil
	case FormatYAML:
		return yaml.New(output), nil
	case FormatJUnit:
		return junit.New(output), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}
