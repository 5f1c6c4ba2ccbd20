// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/types"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderReport writes one line per item that is not unchanged, then the counts.
func (r *Renderer) RenderReport(report *types.Report) error {
	var b strings.Builder

	header := fmt.Sprintf("%s %s", report.Command, report.InstallRoot)
	if report.DryRun {
		header += " (dry run)"
	}
	b.WriteString(header + "\n")

	width := 0
	for _, it := range report.Items {
		if it.Outcome != types.OutcomeUnchanged && len(it.Outcome.String()) > width {
			width = len(it.Outcome.String())
		}
	}
	for _, it := range report.Items {
		if it.Outcome == types.OutcomeUnchanged {
			continue
		}
		line := fmt.Sprintf("  %-*s  %s", width, it.Outcome, it.Path)
		if note := Note(it); note != "" {
			line += "  " + note
		}
		b.WriteString(line + "\n")
	}

	b.WriteString(report.Counts.Summary() + "\n")
	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	code := errors.GetErrorCode(err)
	var werr error
	if code != errors.ErrUnknown {
		_, werr = fmt.Fprintf(r.output, "Error (%s): %v\n", code, err)
	} else {
		_, werr = fmt.Fprintf(r.output, "Error: %v\n", err)
	}
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

// Note is the human explanation shown next to an item: its error when it
// failed, otherwise its message.
func Note(it types.Item) string {
	if it.Error != "" {
		return it.Error
	}
	return it.Message
}
