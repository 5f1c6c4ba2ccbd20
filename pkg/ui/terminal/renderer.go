// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/arthur-debert/cogsync/pkg/ui/text"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

// Renderer provides rich terminal output: a header, a table of the files
// that need reporting, then a boxed summary.
type Renderer struct {
	output io.Writer
	styles styles
}

// New creates a new terminal renderer
func New(w io.Writer) *Renderer {
	return &Renderer{
		output: w,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

// RenderReport renders a run report with rich terminal formatting
func (r *Renderer) RenderReport(report *types.Report) error {
	var b strings.Builder

	title := r.styles.title.Render("cogsync " + report.Command)
	b.WriteString(title + " " + r.styles.path.Render(report.InstallRoot))
	if report.DryRun {
		b.WriteString(" " + r.styles.muted.Render("(dry run, nothing written)"))
	}
	b.WriteString("\n")
	if report.SourceLocation != "" {
		b.WriteString(r.styles.muted.Render("template: "+report.SourceLocation) + "\n")
	}
	b.WriteString("\n")

	data := pterm.TableData{{"Status", "Path", "Category", "Note"}}
	for _, it := range report.Items {
		if it.Outcome == types.OutcomeUnchanged {
			continue
		}
		data = append(data, []string{
			r.styles.forOutcome(it.Outcome).Render(it.Outcome.String()),
			it.Path,
			r.styles.muted.Render(it.Category.String()),
			text.Note(it),
		})
	}
	if len(data) > 1 {
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		b.WriteString(table + "\n\n")
	}

	b.WriteString(r.styles.box.Render(r.summary(report.Counts)) + "\n")

	if n := len(report.Attention()); n > 0 {
		b.WriteString(r.styles.muted.Render(fmt.Sprintf("%d file(s) need attention", n)) + "\n")
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

// summary colors each count by the outcome it tallies
func (r *Renderer) summary(c types.Counts) string {
	part := func(n int, o types.Outcome) string {
		s := fmt.Sprintf("%d %s", n, o)
		if n == 0 {
			return r.styles.muted.Render(s)
		}
		return r.styles.forOutcome(o).Render(s)
	}
	parts := []string{
		part(c.Updated, types.OutcomeUpdated),
		part(c.Added, types.OutcomeAdded),
		part(c.Unchanged, types.OutcomeUnchanged),
		part(c.Preserved, types.OutcomeConflict),
		part(c.Missing, types.OutcomeMissing),
	}
	if c.Local > 0 {
		parts = append(parts, part(c.Local, types.OutcomeLocal))
	}
	if c.Modified > 0 {
		parts = append(parts, part(c.Modified, types.OutcomeModified))
	}
	if c.Errors > 0 {
		parts = append(parts, r.styles.errText.Render(fmt.Sprintf("%d errors", c.Errors)))
	}
	return strings.Join(parts, r.styles.muted.Render(" · "))
}

// RenderError renders an error with its code highlighted
func (r *Renderer) RenderError(err error) error {
	code := errors.GetErrorCode(err)
	line := r.styles.errText.Render("Error")
	if code != errors.ErrUnknown {
		line += " " + r.styles.errText.Render(string(code))
	}
	_, werr := fmt.Fprintf(r.output, "%s %s\n", line, err.Error())
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
