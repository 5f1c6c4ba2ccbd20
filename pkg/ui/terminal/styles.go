package terminal

import (
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

// Color definitions using AdaptiveColor for automatic light/dark mode switching
var (
	SuccessColor = lipgloss.AdaptiveColor{
		Light: "#28A745", // Green
		Dark:  "#4CDD76",
	}

	ErrorColor = lipgloss.AdaptiveColor{
		Light: "#DC3545", // Red
		Dark:  "#FF6B7D",
	}

	WarningColor = lipgloss.AdaptiveColor{
		Light: "#FFC107", // Amber
		Dark:  "#FFD54F",
	}

	InfoColor = lipgloss.AdaptiveColor{
		Light: "#17A2B8", // Cyan
		Dark:  "#4DD0E1",
	}

	HeadingColor = lipgloss.AdaptiveColor{
		Light: "#212529",
		Dark:  "#F8F9FA",
	}

	MutedColor = lipgloss.AdaptiveColor{
		Light: "#6C757D",
		Dark:  "#ADB5BD",
	}

	PathColor = lipgloss.AdaptiveColor{
		Light: "#6C757D",
		Dark:  "#A0A8B0",
	}
)

// styles are bound to one lipgloss renderer so color detection follows the
// writer being rendered to.
type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	path    lipgloss.Style
	errText lipgloss.Style
	box     lipgloss.Style
	outcome map[types.Outcome]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	bold := func(c lipgloss.TerminalColor) lipgloss.Style {
		return r.NewStyle().Foreground(c).Bold(true)
	}
	return styles{
		title:   r.NewStyle().Foreground(HeadingColor).Bold(true),
		muted:   r.NewStyle().Foreground(MutedColor),
		path:    r.NewStyle().Foreground(PathColor).Italic(true),
		errText: bold(ErrorColor),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Padding(0, 1),
		outcome: map[types.Outcome]lipgloss.Style{
			types.OutcomeUnchanged: r.NewStyle().Foreground(MutedColor),
			types.OutcomeUpdated:   bold(SuccessColor),
			types.OutcomeAdded:     bold(InfoColor),
			types.OutcomeConflict:  bold(WarningColor),
			types.OutcomeModified:  bold(WarningColor),
			types.OutcomeMissing:   bold(WarningColor),
			types.OutcomeLocal:     r.NewStyle().Foreground(MutedColor),
			types.OutcomeError:     bold(ErrorColor),
		},
	}
}

func (s styles) forOutcome(o types.Outcome) lipgloss.Style {
	if st, ok := s.outcome[o]; ok {
		return st
	}
	return s.muted
}
