package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/cogsync/cmd/cogsync"
	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/ui/terminal"
	"github.com/charmbracelet/lipgloss"
)

func main() {
	// Ctrl-C cancels the context so watch mode and long runs stop between files
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := cogsync.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// Print the error in red
		errorStyle := lipgloss.NewStyle().Foreground(terminal.ErrorColor).Bold(true)
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(errors.ExitCode(err))
	}
}
