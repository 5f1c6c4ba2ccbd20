package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/cogsync/cmd/cogsync"
	"github.com/arthur-debert/cogsync/internal/version"
)

// Usage: cogsync-manpage [output-dir]
// Without a directory the root page goes to stdout. With one, a page per
// command is written there (cogsync.1, cogsync-update.1, ...).
func main() {
	rootCmd := cogsync.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "COGSYNC",
		Section: "1",
		Source:  "cogsync " + version.Version,
		Manual:  "cogsync manual",
	}

	var err error
	if len(os.Args) > 1 {
		dir := os.Args[1]
		if err = os.MkdirAll(dir, 0755); err == nil {
			err = doc.GenManTree(rootCmd, header, dir)
		}
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
