// cmd/tools/content-lint/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"devstudio-site/pkg/content"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		help(stdout)
		return 1
	}

	switch args[0] {
	case "validate":
		cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
		cmd.SetOutput(stderr)
		path := cmd.String("path", "", "Path to content file (empty checks the bundled content)")
		if err := cmd.Parse(args[1:]); err != nil {
			return 2
		}
		site, err := content.Load(*path)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading content: %v\n", err)
			return 1
		}
		if err := site.Validate(); err != nil {
			var verr *content.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintln(stderr, "Content validation failed:")
				for _, p := range verr.Problems {
					fmt.Fprintf(stderr, "  - %s\n", p)
				}
			} else {
				fmt.Fprintf(stderr, "Content validation failed: %v\n", err)
			}
			return 1
		}
		fmt.Fprintf(stdout, "Content validation passed. Found %d anchors and %d case studies.\n",
			len(site.Anchors()), len(site.Work.CaseStudies))
		return 0

	case "anchors":
		cmd := flag.NewFlagSet("anchors", flag.ContinueOnError)
		cmd.SetOutput(stderr)
		path := cmd.String("path", "", "Path to content file")
		if err := cmd.Parse(args[1:]); err != nil {
			return 2
		}
		site, err := content.Load(*path)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading content: %v\n", err)
			return 1
		}
		for _, a := range site.Anchors() {
			fmt.Fprintf(stdout, "#%s\n", a)
		}
		return 0

	case "export":
		cmd := flag.NewFlagSet("export", flag.ContinueOnError)
		cmd.SetOutput(stderr)
		path := cmd.String("path", "", "Path to content file (empty exports the bundled content)")
		out := cmd.String("out", "", "Destination file")
		if err := cmd.Parse(args[1:]); err != nil {
			return 2
		}
		if *out == "" {
			fmt.Fprintln(stderr, "Error: -out is required for export.")
			cmd.Usage()
			return 1
		}
		site, err := content.Load(*path)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading content: %v\n", err)
			return 1
		}
		if err := content.Save(site, *out); err != nil {
			fmt.Fprintf(stderr, "Error exporting content: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Exported content to %s\n", *out)
		return 0

	case "help":
		help(stdout)
		return 0

	default:
		help(stdout)
		return 1
	}
}

func help(w io.Writer) {
	fmt.Fprintln(w, `
Usage: content-lint <command> [flags]

Commands:
  validate  Check a content file for missing copy, broken anchors and bad links
  anchors   List the in-page anchors in render order
  export    Write the (bundled) content to a file as a starting point for edits
  help      Show this help message

Examples:
  content-lint validate -path configs/content.yaml
  content-lint anchors
  content-lint export -out configs/content.yaml`)
}
