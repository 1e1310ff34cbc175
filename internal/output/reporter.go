// Package output renders per-host results and resolution diagnostics.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"xssh/internal/ssh"
)

// Reporter writes results to a destination writer. In verbose mode each
// host's block is introduced by a header line.
type Reporter struct {
	writer  io.Writer
	verbose bool
}

// NewReporter creates a reporter. A nil writer defaults to stdout.
func NewReporter(w io.Writer, verbose bool) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	return &Reporter{writer: w, verbose: verbose}
}

// PrintResult writes one host's captured output.
func (r *Reporter) PrintResult(result *ssh.Result) error {
	if r.verbose {
		if _, err := fmt.Fprintf(r.writer, "--- %s ---\n", result.Host); err != nil {
			return err
		}
	}
	if result.Output == "" {
		return nil
	}
	if _, err := fmt.Fprint(r.writer, result.Output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !strings.HasSuffix(result.Output, "\n") {
		if _, err := fmt.Fprintln(r.writer); err != nil {
			return err
		}
	}
	return nil
}

// PrintFleet writes every host's block in host-set order, after the join
// barrier. Completion order never influences the report.
func (r *Reporter) PrintFleet(results []*ssh.Result) error {
	for _, result := range results {
		if err := r.PrintResult(result); err != nil {
			return err
		}
	}
	return nil
}

// PrintCandidates lists the hosts an ambiguous pattern matched and how to
// proceed.
func (r *Reporter) PrintCandidates(candidates []string) {
	fmt.Fprintln(r.writer, "Multiple hosts detected:")
	for _, host := range candidates {
		fmt.Fprintf(r.writer, "- %s\n", host)
	}
	fmt.Fprintln(r.writer, "Use --mass flag to execute commands on multiple hosts.")
}
