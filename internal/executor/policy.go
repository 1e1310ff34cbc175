package executor

import (
	"strings"

	"xssh/internal/ssh"
)

// OutputPolicy is a best-effort failure detector for commands that do not
// propagate exit codes faithfully: a nominally successful result whose
// output contains one of the markers is downgraded to ExitCode. It is kept
// separate from the authoritative exit-status check so it can be disabled
// or replaced without touching dispatch.
type OutputPolicy struct {
	Markers  []string // Case-insensitive substrings that mark failure
	ExitCode int      // Exit code assigned on a marker hit
}

// DefaultOutputPolicy downgrades zero-status results whose output
// mentions "error" or "not found" to exit code 127.
func DefaultOutputPolicy() *OutputPolicy {
	return &OutputPolicy{
		Markers:  []string{"error", "not found"},
		ExitCode: 127,
	}
}

// Apply inspects a result and reports whether it was downgraded. Results
// that already failed are left untouched.
func (p *OutputPolicy) Apply(result *ssh.Result) bool {
	if p == nil || result == nil {
		return false
	}
	if result.Err != nil || result.ExitCode != 0 {
		return false
	}
	output := strings.ToLower(result.Output)
	for _, marker := range p.Markers {
		if strings.Contains(output, marker) {
			result.ExitCode = p.ExitCode
			return true
		}
	}
	return false
}
