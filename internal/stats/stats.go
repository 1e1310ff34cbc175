// Package stats aggregates per-host results into a run summary.
package stats

import (
	"time"

	"xssh/internal/errors"
	"xssh/internal/ssh"
)

// Summary describes a completed run: how many hosts succeeded, how many
// failed, and the worst per-host exit code observed.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	WorstExit int
	Duration  time.Duration
}

// Aggregate folds an ordered result list into a summary.
func Aggregate(results []*ssh.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		s.Duration += r.Duration
		if r.Failed() {
			s.Failed++
			code := r.ExitCode
			if code == 0 {
				code = 1
			}
			if code > s.WorstExit {
				s.WorstExit = code
			}
		} else {
			s.Succeeded++
		}
	}
	return s
}

// Err returns nil when every host succeeded, otherwise a FleetError
// carrying the worst exit code for the process to propagate.
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return &errors.FleetError{
		Failed:    s.Failed,
		Total:     s.Total,
		WorstExit: s.WorstExit,
	}
}
