// Package executor runs a built command against one target host or a
// fleet, isolates per-host failures, and aggregates ordered results.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"xssh/internal/errors"
	"xssh/internal/logging"
	"xssh/internal/progress"
	"xssh/internal/ssh"
)

// Request describes one run. It is built once, immutable, and shared
// read-only across concurrent per-host executions.
type Request struct {
	User    string      // Remote user ("" uses the transport default)
	Command string      // Built remote command ("" means interactive, unsupported)
	Sudo    bool        // Privilege escalation: forces PTY allocation
	Options ssh.Options // Transport settings shared by every session
}

// Engine dispatches commands through a session dialer. Each per-host
// execution owns its session and result exclusively; the request is the
// only shared state.
type Engine struct {
	dialer  ssh.Dialer
	logger  *logging.Logger
	policy  *OutputPolicy
	tracker *progress.Tracker
}

// New creates an engine with the default output-heuristic policy.
func New(dialer ssh.Dialer, logger *logging.Logger) *Engine {
	return &Engine{
		dialer: dialer,
		logger: logger,
		policy: DefaultOutputPolicy(),
	}
}

// SetPolicy replaces the output-heuristic policy. A nil policy disables
// the heuristic entirely; the authoritative exit-status check remains.
func (e *Engine) SetPolicy(p *OutputPolicy) {
	e.policy = p
}

// SetTracker attaches a completion tracker updated as fleet hosts finish.
func (e *Engine) SetTracker(t *progress.Tracker) {
	e.tracker = t
}

// RunSingle executes the request against one host. Connection and
// protocol failures become a per-host result with exit code 1 and the
// error text embedded in the captured output; they are never returned as
// an error, so sibling executions cannot be aborted by them.
func (e *Engine) RunSingle(ctx context.Context, host string, req Request) *ssh.Result {
	if req.Command == "" {
		return &ssh.Result{
			Host:     host,
			Output:   fmt.Sprintf("interactive sessions are not supported (no command given for %s)\n", host),
			ExitCode: 1,
			Err:      errors.NewSetupError("interactive sessions are not supported"),
		}
	}

	session, err := e.dialer.Connect(ctx, host, req.User, req.Options)
	if err != nil {
		if e.logger != nil {
			e.logger.LogConnectionError(host, err)
		}
		return &ssh.Result{
			Host:     host,
			Output:   fmt.Sprintf("Connection failed on %s: %v\n", host, err),
			ExitCode: 1,
			Err:      err,
		}
	}
	defer session.Close()

	result := session.Run(req.Command, req.Sudo)
	result.Host = host

	if e.policy.Apply(result) && e.logger != nil {
		e.logger.Error("command output indicates failure",
			"host", host, "exit_code", result.ExitCode)
	}

	if e.logger != nil {
		if result.Err != nil {
			e.logger.LogExecutionError(host, result.Err)
		} else {
			e.logger.LogExecution(host, result.ExitCode, result.Duration)
		}
	}
	return result
}

// RunFleet executes the request on every host concurrently: one worker
// per target, started together and joined together. Each worker owns its
// session and its slot in the result slice, so the final report order is
// the host-list order regardless of completion order. One host's failure
// never cancels or blocks the others.
func (e *Engine) RunFleet(ctx context.Context, hosts []string, req Request) []*ssh.Result {
	start := time.Now()
	if e.logger != nil {
		e.logger.LogFleetStart(len(hosts))
	}

	results := make([]*ssh.Result, len(hosts))
	var wg sync.WaitGroup
	for i, host := range hosts {
		wg.Add(1)
		go func(i int, host string) {
			defer wg.Done()
			results[i] = e.RunSingle(ctx, host, req)
			if e.tracker != nil {
				e.tracker.Update(!results[i].Failed())
			}
		}(i, host)
	}
	wg.Wait()

	if e.tracker != nil {
		e.tracker.Finish()
	}
	if e.logger != nil {
		succeeded := 0
		for _, r := range results {
			if !r.Failed() {
				succeeded++
			}
		}
		e.logger.LogFleetComplete(len(hosts), succeeded, len(hosts)-succeeded, time.Since(start))
	}
	return results
}
