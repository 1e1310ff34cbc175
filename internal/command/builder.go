// Package command converts a user-supplied argument list into a single
// safely-quoted remote command string, handling privilege escalation,
// process substitution, and the mass-mode restricted-command policy.
package command

import (
	"strings"

	"xssh/internal/errors"
)

// shellMetacharacters are the characters that force the quoted sh -c form:
// any of them would be reinterpreted by the remote shell.
const shellMetacharacters = "&|;><$(){}[]*"

// restrictedCommands are rejected outright in mass mode when any of them
// appears anywhere in the joined command text.
var restrictedCommands = []string{"shutdown", "poweroff", "reboot"}

// Builder constructs remote command strings. Build is deterministic and
// side-effect free apart from resolving process-substitution markers,
// which run locally before the command is dispatched.
type Builder struct {
	sudo  bool
	subst *Substitutor
}

// NewBuilder creates a builder. When sudo is set, the final invocation is
// prefixed with the escalation command; the caller must additionally
// request a PTY for the remote session.
func NewBuilder(sudo bool) *Builder {
	return &Builder{
		sudo:  sudo,
		subst: NewSubstitutor(),
	}
}

// Sudo reports whether privilege escalation is enabled.
func (b *Builder) Sudo() bool {
	return b.sudo
}

// Build produces the remote command string for the given tokens.
//
// An empty token list builds the empty command: the caller interprets that
// as a request for an interactive session, which the engine reports as an
// unsupported per-host error. A single token free of shell metacharacters
// is used verbatim. Otherwise every token is individually single-quoted
// (with embedded single quotes escaped) and the result is wrapped as
// `sh -c <quoted tokens>` so the remote shell treats the joined string as
// the argument vector the user intended, not as syntax to reinterpret.
func (b *Builder) Build(tokens []string) (string, error) {
	if len(tokens) == 0 {
		return "", nil
	}

	resolved, err := b.subst.Apply(tokens)
	if err != nil {
		return "", err
	}

	if len(resolved) == 1 && !strings.ContainsAny(resolved[0], shellMetacharacters) {
		return b.escalate(resolved[0]), nil
	}

	quoted := make([]string, len(resolved))
	for i, tok := range resolved {
		quoted[i] = quoteSingle(tok)
	}
	return b.escalate("sh -c " + strings.Join(quoted, " ")), nil
}

// Cleanup removes any temporary files created for process substitution.
// Call it once the run has finished; the remote process reads the files
// while the command executes.
func (b *Builder) Cleanup() {
	b.subst.Cleanup()
}

func (b *Builder) escalate(cmd string) string {
	if b.sudo {
		return "sudo " + cmd
	}
	return cmd
}

// quoteSingle wraps tok in single quotes, escaping embedded single quotes
// so they survive the remote shell.
func quoteSingle(tok string) string {
	return "'" + strings.ReplaceAll(tok, "'", `'\''`) + "'"
}

// ValidateMass rejects commands that must never fan out to a fleet. The
// check runs before host resolution or any session creation, so a
// restricted command fails the whole run with no partial execution.
func ValidateMass(tokens []string) error {
	joined := strings.Join(tokens, " ")
	for _, forbidden := range restrictedCommands {
		if strings.Contains(joined, forbidden) {
			return &errors.RestrictedCommandError{Token: forbidden}
		}
	}
	return nil
}
