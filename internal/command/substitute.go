package command

import (
	"os"
	"os/exec"
	"regexp"
	"strings"

	"xssh/internal/errors"
)

// markerPattern matches a well-formed process-substitution marker
// <(inner), where inner contains no nested parentheses.
var markerPattern = regexp.MustCompile(`<\(([^()]*)\)`)

// Substitutor resolves process-substitution markers by running the inner
// command locally, persisting its stdout behind a fresh temp file, and
// replacing the marker with that path. Each occurrence gets its own file,
// written to completion before the remote command is dispatched, so the
// remote reader never blocks on an unstarted producer.
type Substitutor struct {
	paths []string
}

// NewSubstitutor returns an empty substitutor.
func NewSubstitutor() *Substitutor {
	return &Substitutor{}
}

// Apply resolves every marker in every token and returns the rewritten
// token list. The input slice is not modified. A token still containing a
// marker opener after resolution has malformed substitution syntax and
// fails the build.
func (s *Substitutor) Apply(tokens []string) ([]string, error) {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		resolved, err := s.expand(tok)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func (s *Substitutor) expand(tok string) (string, error) {
	for {
		loc := markerPattern.FindStringSubmatchIndex(tok)
		if loc == nil {
			break
		}
		inner := tok[loc[2]:loc[3]]
		path, err := s.capture(inner)
		if err != nil {
			return "", &errors.SubstitutionError{Marker: tok[loc[0]:loc[1]], Cause: err}
		}
		tok = tok[:loc[0]] + path + tok[loc[1]:]
	}

	if idx := strings.Index(tok, "<("); idx >= 0 {
		marker := tok[idx:]
		if len(marker) > 32 {
			marker = marker[:32]
		}
		return "", &errors.SubstitutionError{Marker: marker}
	}
	return tok, nil
}

// capture runs inner through the local shell and writes its stdout to a
// unique temp file. The inner command's exit status is ignored: whatever
// it printed is the substitution payload.
func (s *Substitutor) capture(inner string) (string, error) {
	output, _ := exec.Command("sh", "-c", inner).Output()

	f, err := os.CreateTemp("", "xssh-subst-*")
	if err != nil {
		return "", err
	}
	s.paths = append(s.paths, f.Name())

	if _, err := f.Write(output); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// Paths returns the temp files created so far.
func (s *Substitutor) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Cleanup removes every temp file created by Apply.
func (s *Substitutor) Cleanup() {
	for _, p := range s.paths {
		os.Remove(p)
	}
	s.paths = nil
}
