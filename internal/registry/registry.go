// Package registry parses host-alias declarations from an SSH client
// configuration file into alias -> address mappings.
//
// Parsing is deliberately permissive: malformed lines are skipped, never
// failing the load, and a missing file yields an empty registry so that
// resolution can fall through to a literal host.
package registry

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Registry holds the matchable host aliases and their resolved addresses.
type Registry struct {
	aliases   []string          // non-wildcard aliases in declaration order
	seen      map[string]bool   // guards against duplicate alias entries
	addresses map[string]string // alias -> Hostname address
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		seen:      make(map[string]bool),
		addresses: make(map[string]string),
	}
}

// Load reads the configuration file at path. A missing file is not an
// error: it returns an empty registry and ok=false so the caller can log a
// warning and proceed.
func Load(path string) (reg *Registry, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), false, nil
		}
		return New(), false, err
	}
	defer f.Close()

	reg, err = Parse(f)
	return reg, err == nil, err
}

// Parse reads Host/Hostname declarations from r.
//
// A Host line may declare several space-separated aliases; the last alias
// listed becomes the current context for subsequent Hostname lines until
// the next Host line. Aliases containing a wildcard marker participate as
// context but never enter the matchable set: they are pattern templates,
// not concrete connection targets.
func Parse(r io.Reader) (*Registry, error) {
	reg := New()
	current := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch {
		case strings.EqualFold(fields[0], "Host") && len(fields) > 1:
			for _, alias := range fields[1:] {
				current = alias
				if strings.Contains(alias, "*") {
					continue
				}
				if !reg.seen[alias] {
					reg.seen[alias] = true
					reg.aliases = append(reg.aliases, alias)
				}
			}
		case strings.EqualFold(fields[0], "Hostname") && len(fields) > 1:
			if current != "" {
				reg.addresses[current] = fields[1]
			}
		}
		// Anything else is another SSH option or a malformed line; both
		// are ignored.
	}
	if err := scanner.Err(); err != nil {
		return reg, err
	}
	return reg, nil
}

// Aliases returns the matchable (non-wildcard) aliases in declaration
// order. The returned slice is a copy.
func (r *Registry) Aliases() []string {
	out := make([]string, len(r.aliases))
	copy(out, r.aliases)
	return out
}

// Address resolves an alias to its declared address, falling back to the
// alias itself when no Hostname was declared for it.
func (r *Registry) Address(alias string) string {
	if addr, ok := r.addresses[alias]; ok {
		return addr
	}
	return alias
}

// Merge adds alias -> address entries from an external source, such as an
// inventory overlay. Wildcard aliases are skipped for the same reason as
// in Parse. Later entries do not displace an existing address.
func (r *Registry) Merge(entries map[string]string) {
	for alias, addr := range entries {
		if strings.Contains(alias, "*") {
			continue
		}
		if !r.seen[alias] {
			r.seen[alias] = true
			r.aliases = append(r.aliases, alias)
		}
		if _, exists := r.addresses[alias]; !exists && addr != "" {
			r.addresses[alias] = addr
		}
	}
}

// Len returns the number of matchable aliases.
func (r *Registry) Len() int {
	return len(r.aliases)
}
