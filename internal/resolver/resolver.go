// Package resolver matches a user-supplied pattern against the host-alias
// registry to produce an ordered, deduplicated host set.
package resolver

import (
	"sort"
	"strings"

	"xssh/internal/errors"
	"xssh/internal/registry"
)

// HostSet is the outcome of resolving a pattern: the optional user split
// off the pattern and the ordered, deduplicated addresses to connect to.
type HostSet struct {
	User  string
	Hosts []string
}

// Resolve matches pattern against reg and returns the host set.
//
// The pattern is split once on '@' into user and host pattern. Matching is
// a case-insensitive substring test over the non-wildcard aliases, sorted
// segment-wise by their dot-separated components. Matched aliases resolve
// to their addresses and are deduplicated by address, keeping the first
// post-sort occurrence. More than one host without mass mode yields an
// AmbiguousHostError carrying the candidate list; zero matches fall back
// to the host pattern as a literal, directly connectable address.
//
// Resolve never mutates reg: two calls with identical inputs return
// identical ordered host lists.
func Resolve(pattern string, reg *registry.Registry, massMode bool) (*HostSet, error) {
	set := &HostSet{}
	hostPattern := pattern
	if idx := strings.Index(pattern, "@"); idx >= 0 {
		set.User = pattern[:idx]
		hostPattern = pattern[idx+1:]
	}

	aliases := reg.Aliases()
	sortBySegments(aliases)

	needle := strings.ToLower(hostPattern)
	taken := make(map[string]bool)
	for _, alias := range aliases {
		if !strings.Contains(strings.ToLower(alias), needle) {
			continue
		}
		addr := reg.Address(alias)
		if taken[addr] {
			continue
		}
		taken[addr] = true
		set.Hosts = append(set.Hosts, addr)
	}

	if len(set.Hosts) > 1 && !massMode {
		return nil, &errors.AmbiguousHostError{
			Pattern:    hostPattern,
			Candidates: set.Hosts,
		}
	}

	if len(set.Hosts) == 0 {
		set.Hosts = []string{hostPattern}
	}

	return set, nil
}

// sortBySegments orders aliases lexicographically by their dot-separated
// segment sequences, comparing segment by segment rather than as whole
// strings, so "a.b" orders against "a.c" on the second segment.
func sortBySegments(aliases []string) {
	sort.SliceStable(aliases, func(i, j int) bool {
		return compareSegments(aliases[i], aliases[j]) < 0
	})
}

func compareSegments(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}
