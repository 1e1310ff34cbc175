package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xssh/internal/errors"
	"xssh/internal/registry"
)

func buildRegistry(t *testing.T, src string) *registry.Registry {
	t.Helper()
	reg, err := registry.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return reg
}

func TestResolveSubstringFleet(t *testing.T) {
	reg := buildRegistry(t, `
Host db1.example.com
Host web2.example.com
Host web1.example.com
`)

	set, err := Resolve("web", reg, true)
	require.NoError(t, err)

	assert.Empty(t, set.User)
	assert.Equal(t, []string{"web1.example.com", "web2.example.com"}, set.Hosts)
}

func TestResolveIsDeterministic(t *testing.T) {
	reg := buildRegistry(t, `
Host web3 web1 web2
`)

	first, err := Resolve("web", reg, true)
	require.NoError(t, err)
	second, err := Resolve("web", reg, true)
	require.NoError(t, err)

	assert.Equal(t, first.Hosts, second.Hosts)
}

func TestResolveDoesNotMutateRegistry(t *testing.T) {
	reg := buildRegistry(t, "Host web2\nHost web1\n")
	before := reg.Aliases()

	_, err := Resolve("web", reg, true)
	require.NoError(t, err)

	assert.Equal(t, before, reg.Aliases(), "resolution must leave the registry untouched")
}

func TestResolveSortsBySegments(t *testing.T) {
	reg := buildRegistry(t, `
Host app.prod.example.com
Host app.dev.example.com
Host app.example.com
`)

	set, err := Resolve("app", reg, true)
	require.NoError(t, err)

	// Segment-wise comparison: the two-segment suffix orders the shorter
	// name first, then dev before prod on the second segment.
	assert.Equal(t, []string{
		"app.dev.example.com",
		"app.example.com",
		"app.prod.example.com",
	}, set.Hosts)
}

func TestResolveMatchesCaseInsensitively(t *testing.T) {
	reg := buildRegistry(t, "Host Web1.Example.Com\n")

	set, err := Resolve("wEb", reg, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"Web1.Example.Com"}, set.Hosts)
}

func TestResolveDeduplicatesByAddress(t *testing.T) {
	reg := buildRegistry(t, `
Host web1
    Hostname 10.0.1.10
Host web1.example.com
    Hostname 10.0.1.10
Host web2
    Hostname 10.0.1.20
`)

	set, err := Resolve("web", reg, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.1.10", "10.0.1.20"}, set.Hosts)
}

func TestResolveAmbiguityGate(t *testing.T) {
	reg := buildRegistry(t, "Host web1\nHost web2\n")

	set, err := Resolve("web", reg, false)
	require.Error(t, err)
	assert.Nil(t, set)

	var ambiguous *errors.AmbiguousHostError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "web", ambiguous.Pattern)
	assert.Equal(t, []string{"web1", "web2"}, ambiguous.Candidates)
}

func TestResolveLiteralFallback(t *testing.T) {
	reg := buildRegistry(t, "Host web1\n")

	set, err := Resolve("standalone.example.com", reg, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"standalone.example.com"}, set.Hosts)
}

func TestResolveEmptyRegistryFallsBack(t *testing.T) {
	set, err := Resolve("anything", registry.New(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"anything"}, set.Hosts)
}

func TestResolveSplitsUserOnce(t *testing.T) {
	reg := buildRegistry(t, "Host web1\n")

	set, err := Resolve("admin@web1", reg, false)
	require.NoError(t, err)

	assert.Equal(t, "admin", set.User)
	assert.Equal(t, []string{"web1"}, set.Hosts)
}

func TestResolveUserWithLiteralFallback(t *testing.T) {
	set, err := Resolve("root@10.9.8.7", registry.New(), false)
	require.NoError(t, err)

	assert.Equal(t, "root", set.User)
	assert.Equal(t, []string{"10.9.8.7"}, set.Hosts)
}

func TestCompareSegments(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a.b", "a.c", -1},
		{"a.c", "a.b", 1},
		{"a.b", "a.b", 0},
		{"a", "a.b", -1},
		{"a.b", "a", 1},
		{"web10", "web2", -1}, // lexicographic within a segment
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareSegments(tt.a, tt.b), "compare(%q, %q)", tt.a, tt.b)
	}
}
