package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicBlocks(t *testing.T) {
	src := `
Host web1.example.com
    Hostname 10.0.1.10

Host db1
    Hostname db1.internal.example.com
`
	reg, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"web1.example.com", "db1"}, reg.Aliases())
	assert.Equal(t, "10.0.1.10", reg.Address("web1.example.com"))
	assert.Equal(t, "db1.internal.example.com", reg.Address("db1"))
}

func TestParseMultipleAliasesPerHostLine(t *testing.T) {
	src := `
Host web1 web1.example.com
    Hostname 10.0.1.10
`
	reg, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	// Both aliases are matchable; the Hostname binds to the last one
	// declared on the Host line.
	assert.Equal(t, []string{"web1", "web1.example.com"}, reg.Aliases())
	assert.Equal(t, "10.0.1.10", reg.Address("web1.example.com"))
	assert.Equal(t, "web1", reg.Address("web1"))
}

func TestParseWildcardAliasesAreNotMatchable(t *testing.T) {
	src := `
Host *
    Hostname catchall.example.com

Host web* web1
    Hostname 10.0.1.10
`
	reg, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"web1"}, reg.Aliases())
	assert.Equal(t, "10.0.1.10", reg.Address("web1"))
}

func TestParseUnmappedAliasResolvesToItself(t *testing.T) {
	reg, err := Parse(strings.NewReader("Host bastion\n"))
	require.NoError(t, err)

	assert.Equal(t, "bastion", reg.Address("bastion"))
}

func TestParseIsPermissive(t *testing.T) {
	src := `
# comment line

Host web1
    Hostname 10.0.1.10
this line is not a valid declaration at all
Hostname orphan.without.host.context
Host
    Port 2222
`
	reg, err := Parse(strings.NewReader(src))
	require.NoError(t, err, "malformed lines must never fail the load")

	assert.Equal(t, []string{"web1"}, reg.Aliases())
	assert.Equal(t, "10.0.1.10", reg.Address("web1"))
}

func TestParseDuplicateAliasKeepsFirstAddress(t *testing.T) {
	src := `
Host web1
    Hostname 10.0.1.10
Host web1
    Hostname 10.0.1.99
`
	reg, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"web1"}, reg.Aliases())
	// The later block rebinds the address; the alias itself is listed once.
	assert.Equal(t, "10.0.1.99", reg.Address("web1"))
}

func TestLoadMissingFile(t *testing.T) {
	reg, ok, err := Load(filepath.Join(t.TempDir(), "no-such-config"))
	require.NoError(t, err, "missing registry source is not an error")

	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("Host web1\n    Hostname 10.0.1.10\n"), 0o600))

	reg, ok, err := Load(path)
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, []string{"web1"}, reg.Aliases())
}

func TestMergeOverlay(t *testing.T) {
	reg, err := Parse(strings.NewReader("Host web1\n    Hostname 10.0.1.10\n"))
	require.NoError(t, err)

	reg.Merge(map[string]string{
		"db1":   "db1.internal",
		"web1":  "should.not.displace",
		"skip*": "ignored",
		"cache": "",
	})

	assert.ElementsMatch(t, []string{"web1", "db1", "cache"}, reg.Aliases())
	assert.Equal(t, "10.0.1.10", reg.Address("web1"), "merge must not displace a parsed address")
	assert.Equal(t, "db1.internal", reg.Address("db1"))
	assert.Equal(t, "cache", reg.Address("cache"), "empty overlay address maps the alias to itself")
}
