package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xssh/internal/errors"
	"xssh/internal/ssh"
)

func TestAggregateAllSucceeded(t *testing.T) {
	results := []*ssh.Result{
		{Host: "a", ExitCode: 0},
		{Host: "b", ExitCode: 0},
	}

	s := Aggregate(results)

	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 0, s.Failed)
	assert.Equal(t, 0, s.WorstExit)
	assert.NoError(t, s.Err())
}

func TestAggregateWorstExitWins(t *testing.T) {
	results := []*ssh.Result{
		{Host: "a", ExitCode: 0},
		{Host: "b", ExitCode: 2},
		{Host: "c", ExitCode: 127},
		{Host: "d", ExitCode: 3},
	}

	s := Aggregate(results)

	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 3, s.Failed)
	assert.Equal(t, 127, s.WorstExit)
}

func TestAggregateConnectionFailureCountsAsOne(t *testing.T) {
	// Connection failures carry exit code 1, but a result can also fail
	// with an error and a zero code. It must still rank as a failure.
	results := []*ssh.Result{
		{Host: "a", ExitCode: 0, Err: fmt.Errorf("connection refused")},
	}

	s := Aggregate(results)

	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.WorstExit)
}

func TestSummaryErrCarriesWorstExit(t *testing.T) {
	s := Summary{Total: 3, Succeeded: 1, Failed: 2, WorstExit: 127}

	err := s.Err()
	require.Error(t, err)

	var fleetErr *errors.FleetError
	require.ErrorAs(t, err, &fleetErr)
	assert.Equal(t, 2, fleetErr.Failed)
	assert.Equal(t, 3, fleetErr.Total)
	assert.Equal(t, 127, fleetErr.WorstExit)
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.Equal(t, 0, s.Total)
	assert.NoError(t, s.Err())
}
