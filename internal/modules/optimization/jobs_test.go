package optimization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReoptimizeJob(t *testing.T) {
	dir := t.TempDir()
	returnsPath := filepath.Join(dir, "returns.csv")
	covariancePath := filepath.Join(dir, "covariance.csv")
	require.NoError(t, os.WriteFile(returnsPath, []byte("AAA,0.10\nBBB,0.15\n"), 0644))
	require.NoError(t, os.WriteFile(covariancePath, []byte("0.04,0.01\n0.01,0.0225\n"), 0644))

	repo := testRepo(t)
	service := NewOptimizerService(zerolog.Nop())
	job := NewReoptimizeJob(returnsPath, covariancePath, service, repo, zerolog.Nop())

	assert.Equal(t, "reoptimize", job.Name())
	require.NoError(t, job.Run())

	runs, err := repo.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, MethodMinVariance, runs[0].Method)
	assert.Equal(t, []string{"AAA", "BBB"}, runs[0].Labels)
	assert.True(t, runs[0].Result.Converged)
}

func TestReoptimizeJob_MissingInput(t *testing.T) {
	repo := testRepo(t)
	service := NewOptimizerService(zerolog.Nop())
	job := NewReoptimizeJob("/nonexistent/returns.csv", "/nonexistent/cov.csv", service, repo, zerolog.Nop())

	assert.Error(t, job.Run())
}
