package optimization

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/orbat/internal/fileio"
)

// ReoptimizeJob recomputes the long-only minimum-variance portfolio from the
// configured input files and persists the result. Registered with the
// scheduler when both input paths are configured.
type ReoptimizeJob struct {
	returnsPath    string
	covariancePath string
	service        *OptimizerService
	runRepo        *RunRepository
	log            zerolog.Logger
}

// NewReoptimizeJob creates a new re-optimization job.
func NewReoptimizeJob(
	returnsPath, covariancePath string,
	service *OptimizerService,
	runRepo *RunRepository,
	log zerolog.Logger,
) *ReoptimizeJob {
	return &ReoptimizeJob{
		returnsPath:    returnsPath,
		covariancePath: covariancePath,
		service:        service,
		runRepo:        runRepo,
		log:            log.With().Str("job", "reoptimize").Logger(),
	}
}

// Name returns the job name.
func (j *ReoptimizeJob) Name() string {
	return "reoptimize"
}

// Run loads the input files, optimizes, and persists the run.
func (j *ReoptimizeJob) Run() error {
	returnsFile, err := fileio.ParseReturns(j.returnsPath)
	if err != nil {
		return fmt.Errorf("reoptimize: %w", err)
	}

	covarianceFile, err := fileio.ParseCovariance(j.covariancePath)
	if err != nil {
		return fmt.Errorf("reoptimize: %w", err)
	}

	labels := returnsFile.Labels
	if len(labels) == 0 {
		labels = covarianceFile.Labels
	}

	run, err := j.service.RunMPT(MPTRequest{
		Returns:    returnsFile.Returns,
		Covariance: covarianceFile.Covariance,
		Labels:     labels,
		LongOnly:   true,
	})
	if err != nil {
		return fmt.Errorf("reoptimize: %w", err)
	}

	if err := j.runRepo.Save(run); err != nil {
		return fmt.Errorf("reoptimize: %w", err)
	}

	j.log.Info().
		Str("uuid", run.ID).
		Int("num_assets", run.NumAssets).
		Bool("converged", run.Result.Converged).
		Float64("risk", run.Result.Risk).
		Msg("Portfolio re-optimized")

	return nil
}
