package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/polarclim/analysis_launcher/log"
	"github.com/polarclim/analysis_launcher/types"
)

// LaunchStore records the lifecycle of launch requests.
type LaunchStore interface {
	RecordAccepted(ctx context.Context, job types.AnalysisJob) error
	RecordResult(ctx context.Context, jobID uuid.UUID, outcome types.Outcome, exitCode int, logs []types.LogEvent, startTime time.Time) error
}

type LaunchRepository struct {
	pool Repository
}

// NewLaunchRepository creates a LaunchRepository on top of an existing
// PostgresRepository.
func NewLaunchRepository(pool Repository) *LaunchRepository {
	return &LaunchRepository{pool: pool}
}

var _ LaunchStore = (*LaunchRepository)(nil)

// RecordAccepted inserts the row for a job the dispatcher has taken on.
func (lr *LaunchRepository) RecordAccepted(ctx context.Context, job types.AnalysisJob) error {
	directivesJSON, err := json.Marshal(job.Directives)
	if err != nil {
		return fmt.Errorf("failed to marshal directives: %w", err)
	}

	query := `
		INSERT INTO launch_records (job_uid, user_id, config_path, executable, submit_dir, environment, directives, submitted_at, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	_, err = lr.pool.Exec(ctx, query,
		job.JobUID,
		job.UserID,
		job.ConfigPath,
		job.Executable,
		job.SubmitDir,
		job.Environment,
		string(directivesJSON),
		job.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record accepted job: %w", err)
	}

	return nil
}

// RecordResult stores the terminal outcome for a job.
func (lr *LaunchRepository) RecordResult(
	ctx context.Context,
	jobID uuid.UUID,
	outcome types.Outcome,
	exitCode int,
	logs []types.LogEvent,
	startTime time.Time,
) error {
	if logs == nil {
		log.Logger.Warn("logs is nil, initializing to empty slice")
		logs = []types.LogEvent{}
	}

	logsJSON, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("failed to marshal logs: %w", err)
	}

	duration := time.Since(startTime).Milliseconds()

	query := `
		UPDATE launch_records
		SET outcome = $1,
			exit_code = $2,
			duration = $3,
			logs = $4,
			finished_at = NOW()
		WHERE job_uid = $5`

	_, err = lr.pool.Exec(ctx, query,
		string(outcome),
		exitCode,
		duration,
		string(logsJSON),
		jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to record launch result: %w", err)
	}

	return nil
}

// InFlightJobNames lists the scheduler job names of records that were
// accepted but have no outcome yet. The reconciler compares these with
// the scheduler queue.
func (lr *LaunchRepository) InFlightJobNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT directives->>'JobName'
		FROM launch_records
		WHERE finished_at IS NULL`

	rows, err := lr.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query in-flight jobs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan job name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
