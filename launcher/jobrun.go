// Package launcher implements the launch pipeline for one analysis job:
// enter the submission directory, activate the software environment,
// verify the required files and hand the executable to the scheduler's
// parallel-launch command.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/polarclim/analysis_launcher/batch"
	"github.com/polarclim/analysis_launcher/jobsession"
	"github.com/polarclim/analysis_launcher/slurm"
	"github.com/polarclim/analysis_launcher/types"
)

// JobRun encapsulates the execution state of a single launch. It is
// created by the dispatcher and owns the chdir -> activate -> validate
// -> launch pipeline.
type JobRun struct {
	ID        uuid.UUID
	Job       types.AnalysisJob
	Session   *jobsession.JobSessionLogger
	client    *slurm.Client
	activator *Activator

	ctx            context.Context
	cancel         context.CancelFunc
	mu             sync.Mutex
	canceledByUser bool
	finished       bool
}

func NewJobRun(
	parentCtx context.Context,
	job types.AnalysisJob,
	client *slurm.Client,
	activator *Activator,
	session *jobsession.JobSessionLogger,
) *JobRun {
	jobCtx, cancel := context.WithTimeout(parentCtx, job.Timeout)

	return &JobRun{
		ID:        job.JobUID,
		Job:       job,
		Session:   session,
		client:    client,
		activator: activator,
		ctx:       jobCtx,
		cancel:    cancel,
	}
}

// Cancel terminates the run.
// If byUser is true, it flags the state so we can distinguish it from a timeout.
func (r *JobRun) Cancel(byUser bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return
	}

	if byUser {
		r.canceledByUser = true
	}
	r.cancel()
}

// Execute runs the full launch pipeline. It returns the outcome, the
// job's exit code and any error that occurred. The exit code equals the
// launched program's exit code, or PreconditionExitCode when a required
// file was missing and nothing was launched.
func (r *JobRun) Execute() (types.Outcome, int, error) {
	defer func() {
		r.mu.Lock()
		r.finished = true
		r.mu.Unlock()
		r.cancel()
	}()

	job := r.Job

	r.Session.SetPhase(types.PhaseStaging,
		fmt.Sprintf("Entering submission directory %s", job.SubmitDir))

	r.Session.SetPhase(types.PhaseActivating,
		fmt.Sprintf("Activating environment %s...", job.Environment))
	envWriter := r.Session.NewLogWriter("environment")
	if err := r.activator.Activate(r.ctx, job.Environment, job.SubmitDir, envWriter); err != nil {
		// Not fatal here: a broken environment shows up as a launch
		// failure or a missing executable below.
		fmt.Fprintf(envWriter, "%v\n", err)
	}
	envWriter.Close()

	// The existence checks run after the directory switch so relative
	// paths resolve against the submission directory.
	r.Session.SetPhase(types.PhaseValidating, "Checking required files...")
	check, diag := VerifyInputs(job.SubmitDir, job.ConfigPath, job.Executable)
	switch check {
	case CheckMissingConfigFile:
		return types.OutcomeMissingConfig, types.PreconditionExitCode, errors.New(diag)
	case CheckMissingExecutable:
		return types.OutcomeMissingExecutable, types.PreconditionExitCode, errors.New(diag)
	}

	r.Session.SetPhase(types.PhaseLaunching,
		fmt.Sprintf("Launching %s with -N %d -n %d",
			job.Executable, job.Directives.Nodes, job.Directives.Tasks))

	launchWriter := r.Session.NewLogWriter("srun")
	defer launchWriter.Close()

	// The directive header the scheduler saw goes into the log trail,
	// so a run can be replayed as a batch script later.
	if header, err := batch.Render(job.Directives); err == nil {
		fmt.Fprint(launchWriter, header)
	}

	r.Session.SetPhase(types.PhaseRunning, "Analysis running...")
	code, launchErr := r.client.Launch(r.ctx, slurm.LaunchSpec{
		Nodes:      job.Directives.Nodes,
		Tasks:      job.Directives.Tasks,
		Executable: job.Executable,
		Args:       []string{job.ConfigPath},
		Dir:        job.SubmitDir,
		Env:        []string{"OMP_NUM_THREADS=1"},
		Output:     launchWriter,
	})

	r.mu.Lock()
	userCancelled := r.canceledByUser
	r.mu.Unlock()

	if userCancelled {
		return types.OutcomeCancel, code, errors.New("job canceled by user")
	}

	if errors.Is(r.ctx.Err(), context.DeadlineExceeded) {
		return types.OutcomeTimeout, code,
			fmt.Errorf("job timed out after %s", job.Timeout)
	}

	if launchErr != nil {
		return types.OutcomeLaunchFailed, code, launchErr
	}

	if code != 0 {
		return types.OutcomeLaunchFailed, code,
			fmt.Errorf("analysis exited with code %d", code)
	}

	return types.OutcomeSuccess, 0, nil
}
