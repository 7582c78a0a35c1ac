package launcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/polarclim/analysis_launcher/jobsession"
	"github.com/polarclim/analysis_launcher/slurm"
	"github.com/polarclim/analysis_launcher/types"
	"github.com/stretchr/testify/assert"
)

// scriptedRunner replays per-command exit codes and records every call.
type scriptedRunner struct {
	mu        sync.Mutex
	calls     []slurm.RunOptions
	exitCodes map[string]int // by command name, default 0
	block     chan struct{}  // when set, Run blocks until closed or ctx done
}

func (s *scriptedRunner) Run(ctx context.Context, opts slurm.RunOptions) (int, error) {
	s.mu.Lock()
	s.calls = append(s.calls, opts)
	block := s.block
	s.mu.Unlock()

	if block != nil && opts.Name == "srun" {
		select {
		case <-block:
		case <-ctx.Done():
			return -1, ctx.Err()
		}
	}
	return s.exitCodes[opts.Name], nil
}

func (s *scriptedRunner) callsNamed(name string) []slurm.RunOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []slurm.RunOptions
	for _, c := range s.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func newTestRun(t *testing.T, runner *scriptedRunner, job types.AnalysisJob) (*JobRun, chan types.StreamingJobEvent) {
	t.Helper()
	if runner.exitCodes == nil {
		runner.exitCodes = map[string]int{}
	}
	events := make(chan types.StreamingJobEvent, 100)
	session := jobsession.NewJobSession(job, events)
	client := slurm.NewClient(runner)
	return NewJobRun(context.Background(), job, client, NewActivator(runner), session), events
}

func stagedJob(t *testing.T, withConfig, withExecutable bool) types.AnalysisJob {
	t.Helper()
	dir := t.TempDir()
	if withConfig {
		writeFile(t, dir, "config.run")
	}
	if withExecutable {
		writeFile(t, dir, "run_mpas_analysis")
	}
	return types.AnalysisJob{
		JobUID:      uuid.New(),
		UserID:      "user1",
		ConfigPath:  "config.run",
		Executable:  "./run_mpas_analysis",
		SubmitDir:   dir,
		Environment: "mpas_analysis_env",
		Directives:  types.DirectiveSet{JobName: "mpas_analysis", Nodes: 1, Tasks: 1, Walltime: time.Hour},
		Timeout:     time.Hour,
	}
}

func TestExecute_MissingConfig_NeverLaunches(t *testing.T) {
	runner := &scriptedRunner{}
	job := stagedJob(t, false, true)
	run, _ := newTestRun(t, runner, job)

	outcome, code, err := run.Execute()

	assert.Equal(t, types.OutcomeMissingConfig, outcome)
	assert.Equal(t, types.PreconditionExitCode, code)
	assert.EqualError(t, err, "File config.run not found!")
	assert.Empty(t, runner.callsNamed("srun"), "precondition failure must not reach the scheduler")
}

func TestExecute_MissingExecutable_NeverLaunches(t *testing.T) {
	runner := &scriptedRunner{}
	job := stagedJob(t, true, false)
	run, _ := newTestRun(t, runner, job)

	outcome, code, err := run.Execute()

	assert.Equal(t, types.OutcomeMissingExecutable, outcome)
	assert.Equal(t, types.PreconditionExitCode, code)
	assert.Error(t, err)
	assert.Empty(t, runner.callsNamed("srun"))
}

func TestExecute_Success_LaunchesExactlyOnce(t *testing.T) {
	runner := &scriptedRunner{}
	job := stagedJob(t, true, true)
	run, _ := newTestRun(t, runner, job)

	outcome, code, err := run.Execute()

	assert.Equal(t, types.OutcomeSuccess, outcome)
	assert.Equal(t, 0, code)
	assert.NoError(t, err)

	launches := runner.callsNamed("srun")
	assert.Len(t, launches, 1)
	assert.Equal(t,
		[]string{"-N", "1", "-n", "1", "./run_mpas_analysis", "config.run"},
		launches[0].Args)
	assert.Equal(t, job.SubmitDir, launches[0].Dir,
		"launch must run inside the submission directory")
	assert.Contains(t, launches[0].Env, "OMP_NUM_THREADS=1")
}

func TestExecute_PropagatesChildExitCode(t *testing.T) {
	runner := &scriptedRunner{exitCodes: map[string]int{"srun": 7}}
	job := stagedJob(t, true, true)
	run, _ := newTestRun(t, runner, job)

	outcome, code, err := run.Execute()

	assert.Equal(t, types.OutcomeLaunchFailed, outcome)
	assert.Equal(t, 7, code)
	assert.ErrorContains(t, err, "exited with code 7")
}

func TestExecute_ActivationRunsBeforeChecks(t *testing.T) {
	runner := &scriptedRunner{}
	job := stagedJob(t, false, false)
	run, _ := newTestRun(t, runner, job)

	_, _, _ = run.Execute()

	// Even when both files are missing the activation step has run:
	// activation failures surface later, they never gate the checks.
	assert.Len(t, runner.callsNamed("sh"), 1)
}

func TestExecute_ActivationFailureIsNotFatal(t *testing.T) {
	runner := &scriptedRunner{exitCodes: map[string]int{"sh": 1}}
	job := stagedJob(t, true, true)
	run, _ := newTestRun(t, runner, job)

	outcome, code, err := run.Execute()

	assert.Equal(t, types.OutcomeSuccess, outcome)
	assert.Equal(t, 0, code)
	assert.NoError(t, err)
}

func TestExecute_CancelDuringLaunch(t *testing.T) {
	runner := &scriptedRunner{block: make(chan struct{})}
	job := stagedJob(t, true, true)
	run, _ := newTestRun(t, runner, job)

	done := make(chan struct{})
	var outcome types.Outcome
	var err error
	go func() {
		outcome, _, err = run.Execute()
		close(done)
	}()

	// Wait for the launch to be in flight, then cancel as a user would.
	assert.Eventually(t, func() bool {
		return len(runner.callsNamed("srun")) == 1
	}, time.Second, 5*time.Millisecond)
	run.Cancel(true)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not return after cancellation")
	}

	assert.Equal(t, types.OutcomeCancel, outcome)
	assert.EqualError(t, err, "job canceled by user")
}

func TestExecute_TimeoutDuringLaunch(t *testing.T) {
	runner := &scriptedRunner{block: make(chan struct{})}
	job := stagedJob(t, true, true)
	job.Timeout = 50 * time.Millisecond

	run, _ := newTestRun(t, runner, job)

	outcome, _, err := run.Execute()

	assert.Equal(t, types.OutcomeTimeout, outcome)
	assert.ErrorContains(t, err, "timed out")
}

func TestExecute_EmitsPhaseEvents(t *testing.T) {
	runner := &scriptedRunner{}
	job := stagedJob(t, true, true)
	run, events := newTestRun(t, runner, job)

	_, _, err := run.Execute()
	assert.NoError(t, err)

	var phases []string
	for {
		select {
		case ev := <-events:
			if ev.Type == types.TypeStatus {
				phases = append(phases, ev.Status.Phase)
			}
			continue
		default:
		}
		break
	}

	assert.Equal(t, []string{
		string(types.PhaseStaging),
		string(types.PhaseActivating),
		string(types.PhaseValidating),
		string(types.PhaseLaunching),
		string(types.PhaseRunning),
	}, phases)
}

func TestCancel_AfterFinishIsANoOp(t *testing.T) {
	runner := &scriptedRunner{}
	job := stagedJob(t, true, true)
	run, _ := newTestRun(t, runner, job)

	outcome, _, _ := run.Execute()
	assert.Equal(t, types.OutcomeSuccess, outcome)

	// Must not panic or flip state after the run finished.
	run.Cancel(true)
	assert.NotPanics(t, func() { run.Cancel(false) })
}
