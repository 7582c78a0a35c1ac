package types

import (
	"time"

	"github.com/google/uuid"
)

// DirectiveSet holds the scheduler resource directives for one job.
// The values are rendered into a batch header and consumed entirely by
// the external scheduler; the launcher never interprets them beyond
// validation and rendering.
type DirectiveSet struct {
	JobName    string
	Partition  string
	QOS        string
	Constraint string
	Nodes      int
	Tasks      int
	Walltime   time.Duration
	Account    string
	// Output and Error may contain the scheduler's %j job-ID token.
	Output   string
	Error    string
	Licenses []string
}

// AnalysisJob is a fully validated launch request, ready for the pipeline.
type AnalysisJob struct {
	JobUID      uuid.UUID
	UserID      string
	ConfigPath  string
	Executable  string
	SubmitDir   string
	Environment string
	Directives  DirectiveSet
	Timeout     time.Duration
	SubmittedAt time.Time
}

type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseStaging    Phase = "staging"
	PhaseActivating Phase = "activating"
	PhaseValidating Phase = "validating"
	PhaseLaunching  Phase = "launching"
	PhaseRunning    Phase = "running"
	PhaseCompleted  Phase = "completed"
)

type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeMissingConfig     Outcome = "missing_config"
	OutcomeMissingExecutable Outcome = "missing_executable"
	OutcomeLaunchFailed      Outcome = "launch_failed"
	OutcomeTimeout           Outcome = "timeout"
	OutcomeCancel            Outcome = "canceled"
)

// PreconditionExitCode is the exit code reported when a required file is
// missing and no launch happens.
const PreconditionExitCode = 1
