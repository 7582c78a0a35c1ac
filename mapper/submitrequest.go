package mapper

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/polarclim/analysis_launcher/batch"
	"github.com/polarclim/analysis_launcher/types"
)

// Defaults applied when a submit request leaves a field empty. The
// config default is the historical placeholder name; callers normally
// supply their own.
const (
	DefaultConfigPath  = "config.run_name_here"
	DefaultExecutable  = "./run_mpas_analysis"
	DefaultEnvironment = "mpas_analysis"
	DefaultJobName     = "mpas_analysis"
	DefaultWalltime    = time.Hour
)

var envNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// mergeDirectives overlays request directives on a profile, request
// fields winning wherever they are set.
func mergeDirectives(profile, override types.DirectiveSet) types.DirectiveSet {
	out := profile
	if override.JobName != "" {
		out.JobName = override.JobName
	}
	if override.Partition != "" {
		out.Partition = override.Partition
	}
	if override.QOS != "" {
		out.QOS = override.QOS
	}
	if override.Constraint != "" {
		out.Constraint = override.Constraint
	}
	if override.Nodes != 0 {
		out.Nodes = override.Nodes
	}
	if override.Tasks != 0 {
		out.Tasks = override.Tasks
	}
	if override.Walltime != 0 {
		out.Walltime = override.Walltime
	}
	if override.Account != "" {
		out.Account = override.Account
	}
	if override.Output != "" {
		out.Output = override.Output
	}
	if override.Error != "" {
		out.Error = override.Error
	}
	if len(override.Licenses) > 0 {
		out.Licenses = append([]string(nil), override.Licenses...)
	}
	return out
}

// ConvertToAnalysisJob validates a submit request and fills in launcher
// defaults, producing a job the pipeline can run as-is.
func ConvertToAnalysisJob(req *types.SubmitRequest, profiles map[string]types.DirectiveSet) (*types.AnalysisJob, error) {
	jobUID, err := uuid.Parse(req.JobUID)
	if err != nil {
		return nil, fmt.Errorf("invalid job UID %q: %w", req.JobUID, err)
	}

	directives := req.Directives
	if req.Profile != "" {
		profile, ok := profiles[req.Profile]
		if !ok {
			return nil, fmt.Errorf("unknown directive profile %q", req.Profile)
		}
		directives = mergeDirectives(profile, req.Directives)
	}

	if req.WalltimeSpec != "" {
		wt, err := batch.ParseWalltime(req.WalltimeSpec)
		if err != nil {
			return nil, err
		}
		directives.Walltime = wt
	}

	if directives.JobName == "" {
		directives.JobName = DefaultJobName
	}
	if directives.Nodes == 0 {
		directives.Nodes = 1
	}
	if directives.Tasks == 0 {
		directives.Tasks = 1
	}
	if directives.Walltime == 0 {
		directives.Walltime = DefaultWalltime
	}
	if directives.Output == "" {
		directives.Output = directives.JobName + ".o%j"
	}
	if directives.Error == "" {
		directives.Error = directives.JobName + ".e%j"
	}

	if err := batch.Validate(directives); err != nil {
		return nil, err
	}

	environment := req.Environment
	if environment == "" {
		environment = DefaultEnvironment
	}
	if !envNamePattern.MatchString(environment) {
		return nil, fmt.Errorf("invalid environment name %q", environment)
	}

	configPath := req.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	executable := req.Executable
	if executable == "" {
		executable = DefaultExecutable
	}

	if req.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid timeout: %d seconds", req.TimeoutSeconds)
	}
	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	if timeout == 0 {
		// The scheduler enforces walltime externally; the local timeout
		// mirrors it so a hung launch cannot pin a slot forever.
		timeout = directives.Walltime
	}

	return &types.AnalysisJob{
		JobUID:      jobUID,
		UserID:      req.UserID,
		ConfigPath:  configPath,
		Executable:  executable,
		SubmitDir:   req.SubmitDir,
		Environment: environment,
		Directives:  directives,
		Timeout:     timeout,
		SubmittedAt: time.Now(),
	}, nil
}
