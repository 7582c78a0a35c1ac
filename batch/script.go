// Package batch renders scheduler resource directives into batch-script
// headers understood by Slurm-compatible schedulers.
package batch

import (
	"fmt"
	"strings"

	"github.com/polarclim/analysis_launcher/types"
)

// Validate checks that a directive set can be submitted at all.
// Rendering never repairs values; callers fix their requests instead.
func Validate(d types.DirectiveSet) error {
	if d.JobName == "" {
		return fmt.Errorf("directive validation: job name is required")
	}
	if d.Nodes < 1 {
		return fmt.Errorf("directive validation: node count must be at least 1, got %d", d.Nodes)
	}
	if d.Tasks < 1 {
		return fmt.Errorf("directive validation: task count must be at least 1, got %d", d.Tasks)
	}
	if d.Walltime <= 0 {
		return fmt.Errorf("directive validation: walltime must be positive")
	}
	return nil
}

// Render produces the batch header block for a directive set. The line
// order is fixed so scripts are diffable across submissions. Fields left
// empty are omitted rather than rendered blank.
func Render(d types.DirectiveSet) (string, error) {
	if err := Validate(d); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")

	line := func(flag, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "#SBATCH --%s=%s\n", flag, value)
	}

	line("job-name", d.JobName)
	line("partition", d.Partition)
	line("qos", d.QOS)
	line("constraint", d.Constraint)
	line("nodes", fmt.Sprintf("%d", d.Nodes))
	line("ntasks", fmt.Sprintf("%d", d.Tasks))
	line("time", FormatWalltime(d.Walltime))
	line("account", d.Account)
	line("output", d.Output)
	line("error", d.Error)
	if len(d.Licenses) > 0 {
		line("licenses", strings.Join(d.Licenses, ","))
	}

	return b.String(), nil
}
