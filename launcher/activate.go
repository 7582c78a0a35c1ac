package launcher

import (
	"context"
	"fmt"
	"io"

	"github.com/polarclim/analysis_launcher/slurm"
)

// Activator switches the software environment before a launch. The
// deactivate-then-activate sequence matches how analysis environments
// are staged on the clusters; failures are reported through the output
// writer only, since a broken environment surfaces later as a launch
// failure anyway.
type Activator struct {
	runner  slurm.Runner
	manager string
}

func NewActivator(runner slurm.Runner) *Activator {
	return &Activator{runner: runner, manager: "conda"}
}

func (a *Activator) Activate(ctx context.Context, env, dir string, out io.Writer) error {
	script := fmt.Sprintf("%s deactivate >/dev/null 2>&1; %s activate %s", a.manager, a.manager, env)

	code, err := a.runner.Run(ctx, slurm.RunOptions{
		Name:         "sh",
		Args:         []string{"-lc", script},
		Dir:          dir,
		OutputWriter: out,
	})
	if err != nil {
		return fmt.Errorf("environment activation could not run: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("environment activation for %q exited with code %d", env, code)
	}
	return nil
}
