// Package slurm wraps the external scheduler commands (srun, scancel,
// squeue) behind a small client so the launch pipeline never shells out
// directly.
package slurm

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

type RunOptions struct {
	Name string
	Args []string
	Dir  string   // working directory for the child, empty means inherit
	Env  []string // appended to the inherited environment
	// OutputWriter receives both stdout and stderr of the child.
	// Optional; output is discarded when nil.
	OutputWriter io.Writer
}

// Runner executes one external command to completion and reports its
// exit code. A non-zero exit code is not an error: the pair (code, nil)
// means the process ran and finished. The error return covers failures
// to start or wait on the process at all.
type Runner interface {
	Run(ctx context.Context, opts RunOptions) (int, error)
}

type ExecRunner struct{}

var _ Runner = (*ExecRunner)(nil)

func (ExecRunner) Run(ctx context.Context, opts RunOptions) (int, error) {
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(cmd.Environ(), opts.Env...)
	}
	if opts.OutputWriter != nil {
		cmd.Stdout = opts.OutputWriter
		cmd.Stderr = opts.OutputWriter
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Propagate the child's exit code unchanged.
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
