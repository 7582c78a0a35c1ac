package slurm

import (
	"context"
	"fmt"
	"io"
	"strconv"
)

const (
	defaultLaunchCmd = "srun"
	defaultCancelCmd = "scancel"
	defaultQueueCmd  = "squeue"
)

// LaunchSpec describes a single parallel-launch invocation.
type LaunchSpec struct {
	Nodes      int
	Tasks      int
	Executable string
	Args       []string
	Dir        string
	Env        []string
	Output     io.Writer
}

type Client struct {
	runner    Runner
	launchCmd string
	cancelCmd string
	queueCmd  string
}

type ClientOption func(*Client)

// WithCommands overrides the scheduler command names, mainly for sites
// that front Slurm with wrapper binaries.
func WithCommands(launch, cancel, queue string) ClientOption {
	return func(c *Client) {
		c.launchCmd = launch
		c.cancelCmd = cancel
		c.queueCmd = queue
	}
}

func NewClient(runner Runner, opts ...ClientOption) *Client {
	c := &Client{
		runner:    runner,
		launchCmd: defaultLaunchCmd,
		cancelCmd: defaultCancelCmd,
		queueCmd:  defaultQueueCmd,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Launch runs the executable under the scheduler's parallel-launch
// command and returns the child's exit code. Exactly one invocation is
// made per call; nothing is retried.
func (c *Client) Launch(ctx context.Context, spec LaunchSpec) (int, error) {
	if spec.Executable == "" {
		return -1, fmt.Errorf("launch: executable is required")
	}
	if spec.Nodes < 1 || spec.Tasks < 1 {
		return -1, fmt.Errorf("launch: need at least one node and one task, got -N %d -n %d", spec.Nodes, spec.Tasks)
	}

	args := []string{
		"-N", strconv.Itoa(spec.Nodes),
		"-n", strconv.Itoa(spec.Tasks),
		spec.Executable,
	}
	args = append(args, spec.Args...)

	code, err := c.runner.Run(ctx, RunOptions{
		Name:         c.launchCmd,
		Args:         args,
		Dir:          spec.Dir,
		Env:          spec.Env,
		OutputWriter: spec.Output,
	})
	if err != nil {
		return -1, fmt.Errorf("failed to run %s: %w", c.launchCmd, err)
	}
	return code, nil
}

// Cancel asks the scheduler to terminate the named job.
func (c *Client) Cancel(ctx context.Context, jobName string) error {
	code, err := c.runner.Run(ctx, RunOptions{
		Name: c.cancelCmd,
		Args: []string{"--name", jobName},
	})
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", c.cancelCmd, err)
	}
	if code != 0 {
		return fmt.Errorf("%s exited with code %d", c.cancelCmd, code)
	}
	return nil
}
