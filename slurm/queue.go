package slurm

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

type QueueEntry struct {
	JobID string
	Name  string
	State string
}

// queueFormat keeps squeue output machine-parseable: id|name|state.
const queueFormat = "%i|%j|%T"

// Queue lists the jobs the scheduler currently knows about. Lines that
// do not match the requested format are skipped rather than failing the
// whole sweep.
func (c *Client) Queue(ctx context.Context) ([]QueueEntry, error) {
	var out bytes.Buffer
	code, err := c.runner.Run(ctx, RunOptions{
		Name:         c.queueCmd,
		Args:         []string{"--noheader", "-o", queueFormat},
		OutputWriter: &out,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", c.queueCmd, err)
	}
	if code != 0 {
		return nil, fmt.Errorf("%s exited with code %d", c.queueCmd, code)
	}

	return parseQueue(out.Bytes()), nil
}

func parseQueue(raw []byte) []QueueEntry {
	var entries []QueueEntry
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != 3 {
			continue
		}
		entries = append(entries, QueueEntry{
			JobID: strings.TrimSpace(fields[0]),
			Name:  strings.TrimSpace(fields[1]),
			State: strings.TrimSpace(fields[2]),
		})
	}
	return entries
}
