package jobsession

import (
	"bufio"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/polarclim/analysis_launcher/types"
)

// JobSessionLogger turns the steps of one launch into streaming events
// and keeps a buffered copy of log lines for persistence.
type JobSessionLogger struct {
	jobID     uuid.UUID
	userID    string
	out       chan<- types.StreamingJobEvent
	startTime time.Time

	mu       sync.Mutex
	phase    types.Phase
	buffered []types.LogEvent
}

func NewJobSession(job types.AnalysisJob, out chan<- types.StreamingJobEvent) *JobSessionLogger {
	return &JobSessionLogger{
		jobID:     job.JobUID,
		userID:    job.UserID,
		out:       out,
		startTime: time.Now(),
		phase:     types.PhasePending,
	}
}

// SetPhase advances the session phase and emits a status event.
func (s *JobSessionLogger) SetPhase(p types.Phase, msg string) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()

	s.out <- types.StreamingJobEvent{
		JobUID: s.jobID,
		UserID: s.userID,
		Type:   types.TypeStatus,
		Status: &types.StatusEvent{
			Phase:   string(p),
			Message: msg,
		},
	}
}

func (s *JobSessionLogger) currentPhase() types.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// NewLogWriter returns a writer that splits process output into
// per-line log events attributed to the given source.
func (s *JobSessionLogger) NewLogWriter(source string) io.WriteCloser {
	pr, pw := io.Pipe()

	go func() {
		scanner := bufio.NewScanner(pr)
		for scanner.Scan() {
			ev := types.LogEvent{
				Source:  source,
				Phase:   s.currentPhase(),
				Message: scanner.Text() + "\n",
			}

			s.mu.Lock()
			s.buffered = append(s.buffered, ev)
			s.mu.Unlock()

			s.out <- types.StreamingJobEvent{
				JobUID: s.jobID,
				UserID: s.userID,
				Type:   types.TypeLog,
				Log:    &ev,
			}
		}
	}()

	return pw
}

// BufferedLogs returns a copy of every log line seen so far.
func (s *JobSessionLogger) BufferedLogs() []types.LogEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.LogEvent, len(s.buffered))
	copy(out, s.buffered)
	return out
}

func (s *JobSessionLogger) duration() int64 {
	return time.Since(s.startTime).Milliseconds()
}

func (s *JobSessionLogger) StartTime() time.Time {
	return s.startTime
}

// Finish emits the terminal result event for the session.
func (s *JobSessionLogger) Finish(outcome types.Outcome, exitCode int, err error) {
	s.mu.Lock()
	s.phase = types.PhaseCompleted
	s.mu.Unlock()

	errStr := ""
	if err != nil {
		errStr = err.Error()
	}

	s.out <- types.StreamingJobEvent{
		JobUID: s.jobID,
		UserID: s.userID,
		Type:   types.TypeResult,
		Result: &types.ResultEvent{
			Outcome:    outcome,
			ExitCode:   exitCode,
			DurationMs: s.duration(),
			Error:      errStr,
		},
	}
}
