// Package dispatch routes queued analysis jobs into launch pipelines
// under a bounded concurrency budget.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/polarclim/analysis_launcher/cancel"
	"github.com/polarclim/analysis_launcher/db"
	"github.com/polarclim/analysis_launcher/jobsession"
	"github.com/polarclim/analysis_launcher/launcher"
	"github.com/polarclim/analysis_launcher/log"
	"github.com/polarclim/analysis_launcher/metrics"
	"github.com/polarclim/analysis_launcher/slurm"
	"github.com/polarclim/analysis_launcher/types"
)

type LaunchDispatcherConfig struct {
	Jobs          <-chan types.AnalysisJob       // receive-only
	Cancellations <-chan types.CancelJobRequest  // receive-only
	Events        chan<- types.StreamingJobEvent // send-only
	Slots         *SlotManager
	Client        *slurm.Client
	Activator     *launcher.Activator
	Store         db.LaunchStore
	Tracker       *cancel.CancellationTracker
	Collector     metrics.LaunchMetricsCollector
}

type LaunchDispatcher struct {
	jobs          <-chan types.AnalysisJob
	cancellations <-chan types.CancelJobRequest
	events        chan<- types.StreamingJobEvent
	slots         *SlotManager
	client        *slurm.Client
	activator     *launcher.Activator
	store         db.LaunchStore
	tracker       *cancel.CancellationTracker
	collector     metrics.LaunchMetricsCollector

	mu     sync.Mutex
	active map[uuid.UUID]*launcher.JobRun
}

func NewLaunchDispatcher(config LaunchDispatcherConfig) *LaunchDispatcher {
	return &LaunchDispatcher{
		jobs:          config.Jobs,
		cancellations: config.Cancellations,
		events:        config.Events,
		slots:         config.Slots,
		client:        config.Client,
		activator:     config.Activator,
		store:         config.Store,
		tracker:       config.Tracker,
		collector:     config.Collector,
		active:        make(map[uuid.UUID]*launcher.JobRun),
	}
}

func (d *LaunchDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-d.cancellations:
			if !ok {
				return
			}
			d.handleCancel(req)
		case job, ok := <-d.jobs:
			// The consumer closes the channel on shutdown; a closed
			// channel must not be mistaken for zero-valued jobs.
			if !ok {
				return
			}
			go d.handleJob(ctx, job)
		}
	}
}

// ActiveJobNames lists the scheduler job names of runs in flight,
// for the queue reconciler.
func (d *LaunchDispatcher) ActiveJobNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]string, 0, len(d.active))
	for _, run := range d.active {
		names = append(names, run.Job.Directives.JobName)
	}
	return names
}

func (d *LaunchDispatcher) handleCancel(req types.CancelJobRequest) {
	d.tracker.Track(req.JobUID)

	d.mu.Lock()
	run := d.active[req.JobUID]
	d.mu.Unlock()

	if run != nil {
		log.Logger.Infof("Cancelling running job %s", req.JobUID)
		run.Cancel(true)
	}
}

func (d *LaunchDispatcher) handleJob(ctx context.Context, job types.AnalysisJob) {
	log.Logger.Infof("Starting job %s", job.JobUID)

	// --- Retry reserving a slot until available or ctx is done ---
	for {
		if err := d.slots.Reserve(job.JobUID); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(200 * time.Millisecond):
			// retry
		}
	}
	defer func() {
		if err := d.slots.Release(job.JobUID); err != nil {
			log.Logger.WithError(err).Error("Slot released twice, should never happen")
		}
	}()

	d.collector.IncLaunchTotal()
	d.collector.IncCurrentLaunches()
	defer d.collector.DecCurrentLaunches()

	session := jobsession.NewJobSession(job, d.events)

	if err := d.store.RecordAccepted(ctx, job); err != nil {
		log.Logger.WithError(err).Error("Failed to record accepted job")
	}

	// A scancel may have arrived before the job itself.
	if d.tracker.IsCancelled(job.JobUID) {
		err := errors.New("job canceled before launch")
		session.Finish(types.OutcomeCancel, -1, err)
		d.recordResult(job, types.OutcomeCancel, -1, session)
		d.collector.IncLaunchCanceled()
		return
	}

	run := launcher.NewJobRun(ctx, job, d.client, d.activator, session)

	d.mu.Lock()
	d.active[job.JobUID] = run
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.active, job.JobUID)
		d.mu.Unlock()
	}()

	outcome, exitCode, err := run.Execute()
	if err != nil {
		log.Logger.WithError(err).Warnf("Job %s finished with outcome %s", job.JobUID, outcome)
	}

	session.Finish(outcome, exitCode, err)
	d.recordResult(job, outcome, exitCode, session)

	switch outcome {
	case types.OutcomeSuccess:
		d.collector.IncLaunchSuccess()
	case types.OutcomeMissingConfig, types.OutcomeMissingExecutable:
		d.collector.IncPreconditionFailed()
	case types.OutcomeCancel:
		d.collector.IncLaunchCanceled()
	case types.OutcomeTimeout:
		d.collector.IncLaunchTimeout()
	default:
		d.collector.IncLaunchFailure()
	}
	d.collector.ObserveLaunchDuration(time.Since(session.StartTime()).Seconds())

	log.Logger.Infof("Finished job %s", job.JobUID)
}

func (d *LaunchDispatcher) recordResult(job types.AnalysisJob, outcome types.Outcome, exitCode int, session *jobsession.JobSessionLogger) {
	ctx, cancelFn := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelFn()

	err := d.store.RecordResult(ctx, job.JobUID, outcome, exitCode, session.BufferedLogs(), session.StartTime())
	if err != nil {
		log.Logger.WithError(err).Error("Failed to record launch result")
	}
}
