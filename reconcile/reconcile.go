// Package reconcile periodically compares the launches we believe are
// in flight against the scheduler's queue, so jobs the scheduler lost
// track of do not linger unnoticed.
package reconcile

import (
	"context"

	"github.com/polarclim/analysis_launcher/log"
	"github.com/polarclim/analysis_launcher/slurm"
	"github.com/robfig/cron/v3"
)

// QueueLister is the slice of the scheduler client the reconciler needs.
type QueueLister interface {
	Queue(ctx context.Context) ([]slurm.QueueEntry, error)
}

// ActiveSet reports the scheduler job names of runs currently in flight.
type ActiveSet interface {
	ActiveJobNames() []string
}

// InFlightLister reports job names recorded as accepted but not yet
// finished. Unlike ActiveSet it survives a process restart.
type InFlightLister interface {
	InFlightJobNames(ctx context.Context) ([]string, error)
}

// VanishedCounter is notified once per job that disappeared from the
// scheduler queue while we still consider it active.
type VanishedCounter interface {
	IncVanished()
}

type Reconciler struct {
	queue     QueueLister
	active    ActiveSet
	records   InFlightLister
	collector VanishedCounter
	schedule  string
}

func NewReconciler(queue QueueLister, active ActiveSet, records InFlightLister, collector VanishedCounter) *Reconciler {
	return &Reconciler{
		queue:     queue,
		active:    active,
		records:   records,
		collector: collector,
		schedule:  "@every 5m",
	}
}

// Start runs sweeps on the cron schedule until ctx is done.
func (r *Reconciler) Start(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(r.schedule, func() {
		r.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Logger.Infof("Queue reconciler started (%s)", r.schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Sweep flags active jobs that are absent from the scheduler queue.
// Queue errors only skip the sweep; the scheduler frontend being briefly
// unreachable is routine on busy clusters.
func (r *Reconciler) Sweep(ctx context.Context) {
	entries, err := r.queue.Queue(ctx)
	if err != nil {
		log.Logger.WithError(err).Warn("Queue sweep failed, skipping")
		return
	}

	queued := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		queued[e.Name] = struct{}{}
	}

	// In-memory runs unioned with accepted-but-unfinished records, so
	// jobs taken on before a restart are swept too.
	inFlight := make(map[string]struct{})
	for _, name := range r.active.ActiveJobNames() {
		inFlight[name] = struct{}{}
	}
	if r.records != nil {
		recorded, err := r.records.InFlightJobNames(ctx)
		if err != nil {
			log.Logger.WithError(err).Warn("Could not list recorded in-flight jobs, sweeping in-memory runs only")
		} else {
			for _, name := range recorded {
				inFlight[name] = struct{}{}
			}
		}
	}

	for name := range inFlight {
		if _, ok := queued[name]; !ok {
			log.Logger.Warnf("Job %s is in flight but missing from the scheduler queue", name)
			r.collector.IncVanished()
		}
	}
}
