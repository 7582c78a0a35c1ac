package rabbit

import (
	"context"

	"github.com/polarclim/analysis_launcher/log"
	"github.com/polarclim/analysis_launcher/types"
)

type MQResources struct {
	URL         string
	Profiles    map[string]types.DirectiveSet
	JobsCh      chan types.AnalysisJob
	CancelJobCh chan types.CancelJobRequest
	EventsCh    chan types.StreamingJobEvent
}

// StartJobHandlers wires the three MQ loops: job intake, cancellation
// broadcasts and event publishing.
func StartJobHandlers(ctx context.Context, resources MQResources) {
	go func() {
		if err := StartJobConsumer(ctx, resources.URL, resources.Profiles, resources.JobsCh); err != nil {
			log.Logger.WithError(err).Error("MQ error")
		}
	}()

	go func() {
		if err := StartJobCanceller(ctx, resources.URL, resources.CancelJobCh); err != nil {
			log.Logger.WithError(err).Error("MQ error")
		}
	}()

	go func() {
		if err := PublishStreamingEvents(ctx, resources.URL, resources.EventsCh); err != nil {
			log.Logger.WithError(err).Fatal("MQ events publisher error")
		}
	}()
}
