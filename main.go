package main

import (
	"time"

	"github.com/polarclim/analysis_launcher/cancel"
	"github.com/polarclim/analysis_launcher/db"
	"github.com/polarclim/analysis_launcher/dispatch"
	"github.com/polarclim/analysis_launcher/endpoints"
	"github.com/polarclim/analysis_launcher/endpoints/health"
	"github.com/polarclim/analysis_launcher/launcher"
	"github.com/polarclim/analysis_launcher/log"
	"github.com/polarclim/analysis_launcher/metrics"
	"github.com/polarclim/analysis_launcher/rabbit"
	"github.com/polarclim/analysis_launcher/reconcile"
	"github.com/polarclim/analysis_launcher/setup"
	"github.com/polarclim/analysis_launcher/slurm"
	"github.com/polarclim/analysis_launcher/types"
	"github.com/sirupsen/logrus"
)

func main() {
	slots, profilePath, pretty := setup.ParseFlags()
	log.Init(logrus.InfoLevel, pretty)

	resources, err := setup.SetupApp(setup.Overrides{
		LaunchSlots: slots,
		ProfilePath: profilePath,
	})
	if err != nil {
		log.Logger.WithError(err).Fatal("Failed to set up application")
	}
	defer resources.Cancel()
	defer resources.DB.Close()

	jobsCh := make(chan types.AnalysisJob, 2*resources.Cfg.LaunchSlots)
	cancelCh := make(chan types.CancelJobRequest, 16)
	eventsCh := make(chan types.StreamingJobEvent, 256)

	rabbit.StartJobHandlers(resources.Ctx, rabbit.MQResources{
		URL:         resources.Cfg.AMQPURL,
		Profiles:    resources.Profiles,
		JobsCh:      jobsCh,
		CancelJobCh: cancelCh,
		EventsCh:    eventsCh,
	})

	client := slurm.NewClient(slurm.ExecRunner{})
	collector := metrics.NewInMemoryMetricsCollector()

	slotManager, err := dispatch.NewSlotManager(resources.Cfg.LaunchSlots)
	if err != nil {
		log.Logger.WithError(err).Fatal("Invalid launch slot configuration")
	}

	tracker := cancel.NewCancellationTracker(10*time.Minute, time.Minute)
	go tracker.StartGC(resources.Ctx)

	store := db.NewLaunchRepository(resources.DB)

	dispatcher := dispatch.NewLaunchDispatcher(dispatch.LaunchDispatcherConfig{
		Jobs:          jobsCh,
		Cancellations: cancelCh,
		Events:        eventsCh,
		Slots:         slotManager,
		Client:        client,
		Activator:     launcher.NewActivator(slurm.ExecRunner{}),
		Store:         store,
		Tracker:       tracker,
		Collector:     collector,
	})

	reconciler := reconcile.NewReconciler(client, dispatcher, store, collector)
	go func() {
		if err := reconciler.Start(resources.Ctx); err != nil {
			log.Logger.WithError(err).Error("Queue reconciler failed to start")
		}
	}()

	healthRegister := health.NewHealthServiceRegister()
	healthRegister.Register(resources.DB)

	metricsManager := endpoints.NewManager().Register(collector)
	server := endpoints.NewHTTPServer(resources.Cfg.MetricsAddr, metricsManager, healthRegister)
	go server.Run(resources.Ctx)

	log.Logger.Infof("Launcher ready with %d slots", resources.Cfg.LaunchSlots)
	dispatcher.Run(resources.Ctx)
	log.Logger.Info("Launcher shut down cleanly")
}
