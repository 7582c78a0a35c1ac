package metrics

// LaunchMetricsCollector counts launch outcomes for the metrics endpoint.
type LaunchMetricsCollector interface {
	IncCurrentLaunches()
	DecCurrentLaunches()
	IncLaunchTotal()
	IncLaunchSuccess()
	IncLaunchFailure()
	IncPreconditionFailed()
	IncLaunchCanceled()
	IncLaunchTimeout()
	IncVanished()
	ObserveLaunchDuration(seconds float64)
	JSON() []byte
}
