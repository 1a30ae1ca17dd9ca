// Package jobs defines River Queue job types for background processing.
//
// Jobs carry no payload; workers read current state from the registry.
//
// Import Path: landledger.io/registry/internal/jobs
package jobs

import (
	"time"

	"github.com/riverqueue/river"
)

// Register adds the registry's workers to workers.
func Register(workers *river.Workers, sweep *IntegritySweepWorker) error {
	return river.AddWorkerSafely(workers, sweep)
}

// PeriodicJobs returns the schedule for recurring jobs. A non-positive
// interval uses DefaultSweepInterval.
func PeriodicJobs(sweepInterval time.Duration) []*river.PeriodicJob {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(sweepInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return IntegritySweepArgs{}, &river.InsertOpts{
					Queue:       river.QueueDefault,
					MaxAttempts: 1,
					UniqueOpts: river.UniqueOpts{
						ByPeriod: sweepInterval,
						ByQueue:  true,
						ByArgs:   true,
					},
				}
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		),
	}
}
