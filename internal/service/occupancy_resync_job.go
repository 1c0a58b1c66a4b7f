package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const resyncJobTimeout = 2 * time.Minute

// OccupancyResyncJob periodically rebuilds the occupancy cache from storage
type OccupancyResyncJob struct {
	cache   *OccupancyCache
	log     *logrus.Logger
	cron    *cron.Cron
	stopped atomic.Bool
}

func NewOccupancyResyncJob(cache *OccupancyCache, spec string, log *logrus.Logger) (*OccupancyResyncJob, error) {
	job := &OccupancyResyncJob{
		cache: cache,
		log:   log,
		cron:  cron.New(),
	}

	if _, err := job.cron.AddFunc(spec, job.run); err != nil {
		return nil, fmt.Errorf("schedule occupancy resync %q: %w", spec, err)
	}
	return job, nil
}

// Start runs one resync immediately, then follows the schedule
func (j *OccupancyResyncJob) Start(ctx context.Context) {
	if err := j.cache.Resync(ctx); err != nil {
		j.log.Warnf("Failed initial occupancy resync: %+v", err)
	}
	j.cron.Start()
	j.log.Info("Occupancy resync job scheduled")
}

// Stop waits for a running resync to finish. Safe to call multiple times.
func (j *OccupancyResyncJob) Stop() {
	if j.stopped.CompareAndSwap(false, true) {
		<-j.cron.Stop().Done()
		j.log.Info("Occupancy resync job stopped")
	}
}

func (j *OccupancyResyncJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), resyncJobTimeout)
	defer cancel()

	if err := j.cache.Resync(ctx); err != nil {
		j.log.Warnf("Failed scheduled occupancy resync: %+v", err)
	}
}
