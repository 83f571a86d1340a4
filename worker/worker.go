package worker

import (
	"context"
	"sync/atomic"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker long running worker
type Worker interface {
	Run(ctx context.Context) error
}

// OnWork one round of work
type OnWork func(ctx context.Context) error

// BaseJob runs OnWork on a cron spec. A tick is skipped while the previous round is still running.
type BaseJob struct {
	Name   string
	Spec   string
	Cron   *cron.Cron
	OnWork OnWork

	running int32
}

// Run starts the cron and blocks until ctx is done and the running round returned
func (job *BaseJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", job.Name)
	ctx = logger.WithContext(ctx, log)

	job.Cron = cron.New()
	if _, err := job.Cron.AddFunc(job.Spec, func() { _ = job.RunOnce(ctx) }); err != nil {
		log.WithError(err).Errorf("invalid spec %q", job.Spec)
		return err
	}

	log.Infof("started with spec %q", job.Spec)
	job.Cron.Start()

	<-ctx.Done()
	<-job.Cron.Stop().Done()

	log.Infoln("stopped")
	return nil
}

// RunOnce runs one round unless one is in progress
func (job *BaseJob) RunOnce(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return nil
	}
	defer atomic.StoreInt32(&job.running, 0)

	return job.OnWork(ctx)
}
