package jobs

import (
	"context"
	"time"

	"culturemap/internal/services"

	"go.uber.org/zap"
)

// SyncJob owns the background reconciliation passes: one on an interval,
// plus detached passes requested through Trigger (every successful login
// requests one). Each pass is a unit of work whose error is consumed and
// logged here; nothing is ever surfaced to the triggering request.
type SyncJob struct {
	service  *services.SyncService
	logger   *zap.Logger
	triggers chan services.SyncOptions
	done     chan struct{}
}

func NewSyncJob(service *services.SyncService, logger *zap.Logger) *SyncJob {
	return &SyncJob{
		service:  service,
		logger:   logger,
		triggers: make(chan services.SyncOptions, 8),
		done:     make(chan struct{}),
	}
}

// Start launches the background worker
func (j *SyncJob) Start(interval time.Duration) {
	go j.run(interval)
}

// Stop shuts the worker down. A pass already underway runs to completion;
// passes have no cancellation mechanism.
func (j *SyncJob) Stop() {
	close(j.done)
}

// Trigger requests a detached sync pass. It never blocks the caller: when
// the queue is full a pass is already pending and the request is dropped.
func (j *SyncJob) Trigger(opts services.SyncOptions) {
	select {
	case j.triggers <- opts:
	default:
		j.logger.Debug("sync trigger dropped, pass already pending")
	}
}

func (j *SyncJob) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case opts := <-j.triggers:
			j.runPass(opts)
		case <-ticker.C:
			j.runPass(services.SyncOptions{})
		}
	}
}

func (j *SyncJob) runPass(opts services.SyncOptions) {
	if err := j.service.Run(context.Background(), opts); err != nil {
		j.logger.Error("background sync failed", zap.Error(err))
	}
}
