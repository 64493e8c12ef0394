// Package scheduler wires up the cron job that periodically re-submits the
// configured default crawl batch.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"trendhire/internal/core/crawl"
	"trendhire/internal/logger"
	"trendhire/internal/model"
)

type Scheduler struct {
	cron  *cron.Cron
	crawl *crawl.Service
	batch model.BatchRequest
	spec  string // cron spec, e.g. "@every 6h"
	log   *logger.Logger
}

// New creates a scheduler that enqueues batch on each tick of spec.
func New(crawlSvc *crawl.Service, batch model.BatchRequest, spec string) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		crawl: crawlSvc,
		batch: batch,
		spec:  spec,
		log:   logger.New("Scheduler"),
	}
}

// Start registers the job and starts the cron loop. The batch is also
// enqueued once immediately so results exist before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.enqueue(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.LogInfof("cron started, spec=%s query=%q", s.spec, s.batch.Query)

	go s.enqueue(ctx)
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.LogInfo("cron stopped")
}

func (s *Scheduler) enqueue(ctx context.Context) {
	id, err := s.crawl.Enqueue(ctx, s.batch)
	if err != nil {
		s.log.LogErrorf("scheduled batch enqueue failed: %v", err)
		return
	}
	s.log.LogInfof("scheduled batch enqueued as job %s", id)
}
