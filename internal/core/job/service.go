package job

import (
	"context"
	"fmt"

	"trendhire/internal/model"
)

// Cache is the persistence the job service needs: keyed JSON records with a
// TTL, plus a change notification channel. The redis platform service
// satisfies it.
type Cache interface {
	CacheGet(ctx context.Context, key string, dest interface{}) error
	CacheSet(ctx context.Context, key string, val interface{}, ttlSeconds int) error
	Publish(ctx context.Context, channel, message string) error
}

type Service struct{ cache Cache }

func NewService(cache Cache) *Service { return &Service{cache: cache} }

func (s *Service) GetStatus(ctx context.Context, jobID string) (*Job, error) {
	var j Job
	if err := s.cache.CacheGet(ctx, key(jobID), &j); err != nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return &j, nil
}

func (s *Service) InitPending(ctx context.Context, jobID, taskName string) error {
	return s.store(ctx, Job{JobID: jobID, TaskName: taskName, Status: StatusPending})
}

func (s *Service) SetProcessing(ctx context.Context, jobID string) error {
	j, err := s.GetStatus(ctx, jobID)
	if err != nil {
		return err
	}
	j.Status = StatusProcessing
	return s.store(ctx, *j)
}

// Complete stores the final report. A report is attached even on failure so
// partial progress is never lost at the job boundary. taskName rebuilds the
// record whole when the pending entry has expired from the cache.
func (s *Service) Complete(ctx context.Context, jobID, taskName string, status Status, report *model.Report, errMsg string) error {
	j, err := s.GetStatus(ctx, jobID)
	if err != nil {
		j = &Job{JobID: jobID, TaskName: taskName}
	}
	if j.TaskName == "" {
		j.TaskName = taskName
	}
	j.Status = status
	j.Report = report
	j.Error = errMsg
	return s.store(ctx, *j)
}

func (s *Service) store(ctx context.Context, j Job) error {
	if err := s.cache.CacheSet(ctx, key(j.JobID), j, ttl(j.Status)); err != nil {
		return err
	}
	// Notify any status listeners
	_ = s.cache.Publish(ctx, key(j.JobID), "updated")
	return nil
}

func key(id string) string { return "job:" + id }

func ttl(s Status) int {
	if s == StatusCompleted || s == StatusFailed {
		return 3600
	}
	return 600
}
