package crawl

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"trendhire/internal/core/job"
	"trendhire/internal/core/source"
	"trendhire/internal/logger"
	"trendhire/internal/model"
	tasks "trendhire/internal/platform/tasks"
)

// ListingStore persists extracted records. Nil stores are allowed; reports
// are then kept in redis only.
type ListingStore interface {
	SaveListings(ctx context.Context, records []model.ListingRecord) (int, error)
}

type taskPayload struct {
	JobID    string               `json:"job_id"`
	TaskName string               `json:"task_name,omitempty"`
	Requests []model.CrawlRequest `json:"requests"`
}

// Service ties submission, async execution and persistence together.
type Service struct {
	job        *job.Service
	tasks      *tasks.Client
	coord      *Coordinator
	registry   *source.Registry
	store      ListingStore
	maxRetries int
	log        *logger.Logger
}

func NewService(jobSvc *job.Service, taskClient *tasks.Client, coord *Coordinator, registry *source.Registry, store ListingStore, maxRetries int) *Service {
	return &Service{
		job:        jobSvc,
		tasks:      taskClient,
		coord:      coord,
		registry:   registry,
		store:      store,
		maxRetries: maxRetries,
		log:        logger.New("CrawlService"),
	}
}

// Resolve expands a BatchRequest into per-source crawl requests, validating
// every descriptor up front so malformed batches are rejected at submission.
func (s *Service) Resolve(br model.BatchRequest) ([]model.CrawlRequest, error) {
	if br.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	maxPages := br.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	var descriptors []source.Descriptor
	for _, name := range br.Sources {
		d, ok := s.registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		descriptors = append(descriptors, d)
	}
	for _, d := range br.Descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	// Reports are keyed by source name; a batch with two sources sharing a
	// name could not represent both outcomes.
	seen := make(map[string]struct{}, len(descriptors))
	for _, d := range descriptors {
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("duplicate source %q in batch", d.Name)
		}
		seen[d.Name] = struct{}{}
	}

	requests := make([]model.CrawlRequest, 0, len(descriptors))
	for _, d := range descriptors {
		requests = append(requests, model.CrawlRequest{
			Descriptor: d,
			Query:      br.Query,
			Location:   br.Location,
			MaxPages:   maxPages,
		})
	}
	return requests, nil
}

// Enqueue assigns a job id, records it as pending and hands the batch to
// the worker queue.
func (s *Service) Enqueue(ctx context.Context, br model.BatchRequest) (string, error) {
	requests, err := s.Resolve(br)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	payload, err := json.Marshal(taskPayload{JobID: id, TaskName: br.TaskName, Requests: requests})
	if err != nil {
		return "", err
	}
	if err := s.job.InitPending(ctx, id, br.TaskName); err != nil {
		return "", err
	}
	task := asynq.NewTask(tasks.TaskTypeCrawlBatch, payload)
	if err := s.tasks.Enqueue(task, "default", s.maxRetries); err != nil {
		return "", err
	}
	s.log.LogInfof("enqueued crawl job %s: query=%q sources=%d", id, br.Query, len(requests))
	return id, nil
}

// HandleCrawlTask is the asynq handler for a batch. The job always completes
// with a report; per-source failures live inside it and never surface as a
// task error that would retry the whole batch.
func (s *Service) HandleCrawlTask(ctx context.Context, task *asynq.Task) error {
	var p taskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return err
	}
	s.log.LogInfof("processing crawl job %s (%d sources)", p.JobID, len(p.Requests))
	if err := s.job.SetProcessing(ctx, p.JobID); err != nil {
		return err
	}

	report := s.coord.RunBatch(ctx, p.Requests)

	if s.store != nil {
		var all []model.ListingRecord
		for _, res := range report.PerSource {
			all = append(all, res.Records...)
		}
		if inserted, err := s.store.SaveListings(ctx, all); err != nil {
			s.log.LogErrorf("persist listings for job %s: %v", p.JobID, err)
		} else if inserted > 0 {
			s.log.LogInfof("job %s: persisted %d new listings", p.JobID, inserted)
		}
	}

	return s.job.Complete(ctx, p.JobID, p.TaskName, job.StatusCompleted, report, "")
}
