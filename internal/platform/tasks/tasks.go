package tasks

import (
	"github.com/hibiken/asynq"

	"trendhire/internal/platform/redis"
)

const (
	TaskTypeCrawlBatch = "crawl:batch"
)

type Client struct{ c *asynq.Client }

func New(r *redis.Service) *Client { return &Client{c: asynq.NewClient(r.AsynqRedisOpt())} }

func (t *Client) Enqueue(task *asynq.Task, queue string, maxRetries int) error {
	_, err := t.c.Enqueue(task, asynq.Queue(queue), asynq.MaxRetry(maxRetries))
	return err
}
