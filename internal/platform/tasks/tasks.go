package tasks

import (
	"time"

	"slotscout/internal/platform/redis"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeVenueScrape  = "scrape:venue"
	TaskTypeRefreshCycle = "scrape:refresh_cycle"

	QueueScraping = "scraping"
	QueueDefault  = "default"
)

type Client struct{ c *asynq.Client }

func New(r *redis.Service) *Client { return &Client{c: asynq.NewClient(r.AsynqRedisOpt())} }

func (t *Client) Enqueue(task *asynq.Task, queue string, maxRetries int, timeout time.Duration) error {
	_, err := t.c.Enqueue(task, asynq.Queue(queue), asynq.MaxRetry(maxRetries), asynq.Timeout(timeout))
	return err
}

func (t *Client) Close() error { return t.c.Close() }
