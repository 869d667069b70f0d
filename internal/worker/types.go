package worker

import (
	"context"
	"sync"
)

type Job func(ctx context.Context) error

// JobPayload is a typed job submitted to a pool. Params are passed through
// to the registered handler for the payload's Type.
type JobPayload struct {
	JobID      string         `json:"job_id"`
	Type       string         `json:"type"`
	Params     map[string]any `json:"params"`
	MaxRetries int            `json:"max_retries"`
	RetryCount int            `json:"retry_count"`
}

type Pool interface {
	Start(ctx context.Context, managerWg *sync.WaitGroup)

	SubmitJob(ctx context.Context, job JobPayload) error

	RegisterJob(
		jobType string,
		jobFunc func(params map[string]any) error,
	)

	GetName() string
}

// Job types known to the insurance worker pool.
const (
	JobTypeExpireSubscriptions = "expire_subscriptions"
)
