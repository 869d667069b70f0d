package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// WorkingPool is a fixed-size worker pool with a registry of job handlers
// keyed by job type.
type WorkingPool struct {
	Name       string
	NumWorkers int
	jobChan    chan JobPayload

	handlers   map[string]func(params map[string]any) error
	handlersMu sync.RWMutex
}

func NewWorkingPool(name string, numWorkers int, queueSize int) *WorkingPool {
	return &WorkingPool{
		Name:       name,
		NumWorkers: numWorkers,
		jobChan:    make(chan JobPayload, queueSize),
		handlers:   make(map[string]func(params map[string]any) error),
	}
}

func (p *WorkingPool) GetName() string {
	return p.Name
}

func (p *WorkingPool) RegisterJob(jobType string, jobFunc func(params map[string]any) error) {
	p.handlersMu.Lock()
	defer p.handlersMu.Unlock()
	p.handlers[jobType] = jobFunc
	slog.Info("Registered job handler", "pool", p.Name, "job_type", jobType)
}

func (p *WorkingPool) SubmitJob(ctx context.Context, job JobPayload) error {
	select {
	case p.jobChan <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("submit job %s: %w", job.Type, ctx.Err())
	}
}

func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done()

	var workerWg sync.WaitGroup

	for i := range p.NumWorkers {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	// Wait for shutdown signal
	<-ctx.Done()

	slog.Info("Shutdown signaled, closing job channel", "pool", p.Name)
	close(p.jobChan)

	workerWg.Wait()
	slog.Info("All workers stopped", "pool", p.Name)
}

// worker is the internal goroutine for a single worker
func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				return
			}
			p.safeExecution(ctx, job, id)

		case <-ctx.Done():
			// Exit immediately, even if the job channel is not closed.
			return
		}
	}
}

func (p *WorkingPool) safeExecution(ctx context.Context, job JobPayload, workerID int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered in job", "pool", p.Name, "worker", workerID, "job_type", job.Type, "panic", r)
		}
	}()

	p.handlersMu.RLock()
	handler, ok := p.handlers[job.Type]
	p.handlersMu.RUnlock()
	if !ok {
		slog.Error("No handler registered for job type", "pool", p.Name, "job_type", job.Type)
		return
	}

	if err := handler(job.Params); err != nil {
		slog.Error("Job execution failed", "pool", p.Name, "worker", workerID, "job_id", job.JobID, "job_type", job.Type, "error", err)
		return
	}
	slog.Debug("Job completed", "pool", p.Name, "worker", workerID, "job_id", job.JobID, "job_type", job.Type)
}
