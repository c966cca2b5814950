package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vytor/wordflash/internal/logger"
)

// Poller is a long-running loop, such as a job processor, that runs until
// its context is cancelled.
type Poller interface {
	Run(ctx context.Context, workerID string) error
}

// Pool runs a fixed number of pollers over the shared job store, each with
// its own worker id.
type Pool struct {
	poller  Poller
	workers int
	ids     []string
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	log     *logger.Logger

	mu   sync.Mutex
	errs []error
}

func NewPool(workers int, poller Poller) *Pool {
	if workers <= 0 {
		workers = 2
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers", workers)

	ids := make([]string, workers)
	for i := range ids {
		ids[i] = "worker-" + uuid.NewString()
	}
	return &Pool{poller: poller, workers: workers, ids: ids, log: log}
}

// IDs returns the worker ids used to claim jobs.
func (p *Pool) IDs() []string {
	return append([]string(nil), p.ids...)
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for _, id := range p.ids {
		p.wg.Add(1)
		go func(id string) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			if err := p.poller.Run(logger.NewContext(ctx, workerLog), id); err != nil {
				workerLog.Error("worker stopped with error: %v", err)
				p.mu.Lock()
				p.errs = append(p.errs, err)
				p.mu.Unlock()
				return
			}
			workerLog.Debug("worker shutting down")
		}(id)
	}
}

// Wait blocks until every worker has returned and reports the first error.
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.errs) > 0 {
		return p.errs[0]
	}
	return nil
}

func (p *Pool) Stop() error {
	p.log.Info("stopping worker pool")
	if p.cancel != nil {
		p.cancel()
	}
	err := p.Wait()
	p.log.Info("worker pool stopped")
	return err
}

// Run starts the pool and blocks until ctx is done and all workers exit.
func (p *Pool) Run(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	return p.Stop()
}
