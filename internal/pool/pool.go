// Package pool implements the worker pool orchestration: batch claim ->
// submit -> drain -> repeat, with per-worker browser session recycling,
// the process-wide circuit breaker, and a progress callback whose own
// panics/errors are swallowed so one bad callback never takes down a
// worker.
package pool

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scoutpool/internal/breaker"
	"github.com/ternarybob/scoutpool/internal/browser"
	"github.com/ternarybob/scoutpool/internal/common"
	"github.com/ternarybob/scoutpool/internal/extraction"
	"github.com/ternarybob/scoutpool/internal/models"
	"github.com/ternarybob/scoutpool/internal/queue"
	"github.com/ternarybob/scoutpool/internal/resource"
	"github.com/ternarybob/scoutpool/internal/retry"
	"github.com/ternarybob/scoutpool/internal/store"
)

// WorkResult is what the progress callback receives for one completed
// URL.
type WorkResult struct {
	URL           string
	Success       bool
	ProductsFound int
	ProductsSaved int
	Strategy      string
	Err           error
}

// ProgressFunc is invoked after every URL is acked. Pool recovers from
// panics raised inside it, logs them, and continues.
type ProgressFunc func(result WorkResult, stats models.Stats)

// Pool ties every component in SPEC_FULL.md's worker pipeline together.
type Pool struct {
	cfg          *common.Config
	logger       arbor.ILogger
	queueClient  *queue.Client
	browserPool  *browser.Pool
	pipeline     *extraction.Pipeline
	productStore *store.ProductStore
	retryCtrl    *retry.Controller
	circuit      *breaker.Breaker
	guard        *resource.Guard
	limiter      *resource.DomainLimiter
	progress     ProgressFunc

	minID int64

	statsMu sync.Mutex
	stats   models.Stats
}

// New constructs a Pool. progress may be nil.
func New(
	cfg *common.Config,
	logger arbor.ILogger,
	queueClient *queue.Client,
	browserPool *browser.Pool,
	pipeline *extraction.Pipeline,
	productStore *store.ProductStore,
	guard *resource.Guard,
	progress ProgressFunc,
) *Pool {
	p := &Pool{
		cfg:          cfg,
		logger:       logger,
		queueClient:  queueClient,
		browserPool:  browserPool,
		pipeline:     pipeline,
		productStore: productStore,
		retryCtrl:    retry.NewController(cfg.Pool.MaxRetries),
		guard:        guard,
		limiter:      resource.NewDomainLimiter(cfg.Pool.RequestsPerSecondPerHost, cfg.Pool.BurstPerHost),
		progress:     progress,
	}
	p.circuit = breaker.New(cfg.Breaker.Errno11Threshold, logger, func() {
		browserPool.Shutdown(context.Background())
	})
	return p
}

// workerCount resolves MAX_PARALLEL_WORKERS, auto-sizing via the
// resource guard when it is left at 0.
func (p *Pool) workerCount() int {
	if p.cfg.Pool.MaxParallelWorkers > 0 {
		return p.cfg.Pool.MaxParallelWorkers
	}
	ramGB, err := p.guard.TotalRAMGB()
	if err != nil {
		p.logger.Warn().Err(err).Msg("reading total system RAM failed, falling back to hard cap budget")
		ramGB = float64(p.cfg.Resource.HardCapWorkers) * p.cfg.Resource.RAMGBPerWorker
	}
	return p.guard.AutoSizeWorkers(ramGB)
}

// Run executes one full pass over the queue: every worker repeatedly
// claims a batch, drains it, and re-claims until the queue yields an
// empty batch, then the pass ends (the default single-pass behavior;
// the cmd layer wraps this in a cron schedule for repeated passes).
func (p *Pool) Run(ctx context.Context) error {
	numWorkers := p.workerCount()

	minID, err := p.queueClient.ResolveOffset(ctx, p.cfg.Pool.DBURLOffset)
	if err != nil {
		p.logger.Warn().Err(err).Int("offset", p.cfg.Pool.DBURLOffset).Msg("resolving DB_URL_OFFSET cursor failed, processing from the start")
		minID = 0
	}
	p.minID = minID

	p.logger.Info().Int("workers", numWorkers).Msg("starting worker pool pass")

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		if !p.guard.CanStartWorker() {
			p.logger.Warn().Int("worker", i).Msg("resource guard refused additional worker, stopping pool growth")
			break
		}
		wg.Add(1)
		go func(workerIndex int) {
			defer wg.Done()
			p.workerLoop(ctx, workerIndex)
		}(i)
	}
	wg.Wait()

	p.browserPool.Shutdown(ctx)
	p.logger.Info().Msg("worker pool pass complete")
	return nil
}

func (p *Pool) workerLoop(ctx context.Context, workerIndex int) {
	workerID := workerToken(workerIndex)
	statusFilters := p.cfg.StatusFilters()
	limit := p.effectiveURLLimit()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if p.limitReached(limit) {
			return
		}

		p.circuit.Wait()

		batch, err := p.queueClient.Claim(ctx, p.cfg.Pool.DBURLBatchSize, workerID, statusFilters, p.minID)
		if err != nil {
			p.logger.Warn().Err(err).Int("worker", workerIndex).Msg("claim failed")
			return
		}
		if len(batch) == 0 {
			return
		}

		for _, claimed := range batch {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if p.limitReached(limit) {
				return
			}
			p.processOne(ctx, workerIndex, claimed)
		}
	}
}

// effectiveURLLimit combines DB_URL_LIMIT (the operator cap on a full
// run) and DRY_RUN_SAMPLE (process only the first N URLs), both 0 =
// unlimited, into the tighter of the two.
func (p *Pool) effectiveURLLimit() int {
	limit := p.cfg.Pool.DBURLLimit
	if sample := p.cfg.Pool.DryRunSample; sample > 0 {
		if limit == 0 || sample < limit {
			limit = sample
		}
	}
	return limit
}

// limitReached reports whether the pool-wide submitted count has reached
// limit. A limit of 0 means unlimited. Workers check this between URLs,
// so a limit may be overshot by up to one in-flight URL per worker.
func (p *Pool) limitReached(limit int) bool {
	if limit <= 0 {
		return false
	}
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats.Submitted >= limit
}

func (p *Pool) processOne(ctx context.Context, workerIndex int, claimed queue.ClaimedRecord) {
	record := claimed.Record

	sess, err := p.browserPool.Acquire(ctx, workerIndex)
	if err != nil {
		p.ackFailure(ctx, claimed, err)
		return
	}

	fds, _ := p.guard.OpenFileDescriptors()
	children, _ := p.guard.ChildProcessCount()
	underPressure := fds > p.cfg.Resource.FDThreshold || children > p.cfg.Resource.ChildProcThreshold

	if sess.NeedsRecycle(p.cfg.Pool.URLsPerDriverCleanup) || underPressure {
		if err := p.browserPool.Recycle(ctx, workerIndex); err != nil {
			p.logger.Warn().Err(err).Int("worker", workerIndex).Msg("recycle failed")
		}
		sess, err = p.browserPool.Acquire(ctx, workerIndex)
		if err != nil {
			p.ackFailure(ctx, claimed, err)
			return
		}
	}

	if err := p.limiter.Wait(ctx, record.URL); err != nil {
		p.ackFailure(ctx, claimed, err)
		return
	}

	html, err := sess.Navigate(ctx, record.URL, p.cfg.Browser.NavigationTimeout, p.cfg.Browser.MaxScrolls)
	if err != nil {
		if breaker.IsErrno11(err) {
			p.circuit.RecordFailure()
		}
		_ = p.browserPool.Recycle(ctx, workerIndex)
		p.ackFailure(ctx, claimed, &FatalJobError{Cause: err})
		return
	}

	result, err := p.pipeline.Run(html, record.URL)
	if err != nil {
		p.ackFailure(ctx, claimed, err)
		return
	}
	p.circuit.RecordSuccess()

	if result.NoResults {
		p.ackSuccess(ctx, claimed, 0, 0, "no_results")
		return
	}

	saved, err := p.productStore.SaveAll(ctx, result.Candidates)
	if err != nil {
		p.ackFailure(ctx, claimed, err)
		return
	}

	p.ackSuccess(ctx, claimed, len(result.Candidates), saved, result.Strategy)
}

func (p *Pool) ackSuccess(ctx context.Context, claimed queue.ClaimedRecord, found, saved int, strategy string) {
	ok := true
	outcome := p.retryCtrl.Decide(claimed.Record.RetryCount, true)
	fields := queue.AckFields{
		Status:        outcome.Status,
		Success:        &ok,
		ProductsFound: found,
		ProductsSaved: saved,
		RetryCount:    outcome.RetryCount,
		LastStrategy:  strategy,
	}
	if err := p.queueClient.Ack(ctx, claimed, fields); err != nil {
		p.logger.Warn().Err(err).Int64("url_id", claimed.Record.ID).Msg("ack failed")
	}
	p.report(WorkResult{URL: claimed.Record.URL, Success: true, ProductsFound: found, ProductsSaved: saved, Strategy: strategy})
}

func (p *Pool) ackFailure(ctx context.Context, claimed queue.ClaimedRecord, cause error) {
	failed := false
	outcome := p.retryCtrl.Decide(claimed.Record.RetryCount, false)

	if outcome.Status == models.StatusRetrying && !breaker.IsErrno11(cause) {
		p.waitBackoff(ctx, retry.BackoffSeconds(outcome.RetryCount))
	}

	fields := queue.AckFields{
		Status:       outcome.Status,
		Success:       &failed,
		ErrorMessage: cause.Error(),
		RetryCount:   outcome.RetryCount,
	}
	if err := p.queueClient.Ack(ctx, claimed, fields); err != nil {
		p.logger.Warn().Err(err).Int64("url_id", claimed.Record.ID).Msg("ack failed")
	}
	p.report(WorkResult{URL: claimed.Record.URL, Success: false, Err: cause})
}

// waitBackoff implements the linear per-URL backoff: a non-breaker
// failure sleeps before its retrying status is acked, so a re-claim of
// the same URL doesn't happen immediately. Errno11-class failures skip
// this since the circuit breaker's own pause already covers them.
func (p *Pool) waitBackoff(ctx context.Context, seconds int) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(seconds) * time.Second):
	}
}

func (p *Pool) report(result WorkResult) {
	p.statsMu.Lock()
	p.stats.Submitted++
	if result.Success {
		p.stats.Succeeded++
	} else {
		p.stats.Failed++
	}
	p.stats.TotalProductsFound += result.ProductsFound
	p.stats.TotalSavedToDB += result.ProductsSaved
	snapshot := p.stats
	p.statsMu.Unlock()

	if p.progress == nil {
		return
	}
	p.safeCallback(result, snapshot)
}

// safeCallback never lets a caller's progress function kill a worker
// goroutine: any callback-side panic is logged and swallowed.
func (p *Pool) safeCallback(result WorkResult, stats models.Stats) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn().Interface("panic", r).Msg("progress callback panicked, continuing")
		}
	}()
	p.progress(result, stats)
}

func workerToken(index int) string {
	return "worker-" + strconv.Itoa(index) + "-" + uuid.New().String()
}
