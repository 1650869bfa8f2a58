package scheduler

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/review-analyzer/internal/classify"
	"github.com/jonathan/review-analyzer/internal/observability"
	"github.com/jonathan/review-analyzer/internal/progress"
	"github.com/jonathan/review-analyzer/internal/ratelimit"
	"github.com/jonathan/review-analyzer/internal/types"
)

// etaSmoothing is the weight given to the newest inter-completion interval
// in the running ETA estimate.
const etaSmoothing = 0.2

// Options tunes the worker pool and retry behavior.
type Options struct {
	// Workers is the number of concurrent classification workers.
	Workers int
	// MaxAttempts bounds attempts per record, including the first.
	MaxAttempts int
	// BackoffBase is the delay before the first retry.
	BackoffBase time.Duration
	// BackoffMax caps the retry delay.
	BackoffMax time.Duration
	// BackoffMultiple scales the delay between consecutive retries.
	BackoffMultiple float64
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 4
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 3
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = time.Second
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 30 * time.Second
	}
	if o.BackoffMultiple <= 1 {
		o.BackoffMultiple = 2
	}
	return o
}

// Runner drives a classification run: it fans pending records out to a
// bounded worker pool, paces provider calls, retries retryable failures
// with exponential backoff, and writes every terminal outcome to the
// progress store.
type Runner struct {
	classifier classify.Classifier
	pacer      *ratelimit.Pacer
	store      *progress.Store
	printer    *observability.Printer
	opts       Options

	mu             sync.Mutex
	completed      int
	total          int
	lastCompletion time.Time
	emaInterval    time.Duration

	fatalOnce sync.Once
	fatalErr  error
}

// NewRunner assembles a runner over the given collaborators.
func NewRunner(classifier classify.Classifier, pacer *ratelimit.Pacer, store *progress.Store, printer *observability.Printer, opts Options) *Runner {
	return &Runner{
		classifier: classifier,
		pacer:      pacer,
		store:      store,
		printer:    printer,
		opts:       opts.withDefaults(),
	}
}

// Run classifies the pending records and blocks until every dispatched
// record has reached a terminal outcome or been abandoned. The progress
// store is persisted on every exit path, including fatal errors and
// cancellation.
//
// A fatal classifier error stops dispatch of new records but lets in-flight
// calls drain. Cancellation behaves the same way: records waiting on pacing
// or backoff are abandoned without a result, so a later run with the
// continue policy re-schedules them.
func (r *Runner) Run(ctx context.Context, pending []types.Record) (err error) {
	defer func() {
		if perr := r.store.Persist(); perr != nil && err == nil {
			err = perr
		}
	}()

	if len(pending) == 0 {
		return nil
	}

	if perr := r.classifier.Ping(ctx); perr != nil {
		return fmt.Errorf("provider connectivity check failed: %w", perr)
	}

	r.mu.Lock()
	r.completed = 0
	r.total = len(pending)
	r.lastCompletion = time.Now()
	r.emaInterval = 0
	r.mu.Unlock()
	r.store.SetTotal(len(pending))

	// dispatchCtx stops the feeder on fatal errors without cancelling calls
	// already in flight.
	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	tasks := make(chan types.Record)
	go func() {
		defer close(tasks)
		for _, rec := range pending {
			select {
			case tasks <- rec:
			case <-dispatchCtx.Done():
				return
			}
		}
	}()

	var g errgroup.Group
	for i := 0; i < r.opts.Workers; i++ {
		g.Go(func() error {
			for rec := range tasks {
				// A record handed over in the same instant dispatch stopped
				// is abandoned, not classified.
				if dispatchCtx.Err() != nil {
					continue
				}
				if err := r.classifyRecord(dispatchCtx, rec, stopDispatch); err != nil {
					stopDispatch()
					return err
				}
			}
			return nil
		})
	}

	if werr := g.Wait(); werr != nil {
		return werr
	}
	if r.fatalErr != nil {
		return fmt.Errorf("classification aborted: %w", r.fatalErr)
	}
	return ctx.Err()
}

// classifyRecord drives one record to a terminal outcome. It returns an
// error only when the run itself must stop (durable state cannot be
// persisted); classifier failures are recorded as results instead. A nil
// return with no recorded result means the record was abandoned due to
// cancellation and stays pending.
func (r *Runner) classifyRecord(ctx context.Context, rec types.Record, onFatal func()) error {
	var attempts int
	for attempts < r.opts.MaxAttempts {
		if err := r.pacer.Acquire(ctx); err != nil {
			// Interrupted while waiting for a slot; nothing was sent, so
			// the record stays pending for the next run.
			return nil
		}
		attempts++

		// The call itself runs to completion even during shutdown; a
		// response we paid for should be recorded, not discarded.
		outcome, err := r.classifier.Classify(context.WithoutCancel(ctx), rec.Text, rec.VotedUp)
		r.pacer.Release()

		if err == nil {
			r.store.AddUsage(outcome.Usage)
			return r.record(types.ClassificationResult{
				RecordID:    rec.ID,
				Status:      types.StatusSucceeded,
				Labels:      outcome.Labels,
				Sentiment:   outcome.Sentiment,
				RawResponse: outcome.RawResponse,
				Attempts:    attempts,
				CompletedAt: time.Now().UTC(),
			})
		}

		switch kind := classify.KindOf(err); kind {
		case classify.KindContentRejected:
			return r.record(failedResult(rec.ID, types.ReasonContentRejected, err, attempts))
		case classify.KindFatal:
			r.fatalOnce.Do(func() {
				r.fatalErr = err
				onFatal()
			})
			return r.record(failedResult(rec.ID, types.ReasonFatal, err, attempts))
		default:
			if attempts >= r.opts.MaxAttempts {
				return r.record(failedResult(rec.ID, types.ReasonAttemptsExceeded, err, attempts))
			}
			delay := r.backoff(attempts)
			r.printer.Warningf("record %s: %s failure, retrying in %s (attempt %d/%d)",
				rec.ID, kind, delay, attempts, r.opts.MaxAttempts)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
		}
	}
	return nil
}

// record writes a terminal result and updates the live progress line.
// Only persistence failures propagate.
func (r *Runner) record(res types.ClassificationResult) error {
	if err := r.store.RecordResult(res); err != nil {
		return err
	}
	r.noteCompletion()
	return nil
}

// noteCompletion advances the completion count and refreshes the smoothed
// ETA from the interval since the previous completion.
func (r *Runner) noteCompletion() {
	r.mu.Lock()
	now := time.Now()
	interval := now.Sub(r.lastCompletion)
	r.lastCompletion = now
	if r.emaInterval == 0 {
		r.emaInterval = interval
	} else {
		r.emaInterval = time.Duration(etaSmoothing*float64(interval) + (1-etaSmoothing)*float64(r.emaInterval))
	}
	r.completed++
	remaining := r.total - r.completed
	eta := time.Duration(remaining) * r.emaInterval
	completed, total := r.completed, r.total
	r.mu.Unlock()

	counters := r.store.Counters()
	r.printer.Progress(completed, total, counters.Failed, eta, r.store.TokensUsed())
}

// backoff returns the delay before the next attempt, growing exponentially
// from the base and capped at the maximum.
func (r *Runner) backoff(attempt int) time.Duration {
	d := time.Duration(float64(r.opts.BackoffBase) * math.Pow(r.opts.BackoffMultiple, float64(attempt-1)))
	if d > r.opts.BackoffMax {
		return r.opts.BackoffMax
	}
	return d
}

func failedResult(recordID, reason string, err error, attempts int) types.ClassificationResult {
	return types.ClassificationResult{
		RecordID:      recordID,
		Status:        types.StatusFailed,
		FailureReason: reason,
		RawResponse:   err.Error(),
		Attempts:      attempts,
		CompletedAt:   time.Now().UTC(),
	}
}
