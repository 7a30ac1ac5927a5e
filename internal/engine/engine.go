package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	accountdomain "github.com/ladoyle/simple-mail-bot/internal/account/domain"
	ruledomain "github.com/ladoyle/simple-mail-bot/internal/rule/domain"
	statsdomain "github.com/ladoyle/simple-mail-bot/internal/stats/domain"

	"golang.org/x/sync/errgroup"
)

const (
	defaultRunHour      = 4
	defaultFetchRetries = 3
	defaultRetryBackoff = 2 * time.Second
	defaultConcurrency  = 4
)

// AccountSource supplies the authorized accounts to aggregate.
type AccountSource interface {
	List() ([]accountdomain.Account, error)
}

// RuleSource supplies the current rules for an account. The engine only
// reads rules, never mutates them.
type RuleSource interface {
	ListByAccount(accountEmail string) ([]ruledomain.Rule, error)
}

// StatRecorder commits one run's counts and the new cursor atomically.
type StatRecorder interface {
	RecordRun(accountEmail string, runAt time.Time, counts []statsdomain.RuleCount, newCursor string) error
}

// Options tunes the engine. RunHour is the hour of day (UTC) for the daily
// run; 0 is midnight and out-of-range values fall back to 04:00. Other zero
// values fall back to 3 fetch attempts with exponential backoff and no run
// on start.
type Options struct {
	RunHour      int
	RunOnStart   bool
	FetchRetries int
	RetryBackoff time.Duration
	Concurrency  int
}

// Engine aggregates Gmail label-change history into per-rule processed
// counts once a day. It is the sole writer of cursors and statistics; one
// pass finishes, commit included, before the next trigger is computed.
type Engine struct {
	accounts AccountSource
	rules    RuleSource
	recorder StatRecorder
	history  HistorySource

	runHour      int
	runOnStart   bool
	fetchRetries int
	retryBackoff time.Duration
	concurrency  int

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates an engine owning its dependencies. Call Start once at boot and
// Stop once at shutdown.
func New(accounts AccountSource, rules RuleSource, recorder StatRecorder, history HistorySource, opts Options) *Engine {
	if opts.RunHour < 0 || opts.RunHour > 23 {
		opts.RunHour = defaultRunHour
	}
	if opts.FetchRetries <= 0 {
		opts.FetchRetries = defaultFetchRetries
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}

	return &Engine{
		accounts:     accounts,
		rules:        rules,
		recorder:     recorder,
		history:      history,
		runHour:      opts.RunHour,
		runOnStart:   opts.RunOnStart,
		fetchRetries: opts.FetchRetries,
		retryBackoff: opts.RetryBackoff,
		concurrency:  opts.Concurrency,
	}
}

// Start launches the scheduler loop. Idempotent; a second call while running
// is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.stop = make(chan struct{})
	e.done = make(chan struct{})

	log.Printf("[HistoryEngine] Starting daily aggregation scheduler (runs at %02d:00 UTC)", e.runHour)
	go e.loop(e.stop, e.done)
}

// Stop signals the loop to exit and waits for it. It never interrupts an
// in-flight pass mid-account, only the sleep between passes. Idempotent and
// safe to call without Start.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stop)
	done := e.done
	e.mu.Unlock()

	<-done
	log.Println("[HistoryEngine] Scheduler stopped")
}

func (e *Engine) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	if e.runOnStart {
		e.RunOnce(context.Background())
	}

	for {
		delay := nextRunDelay(time.Now().UTC(), e.runHour)
		timer := time.NewTimer(delay)

		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		e.RunOnce(context.Background())
	}
}

// nextRunDelay computes the wait until the next occurrence of hour:00 UTC.
// At exactly hour:00 the next occurrence is tomorrow, so an overrunning pass
// never triggers twice for the same day.
func nextRunDelay(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// RunOnce executes one full aggregation pass over all accounts. Accounts are
// processed independently; a failure is logged and never aborts the others.
func (e *Engine) RunOnce(ctx context.Context) {
	accts, err := e.accounts.List()
	if err != nil {
		log.Printf("[HistoryEngine] Failed to list accounts: %v", err)
		return
	}
	if len(accts) == 0 {
		return
	}

	log.Printf("[HistoryEngine] Starting aggregation pass for %d account(s)", len(accts))

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for _, acct := range accts {
		acct := acct
		g.Go(func() error {
			if err := e.runAccount(ctx, acct); err != nil {
				log.Printf("[HistoryEngine] Run failed for %s: %v", acct.Email, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) runAccount(ctx context.Context, acct accountdomain.Account) error {
	// Fresh account: establish a cursor at the provider's current position.
	// No backfill; history older than now is forfeited by policy.
	if !acct.HasCursor() {
		cursor, err := e.fetchBaseline(ctx, &acct)
		if err != nil {
			return err
		}
		if err := e.recorder.RecordRun(acct.Email, time.Now().UTC(), nil, cursor); err != nil {
			return fmt.Errorf("record baseline: %w", err)
		}
		log.Printf("[HistoryEngine] %s: baseline established at cursor %s", acct.Email, cursor)
		return nil
	}

	rules, err := e.rules.ListByAccount(acct.Email)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	idx, names := BuildRuleIndex(rules)

	events, cursor, err := e.fetchChanges(ctx, &acct, *acct.LastHistoryID)
	if errors.Is(err, ErrCursorExpired) {
		// Retention window elapsed: accept the coverage gap and start over
		// from the provider's current position.
		log.Printf("[HistoryEngine] Cursor expired for %s, re-baselining", acct.Email)
		cursor, err = e.fetchBaseline(ctx, &acct)
		if err != nil {
			return err
		}
		if err := e.recorder.RecordRun(acct.Email, time.Now().UTC(), nil, cursor); err != nil {
			return fmt.Errorf("record re-baseline: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	counts := CountProcessed(idx, events)
	rows := make([]statsdomain.RuleCount, 0, len(counts))
	for rid, n := range counts {
		rows = append(rows, statsdomain.RuleCount{
			RuleID:    rid,
			RuleName:  names[rid],
			Processed: n,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RuleID < rows[j].RuleID })

	if err := e.recorder.RecordRun(acct.Email, time.Now().UTC(), rows, cursor); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	log.Printf("[HistoryEngine] %s: %d event(s), %d rule(s) matched, cursor advanced to %s",
		acct.Email, len(events), len(rows), cursor)
	return nil
}

func (e *Engine) fetchBaseline(ctx context.Context, acct *accountdomain.Account) (string, error) {
	var cursor string
	err := e.withRetry(ctx, "baseline", acct.Email, func() error {
		var err error
		cursor, err = e.history.Baseline(ctx, acct)
		return err
	})
	return cursor, err
}

func (e *Engine) fetchChanges(ctx context.Context, acct *accountdomain.Account, since string) ([]LabelEvent, string, error) {
	var (
		events []LabelEvent
		cursor string
	)
	err := e.withRetry(ctx, "history fetch", acct.Email, func() error {
		var err error
		events, cursor, err = e.history.Changes(ctx, acct, since)
		return err
	})
	return events, cursor, err
}

// withRetry runs fn with bounded exponential backoff on transient errors.
// ErrCursorExpired is not transient and passes straight through. On
// persistent failure the stored cursor is untouched, so the next scheduled
// run retries the same window.
func (e *Engine) withRetry(ctx context.Context, op, email string, fn func() error) error {
	var lastErr error
	backoff := e.retryBackoff

	for attempt := 1; attempt <= e.fetchRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrCursorExpired) {
			return err
		}

		lastErr = err
		log.Printf("[HistoryEngine] %s attempt %d/%d for %s failed: %v", op, attempt, e.fetchRetries, email, err)

		if attempt < e.fetchRetries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}

	return fmt.Errorf("%s: %w", op, lastErr)
}
