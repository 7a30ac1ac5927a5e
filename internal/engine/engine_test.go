package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	accountdomain "github.com/ladoyle/simple-mail-bot/internal/account/domain"
	ruledomain "github.com/ladoyle/simple-mail-bot/internal/rule/domain"
	statsdomain "github.com/ladoyle/simple-mail-bot/internal/stats/domain"

	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	accounts []accountdomain.Account
	err      error
}

func (f *fakeAccounts) List() ([]accountdomain.Account, error) {
	return f.accounts, f.err
}

type fakeRules struct {
	rules map[string][]ruledomain.Rule
	err   error
}

func (f *fakeRules) ListByAccount(accountEmail string) ([]ruledomain.Rule, error) {
	return f.rules[accountEmail], f.err
}

type recordedRun struct {
	email  string
	counts []statsdomain.RuleCount
	cursor string
}

type fakeRecorder struct {
	mu      sync.Mutex
	runs    []recordedRun
	failFor map[string]error
}

func (f *fakeRecorder) RecordRun(accountEmail string, runAt time.Time, counts []statsdomain.RuleCount, newCursor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[accountEmail]; err != nil {
		return err
	}
	f.runs = append(f.runs, recordedRun{email: accountEmail, counts: counts, cursor: newCursor})
	return nil
}

func (f *fakeRecorder) runsFor(email string) []recordedRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRun
	for _, r := range f.runs {
		if r.email == email {
			out = append(out, r)
		}
	}
	return out
}

type fakeHistory struct {
	mu              sync.Mutex
	baselineCursor  string
	baselineErr     error
	events          []LabelEvent
	changesCursor   string
	changesErr      error
	changesErrtimes int // fail this many Changes calls before succeeding
	changesCalls    int
	baselineCalls   int
}

func (f *fakeHistory) Baseline(ctx context.Context, acct *accountdomain.Account) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baselineCalls++
	return f.baselineCursor, f.baselineErr
}

func (f *fakeHistory) Changes(ctx context.Context, acct *accountdomain.Account, since string) ([]LabelEvent, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changesCalls++
	// changesErrtimes == 0 means fail every call.
	if f.changesErr != nil && (f.changesErrtimes == 0 || f.changesCalls <= f.changesErrtimes) {
		return nil, "", f.changesErr
	}
	return f.events, f.changesCursor, nil
}

func cursorAccount(email, cursor string) accountdomain.Account {
	return accountdomain.Account{Email: email, LastHistoryID: &cursor}
}

func testEngine(accts AccountSource, rules RuleSource, rec StatRecorder, hist HistorySource) *Engine {
	return New(accts, rules, rec, hist, Options{
		FetchRetries: 3,
		RetryBackoff: time.Millisecond,
		Concurrency:  2,
	})
}

func TestRunOnce_FreshAccountGetsBaselineOnly(t *testing.T) {
	accounts := &fakeAccounts{accounts: []accountdomain.Account{{Email: "a@example.com"}}}
	rules := &fakeRules{}
	rec := &fakeRecorder{}
	hist := &fakeHistory{baselineCursor: "1000"}

	e := testEngine(accounts, rules, rec, hist)
	e.RunOnce(context.Background())

	runs := rec.runsFor("a@example.com")
	require.Len(t, runs, 1)
	require.Empty(t, runs[0].counts)
	require.Equal(t, "1000", runs[0].cursor)
	require.Zero(t, hist.changesCalls)
}

func TestRunOnce_CountsCommittedWithCursor(t *testing.T) {
	accounts := &fakeAccounts{accounts: []accountdomain.Account{cursorAccount("a@example.com", "1000")}}
	rules := &fakeRules{rules: map[string][]ruledomain.Rule{
		"a@example.com": {
			rule("r1", "newsletters", []string{"L1"}, nil),
			rule("r2", "invoices", []string{"L2"}, nil),
		},
	}}
	rec := &fakeRecorder{}
	hist := &fakeHistory{
		events: []LabelEvent{
			evt("m1", EventLabelAdded, "L1"),
			evt("m2", EventLabelAdded, "L1"),
			evt("m1", EventLabelRemoved, "L1"),
		},
		changesCursor: "2000",
	}

	e := testEngine(accounts, rules, rec, hist)
	e.RunOnce(context.Background())

	runs := rec.runsFor("a@example.com")
	require.Len(t, runs, 1)
	require.Equal(t, "2000", runs[0].cursor)
	require.Equal(t, []statsdomain.RuleCount{
		{RuleID: "r1", RuleName: "newsletters", Processed: 2},
	}, runs[0].counts)
}

func TestRunOnce_ExpiredCursorRebaselines(t *testing.T) {
	accounts := &fakeAccounts{accounts: []accountdomain.Account{cursorAccount("a@example.com", "1000")}}
	rules := &fakeRules{}
	rec := &fakeRecorder{}
	hist := &fakeHistory{
		changesErr:     ErrCursorExpired,
		baselineCursor: "9000",
	}

	e := testEngine(accounts, rules, rec, hist)
	e.RunOnce(context.Background())

	// No retry on an expired cursor, straight to re-baseline.
	require.Equal(t, 1, hist.changesCalls)
	require.Equal(t, 1, hist.baselineCalls)

	runs := rec.runsFor("a@example.com")
	require.Len(t, runs, 1)
	require.Empty(t, runs[0].counts)
	require.Equal(t, "9000", runs[0].cursor)
}

func TestRunOnce_TransientErrorRetriedThenRecovers(t *testing.T) {
	accounts := &fakeAccounts{accounts: []accountdomain.Account{cursorAccount("a@example.com", "1000")}}
	rules := &fakeRules{rules: map[string][]ruledomain.Rule{
		"a@example.com": {rule("r1", "r1", []string{"L1"}, nil)},
	}}
	rec := &fakeRecorder{}
	hist := &fakeHistory{
		changesErr:      errors.New("503 backend error"),
		changesErrtimes: 2,
		events:          []LabelEvent{evt("m1", EventLabelAdded, "L1")},
		changesCursor:   "2000",
	}

	e := testEngine(accounts, rules, rec, hist)
	e.RunOnce(context.Background())

	require.Equal(t, 3, hist.changesCalls)
	runs := rec.runsFor("a@example.com")
	require.Len(t, runs, 1)
	require.Equal(t, "2000", runs[0].cursor)
}

func TestRunOnce_RetriesExhaustedLeavesCursorUntouched(t *testing.T) {
	accounts := &fakeAccounts{accounts: []accountdomain.Account{cursorAccount("a@example.com", "1000")}}
	rules := &fakeRules{}
	rec := &fakeRecorder{}
	hist := &fakeHistory{changesErr: errors.New("timeout")}

	e := testEngine(accounts, rules, rec, hist)
	e.RunOnce(context.Background())

	require.Equal(t, 3, hist.changesCalls)
	require.Empty(t, rec.runsFor("a@example.com"))
}

func TestRunOnce_OneAccountFailureDoesNotAbortOthers(t *testing.T) {
	accounts := &fakeAccounts{accounts: []accountdomain.Account{
		cursorAccount("bad@example.com", "1000"),
		cursorAccount("good@example.com", "1000"),
	}}
	rules := &fakeRules{}
	rec := &fakeRecorder{failFor: map[string]error{"bad@example.com": errors.New("db down")}}
	hist := &fakeHistory{changesCursor: "2000"}

	e := testEngine(accounts, rules, rec, hist)
	e.RunOnce(context.Background())

	require.Empty(t, rec.runsFor("bad@example.com"))
	require.Len(t, rec.runsFor("good@example.com"), 1)
}

func TestRunOnce_EmptyHistoryStillAdvancesCursor(t *testing.T) {
	accounts := &fakeAccounts{accounts: []accountdomain.Account{cursorAccount("a@example.com", "1000")}}
	rules := &fakeRules{rules: map[string][]ruledomain.Rule{
		"a@example.com": {rule("r1", "r1", []string{"L1"}, nil)},
	}}
	rec := &fakeRecorder{}
	hist := &fakeHistory{changesCursor: "1500"}

	e := testEngine(accounts, rules, rec, hist)
	e.RunOnce(context.Background())

	runs := rec.runsFor("a@example.com")
	require.Len(t, runs, 1)
	require.Empty(t, runs[0].counts)
	require.Equal(t, "1500", runs[0].cursor)
}

func TestNextRunDelay(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Duration
	}{
		{
			name: "before the run hour, same day",
			now:  time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC),
			hour: 4,
			want: 2 * time.Hour,
		},
		{
			name: "after the run hour, next day",
			now:  time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC),
			hour: 4,
			want: 22*time.Hour + 30*time.Minute,
		},
		{
			name: "exactly at the run hour, full day",
			now:  time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC),
			hour: 4,
			want: 24 * time.Hour,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, nextRunDelay(tc.now, tc.hour))
		})
	}
}

func TestNew_RunHourRange(t *testing.T) {
	tests := []struct {
		name string
		hour int
		want int
	}{
		{name: "midnight is a valid run hour", hour: 0, want: 0},
		{name: "last hour of the day", hour: 23, want: 23},
		{name: "negative falls back", hour: -1, want: 4},
		{name: "past end of day falls back", hour: 24, want: 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := New(&fakeAccounts{}, &fakeRules{}, &fakeRecorder{}, &fakeHistory{}, Options{RunHour: tc.hour})
			require.Equal(t, tc.want, e.runHour)
		})
	}
}

func TestStartStop(t *testing.T) {
	e := testEngine(&fakeAccounts{}, &fakeRules{}, &fakeRecorder{}, &fakeHistory{})

	// Stop without Start is a no-op.
	e.Stop()

	e.Start()
	e.Start() // second Start is a no-op

	done := make(chan struct{})
	go func() {
		e.Stop()
		e.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return promptly")
	}
}

func TestStart_RunOnStart(t *testing.T) {
	accounts := &fakeAccounts{accounts: []accountdomain.Account{{Email: "a@example.com"}}}
	rec := &fakeRecorder{}
	hist := &fakeHistory{baselineCursor: "100"}

	e := New(accounts, &fakeRules{}, rec, hist, Options{
		RunOnStart:   true,
		FetchRetries: 1,
		RetryBackoff: time.Millisecond,
	})
	e.Start()
	defer e.Stop()

	require.Eventually(t, func() bool {
		return len(rec.runsFor("a@example.com")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
