package repository

import (
	"time"

	statsdomain "github.com/ladoyle/simple-mail-bot/internal/stats/domain"
)

// StatRepository defines the interface for run statistics. RecordRun is the
// single point where an aggregation run becomes durable.
type StatRepository interface {
	// RecordRun persists one Statistic row per count and advances the
	// account's history cursor, as one transaction. Either everything lands
	// or the cursor stays at its pre-run value. An empty counts slice still
	// commits the cursor (the first-run baseline produces no rows).
	RecordRun(accountEmail string, runAt time.Time, counts []statsdomain.RuleCount, newCursor string) error

	// SumProcessed sums processed counts within [since, until). Nil bounds
	// are open; an empty ruleID sums across all of the account's rules.
	SumProcessed(accountEmail, ruleID string, since, until *time.Time) (int64, error)
}
