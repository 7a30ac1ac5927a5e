package domain

import "time"

// Statistic is one per-rule processed count produced by a single engine run.
// Rows are append-only; RuleName is a snapshot taken at run time because the
// rule may be deleted later.
type Statistic struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	AccountEmail string    `json:"account_email" gorm:"index:idx_stats_account_rule;not null"`
	RunAt        time.Time `json:"run_at" gorm:"index;not null"`
	RuleID       string    `json:"rule_id" gorm:"index:idx_stats_account_rule;not null"`
	RuleName     string    `json:"rule_name" gorm:"not null"`
	Processed    int       `json:"processed" gorm:"not null"`
}

// RuleCount is one rule's processed count for a run, handed to the recorder
// together with the cursor to commit.
type RuleCount struct {
	RuleID    string
	RuleName  string
	Processed int
}
