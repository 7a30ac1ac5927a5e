package repository

import (
	"fmt"
	"time"

	accountdomain "github.com/ladoyle/simple-mail-bot/internal/account/domain"
	statsdomain "github.com/ladoyle/simple-mail-bot/internal/stats/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// statRepository implements StatRepository interface
type statRepository struct {
	db *gorm.DB
}

// NewStatRepository creates a new instance of statRepository
func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{
		db: db,
	}
}

func (r *statRepository) RecordRun(accountEmail string, runAt time.Time, counts []statsdomain.RuleCount, newCursor string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(counts) > 0 {
			rows := make([]statsdomain.Statistic, 0, len(counts))
			for _, c := range counts {
				rows = append(rows, statsdomain.Statistic{
					ID:           uuid.New().String(),
					AccountEmail: accountEmail,
					RunAt:        runAt,
					RuleID:       c.RuleID,
					RuleName:     c.RuleName,
					Processed:    c.Processed,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("insert statistics: %w", err)
			}
		}

		res := tx.Model(&accountdomain.Account{}).
			Where("email = ?", accountEmail).
			Updates(map[string]interface{}{
				"last_history_id": newCursor,
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("advance cursor: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("advance cursor: account %s not found", accountEmail)
		}
		return nil
	})
}

func (r *statRepository) SumProcessed(accountEmail, ruleID string, since, until *time.Time) (int64, error) {
	q := r.db.Model(&statsdomain.Statistic{}).
		Select("COALESCE(SUM(processed), 0)").
		Where("account_email = ?", accountEmail)
	if ruleID != "" {
		q = q.Where("rule_id = ?", ruleID)
	}
	if since != nil {
		q = q.Where("run_at >= ?", *since)
	}
	if until != nil {
		q = q.Where("run_at < ?", *until)
	}

	var total int64
	if err := q.Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
