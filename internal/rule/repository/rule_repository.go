package repository

import (
	"errors"
	"time"

	ruledomain "github.com/ladoyle/simple-mail-bot/internal/rule/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ruleRepository implements RuleRepository interface
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new instance of ruleRepository
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{
		db: db,
	}
}

func (r *ruleRepository) Create(rule *ruledomain.Rule) error {
	rule.ID = uuid.New().String()
	rule.CreatedAt = time.Now()
	return r.db.Create(rule).Error
}

func (r *ruleRepository) FindByID(accountEmail, id string) (*ruledomain.Rule, error) {
	var rule ruledomain.Rule
	err := r.db.Where("account_email = ? AND id = ?", accountEmail, id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) FindByName(accountEmail, name string) (*ruledomain.Rule, error) {
	var rule ruledomain.Rule
	err := r.db.Where("account_email = ? AND name = ?", accountEmail, name).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) ListByAccount(accountEmail string) ([]ruledomain.Rule, error) {
	var rules []ruledomain.Rule
	if err := r.db.Where("account_email = ?", accountEmail).Order("created_at").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) Delete(accountEmail, id string) error {
	return r.db.Where("account_email = ? AND id = ?", accountEmail, id).Delete(&ruledomain.Rule{}).Error
}
