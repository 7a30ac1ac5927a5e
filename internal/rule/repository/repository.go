package repository

import (
	ruledomain "github.com/ladoyle/simple-mail-bot/internal/rule/domain"
)

// RuleRepository defines the interface for rule persistence. Rules are
// created and deleted whole; there is no partial update.
type RuleRepository interface {
	Create(rule *ruledomain.Rule) error
	FindByID(accountEmail, id string) (*ruledomain.Rule, error)
	FindByName(accountEmail, name string) (*ruledomain.Rule, error)
	ListByAccount(accountEmail string) ([]ruledomain.Rule, error)
	Delete(accountEmail, id string) error
}
