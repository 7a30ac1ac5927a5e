package repository

import (
	labeldomain "github.com/ladoyle/simple-mail-bot/internal/label/domain"
)

// LabelRepository defines the interface for label persistence.
type LabelRepository interface {
	Create(label *labeldomain.Label) error
	CreateBatch(labels []labeldomain.Label) error
	FindByID(accountEmail, id string) (*labeldomain.Label, error)
	ListByAccount(accountEmail string) ([]labeldomain.Label, error)
	Delete(accountEmail, id string) error
	// DeleteByGmailIDs drops local rows whose Gmail label no longer exists.
	DeleteByGmailIDs(accountEmail string, gmailLabelIDs []string) error
}
