package repository

import (
	"errors"
	"time"

	labeldomain "github.com/ladoyle/simple-mail-bot/internal/label/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// labelRepository implements LabelRepository interface
type labelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a new instance of labelRepository
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepository{
		db: db,
	}
}

func (r *labelRepository) Create(label *labeldomain.Label) error {
	label.ID = uuid.New().String()
	label.CreatedAt = time.Now()
	return r.db.Create(label).Error
}

func (r *labelRepository) CreateBatch(labels []labeldomain.Label) error {
	if len(labels) == 0 {
		return nil
	}
	now := time.Now()
	for i := range labels {
		labels[i].ID = uuid.New().String()
		labels[i].CreatedAt = now
	}
	return r.db.Create(&labels).Error
}

func (r *labelRepository) FindByID(accountEmail, id string) (*labeldomain.Label, error) {
	var label labeldomain.Label
	err := r.db.Where("account_email = ? AND id = ?", accountEmail, id).First(&label).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &label, nil
}

func (r *labelRepository) ListByAccount(accountEmail string) ([]labeldomain.Label, error) {
	var labels []labeldomain.Label
	if err := r.db.Where("account_email = ?", accountEmail).Order("name").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *labelRepository) Delete(accountEmail, id string) error {
	return r.db.Where("account_email = ? AND id = ?", accountEmail, id).Delete(&labeldomain.Label{}).Error
}

func (r *labelRepository) DeleteByGmailIDs(accountEmail string, gmailLabelIDs []string) error {
	if len(gmailLabelIDs) == 0 {
		return nil
	}
	return r.db.Where("account_email = ? AND gmail_label_id IN ?", accountEmail, gmailLabelIDs).
		Delete(&labeldomain.Label{}).Error
}
