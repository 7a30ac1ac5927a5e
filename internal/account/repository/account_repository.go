package repository

import (
	"errors"
	"time"

	accountdomain "github.com/ladoyle/simple-mail-bot/internal/account/domain"

	"gorm.io/gorm"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new instance of accountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (r *accountRepository) Upsert(acct *accountdomain.Account) error {
	existing, err := r.FindByEmail(acct.Email)
	if err != nil {
		return err
	}

	now := time.Now()
	if existing == nil {
		acct.CreatedAt = now
		acct.UpdatedAt = now
		return r.db.Create(acct).Error
	}

	// Re-login: refresh tokens, keep the aggregation cursor where it was.
	return r.db.Model(&accountdomain.Account{}).
		Where("email = ?", acct.Email).
		Updates(map[string]interface{}{
			"access_token":  acct.AccessToken,
			"refresh_token": acct.RefreshToken,
			"updated_at":    now,
		}).Error
}

func (r *accountRepository) FindByEmail(email string) (*accountdomain.Account, error) {
	var acct accountdomain.Account
	err := r.db.Where("email = ?", email).First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &acct, nil
}

func (r *accountRepository) List() ([]accountdomain.Account, error) {
	var accts []accountdomain.Account
	if err := r.db.Order("email").Find(&accts).Error; err != nil {
		return nil, err
	}
	return accts, nil
}

func (r *accountRepository) UpdateTokens(email, accessToken, refreshToken string) error {
	updates := map[string]interface{}{
		"access_token": accessToken,
		"updated_at":   time.Now(),
	}
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	return r.db.Model(&accountdomain.Account{}).
		Where("email = ?", email).
		Updates(updates).Error
}

func (r *accountRepository) Delete(email string) error {
	return r.db.Where("email = ?", email).Delete(&accountdomain.Account{}).Error
}
