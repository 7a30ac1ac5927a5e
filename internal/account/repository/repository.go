package repository

import (
	accountdomain "github.com/ladoyle/simple-mail-bot/internal/account/domain"
)

// AccountRepository defines the interface for authorized account persistence.
type AccountRepository interface {
	// Upsert creates the account or, if it already exists, refreshes its
	// tokens. The stored history cursor is never touched here.
	Upsert(acct *accountdomain.Account) error
	FindByEmail(email string) (*accountdomain.Account, error)
	List() ([]accountdomain.Account, error)
	// UpdateTokens persists refreshed OAuth tokens.
	UpdateTokens(email, accessToken, refreshToken string) error
	Delete(email string) error
}
