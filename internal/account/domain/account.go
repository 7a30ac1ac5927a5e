package domain

import "time"

// Account is a Gmail account authorized through the OAuth flow.
// LastHistoryID is the opaque Gmail history cursor the engine has aggregated
// up to. It is nil until the first baseline run establishes one, and after
// that only ever advances; the engine never parses it, only stores it and
// hands it back to the provider.
type Account struct {
	Email         string    `json:"email" gorm:"primaryKey"`
	AccessToken   string    `json:"-"`
	RefreshToken  string    `json:"-"`
	LastHistoryID *string   `json:"last_history_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasCursor reports whether the account has an established history cursor.
func (a *Account) HasCursor() bool {
	return a.LastHistoryID != nil && *a.LastHistoryID != ""
}
