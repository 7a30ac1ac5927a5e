package domain

import "time"

// Label mirrors a user-created Gmail label. Gmail is the golden source; local
// rows are reconciled against it on every list.
type Label struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	AccountEmail    string    `json:"account_email" gorm:"index;uniqueIndex:idx_labels_account_gmail;not null"`
	GmailLabelID    string    `json:"gmail_label_id" gorm:"uniqueIndex:idx_labels_account_gmail;not null"`
	Name            string    `json:"name" gorm:"not null"`
	TextColor       string    `json:"text_color,omitempty"`
	BackgroundColor string    `json:"background_color,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
