package domain

import (
	"encoding/json"
	"time"
)

// Rule mirrors a Gmail filter owned by an account. Criteria is the JSON
// snapshot of the filter's match predicate as sent to Gmail; the label id
// lists are stored JSON-encoded. Rules are created and deleted whole, never
// partially updated.
type Rule struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	AccountEmail   string    `json:"account_email" gorm:"index;uniqueIndex:idx_rules_account_name;not null"`
	GmailFilterID  string    `json:"gmail_filter_id"`
	Name           string    `json:"name" gorm:"uniqueIndex:idx_rules_account_name;not null"`
	Criteria       string    `json:"criteria"`
	AddLabelIDs    string    `json:"-"`
	RemoveLabelIDs string    `json:"-"`
	Forward        string    `json:"forward,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AddLabels decodes the stored add-label id list. A missing list is empty,
// not an error.
func (r *Rule) AddLabels() ([]string, error) {
	return decodeLabelIDs(r.AddLabelIDs)
}

// RemoveLabels decodes the stored remove-label id list.
func (r *Rule) RemoveLabels() ([]string, error) {
	return decodeLabelIDs(r.RemoveLabelIDs)
}

func decodeLabelIDs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// EncodeLabelIDs serializes a label id list for storage.
func EncodeLabelIDs(ids []string) string {
	if len(ids) == 0 {
		return "[]"
	}
	raw, _ := json.Marshal(ids)
	return string(raw)
}
