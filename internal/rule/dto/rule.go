package dto

import "github.com/ladoyle/simple-mail-bot/pkg/gmail"

// CreateRuleRequest describes a new mail filter. At least one of the
// criteria fields must be set; label id lists may be empty.
type CreateRuleRequest struct {
	Name           string               `json:"name" binding:"required"`
	Criteria       gmail.FilterCriteria `json:"criteria"`
	AddLabelIDs    []string             `json:"add_label_ids"`
	RemoveLabelIDs []string             `json:"remove_label_ids"`
	Forward        string               `json:"forward,omitempty"`
}

// RuleResponse is the API shape of a rule, with the stored label id lists
// decoded.
type RuleResponse struct {
	ID             string   `json:"id"`
	GmailFilterID  string   `json:"gmail_filter_id"`
	Name           string   `json:"name"`
	Criteria       string   `json:"criteria"`
	AddLabelIDs    []string `json:"add_label_ids"`
	RemoveLabelIDs []string `json:"remove_label_ids"`
	Forward        string   `json:"forward,omitempty"`
}
