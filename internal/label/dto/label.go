package dto

// CreateLabelRequest describes a new Gmail label. Colors are optional Gmail
// palette hex values.
type CreateLabelRequest struct {
	Name            string `json:"name" binding:"required"`
	TextColor       string `json:"text_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
}
