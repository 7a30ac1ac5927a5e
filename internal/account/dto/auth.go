package dto

// LoginResponse carries the Google consent URL the client should open.
type LoginResponse struct {
	AuthURL string `json:"authUrl"`
	Status  string `json:"status"`
}

// CallbackResponse is returned after a successful code exchange.
type CallbackResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Token   string `json:"token"`
	Status  string `json:"status"`
}

// LogoutRequest identifies the account to sign out.
type LogoutRequest struct {
	Email string `json:"email" binding:"required,email"`
}
