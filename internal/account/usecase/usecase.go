package usecase

import (
	"context"

	accountdto "github.com/ladoyle/simple-mail-bot/internal/account/dto"
)

// OAuthUsecase drives the Google OAuth flow and session tokens. Accounts
// exist only through this flow; there are no local credentials.
type OAuthUsecase interface {
	// LoginURL returns the consent URL to start the flow.
	LoginURL() *accountdto.LoginResponse
	// HandleCallback exchanges the authorization code, stores the account
	// with its tokens and returns a session token. The aggregation cursor is
	// left untouched; the engine baselines fresh accounts on its next run.
	HandleCallback(ctx context.Context, code string) (*accountdto.CallbackResponse, error)
	// Logout revokes the Google token and removes the account.
	Logout(ctx context.Context, email string) error
	// ValidateToken checks a session token and returns the account email.
	ValidateToken(token string) (string, error)
}
