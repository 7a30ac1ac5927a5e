package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	accountdomain "github.com/ladoyle/simple-mail-bot/internal/account/domain"
	accountdto "github.com/ladoyle/simple-mail-bot/internal/account/dto"
	"github.com/ladoyle/simple-mail-bot/internal/account/repository"
	"github.com/ladoyle/simple-mail-bot/pkg/config"
	"github.com/ladoyle/simple-mail-bot/pkg/gmail"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// oauthUsecase implements OAuthUsecase interface
type oauthUsecase struct {
	accountRepo repository.AccountRepository
	gmailSvc    *gmail.Service
	config      *config.Config
}

// NewOAuthUsecase creates a new instance of oauthUsecase
func NewOAuthUsecase(accountRepo repository.AccountRepository, gmailSvc *gmail.Service, cfg *config.Config) OAuthUsecase {
	return &oauthUsecase{
		accountRepo: accountRepo,
		gmailSvc:    gmailSvc,
		config:      cfg,
	}
}

func (u *oauthUsecase) LoginURL() *accountdto.LoginResponse {
	state := uuid.New().String()
	return &accountdto.LoginResponse{
		AuthURL: u.gmailSvc.GetAuthURL(state),
		Status:  "success",
	}
}

func (u *oauthUsecase) HandleCallback(ctx context.Context, code string) (*accountdto.CallbackResponse, error) {
	token, err := u.gmailSvc.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	email, _, err := u.gmailSvc.GetProfile(ctx, token.AccessToken, token.RefreshToken, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account profile: %w", err)
	}

	acct := &accountdomain.Account{
		Email:        email,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if err := u.accountRepo.Upsert(acct); err != nil {
		return nil, err
	}

	sessionToken, err := u.generateToken(email)
	if err != nil {
		return nil, err
	}

	log.Printf("[OAuth] Account %s authorized", email)
	return &accountdto.CallbackResponse{
		Message: fmt.Sprintf("User %s successfully logged in", email),
		Email:   email,
		Token:   sessionToken,
		Status:  "success",
	}, nil
}

func (u *oauthUsecase) Logout(ctx context.Context, email string) error {
	acct, err := u.accountRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if acct == nil {
		return fmt.Errorf("account %s not found", email)
	}

	if err := u.gmailSvc.RevokeToken(ctx, acct.AccessToken); err != nil {
		// Revocation failure is not fatal; the local account still goes away.
		log.Printf("[OAuth] Failed to revoke token for %s: %v", email, err)
	}

	return u.accountRepo.Delete(email)
}

func (u *oauthUsecase) generateToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(u.config.JWTAccessExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *oauthUsecase) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", errors.New("invalid token subject")
	}
	return email, nil
}
