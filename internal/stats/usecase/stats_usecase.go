package usecase

import (
	"context"
	"fmt"
	"time"

	accountrepo "github.com/ladoyle/simple-mail-bot/internal/account/repository"
	"github.com/ladoyle/simple-mail-bot/internal/stats/repository"
	"github.com/ladoyle/simple-mail-bot/pkg/gmail"

	"golang.org/x/oauth2"
)

// StatsUsecase answers processed-count queries over the statistics the
// engine wrote, plus read/unread counts straight from Gmail. It is a pure
// reader of already-committed rows; it never touches cursors.
type StatsUsecase interface {
	TotalProcessed(accountEmail, ruleID string) (int64, error)
	// DailyProcessed sums the rolling last 24 hours.
	DailyProcessed(accountEmail, ruleID string) (int64, error)
	// WeeklyProcessed sums since Monday 00:00 UTC of the current week.
	WeeklyProcessed(accountEmail, ruleID string) (int64, error)
	// MonthlyProcessed sums since day 1 00:00 UTC of the current month.
	MonthlyProcessed(accountEmail, ruleID string) (int64, error)
	UnreadCount(ctx context.Context, accountEmail string) (int64, error)
	ReadCount(ctx context.Context, accountEmail string) (int64, error)
}

// statsUsecase implements StatsUsecase interface
type statsUsecase struct {
	statRepo    repository.StatRepository
	accountRepo accountrepo.AccountRepository
	gmailSvc    *gmail.Service
}

// NewStatsUsecase creates a new instance of statsUsecase
func NewStatsUsecase(statRepo repository.StatRepository, accountRepo accountrepo.AccountRepository, gmailSvc *gmail.Service) StatsUsecase {
	return &statsUsecase{
		statRepo:    statRepo,
		accountRepo: accountRepo,
		gmailSvc:    gmailSvc,
	}
}

func (u *statsUsecase) TotalProcessed(accountEmail, ruleID string) (int64, error) {
	return u.statRepo.SumProcessed(accountEmail, ruleID, nil, nil)
}

func (u *statsUsecase) DailyProcessed(accountEmail, ruleID string) (int64, error) {
	now := time.Now().UTC()
	since := now.Add(-24 * time.Hour)
	return u.statRepo.SumProcessed(accountEmail, ruleID, &since, &now)
}

func (u *statsUsecase) WeeklyProcessed(accountEmail, ruleID string) (int64, error) {
	since := startOfWeek(time.Now().UTC())
	return u.statRepo.SumProcessed(accountEmail, ruleID, &since, nil)
}

func (u *statsUsecase) MonthlyProcessed(accountEmail, ruleID string) (int64, error) {
	since := startOfMonth(time.Now().UTC())
	return u.statRepo.SumProcessed(accountEmail, ruleID, &since, nil)
}

func (u *statsUsecase) UnreadCount(ctx context.Context, accountEmail string) (int64, error) {
	acct, err := u.accountRepo.FindByEmail(accountEmail)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, fmt.Errorf("account %s not found", accountEmail)
	}

	unread, err := u.gmailSvc.GetUnreadCount(ctx, acct.AccessToken, acct.RefreshToken, u.tokenSaver(accountEmail))
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve unread count: %w", err)
	}
	return unread, nil
}

func (u *statsUsecase) ReadCount(ctx context.Context, accountEmail string) (int64, error) {
	acct, err := u.accountRepo.FindByEmail(accountEmail)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, fmt.Errorf("account %s not found", accountEmail)
	}

	saver := u.tokenSaver(accountEmail)
	total, err := u.gmailSvc.GetTotalCount(ctx, acct.AccessToken, acct.RefreshToken, saver)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve read count: %w", err)
	}
	unread, err := u.gmailSvc.GetUnreadCount(ctx, acct.AccessToken, acct.RefreshToken, saver)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve read count: %w", err)
	}

	read := total - unread
	if read < 0 {
		read = 0
	}
	return read, nil
}

func (u *statsUsecase) tokenSaver(email string) gmail.TokenUpdateFunc {
	return func(t *oauth2.Token) error {
		return u.accountRepo.UpdateTokens(email, t.AccessToken, t.RefreshToken)
	}
}

// startOfWeek returns Monday 00:00 UTC of the week containing now.
func startOfWeek(now time.Time) time.Time {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	day := now.AddDate(0, 0, -daysSinceMonday)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfMonth returns day 1 00:00 UTC of the month containing now.
func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
