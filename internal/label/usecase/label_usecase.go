package usecase

import (
	"context"
	"errors"
	"fmt"

	accountrepo "github.com/ladoyle/simple-mail-bot/internal/account/repository"
	labeldomain "github.com/ladoyle/simple-mail-bot/internal/label/domain"
	labeldto "github.com/ladoyle/simple-mail-bot/internal/label/dto"
	"github.com/ladoyle/simple-mail-bot/internal/label/repository"
	"github.com/ladoyle/simple-mail-bot/pkg/gmail"

	"golang.org/x/oauth2"
)

var ErrLabelNotFound = errors.New("label not found")

// LabelUsecase manages labels with Gmail as the golden source. List
// reconciles local rows against Gmail before returning them.
type LabelUsecase interface {
	List(ctx context.Context, accountEmail string) ([]labeldomain.Label, error)
	Create(ctx context.Context, accountEmail string, req *labeldto.CreateLabelRequest) (*labeldomain.Label, error)
	Delete(ctx context.Context, accountEmail, id string) error
}

// labelUsecase implements LabelUsecase interface
type labelUsecase struct {
	labelRepo   repository.LabelRepository
	accountRepo accountrepo.AccountRepository
	gmailSvc    *gmail.Service
}

// NewLabelUsecase creates a new instance of labelUsecase
func NewLabelUsecase(labelRepo repository.LabelRepository, accountRepo accountrepo.AccountRepository, gmailSvc *gmail.Service) LabelUsecase {
	return &labelUsecase{
		labelRepo:   labelRepo,
		accountRepo: accountRepo,
		gmailSvc:    gmailSvc,
	}
}

func (u *labelUsecase) List(ctx context.Context, accountEmail string) ([]labeldomain.Label, error) {
	acct, err := u.accountRepo.FindByEmail(accountEmail)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("account %s not found", accountEmail)
	}

	gmailLabels, err := u.gmailSvc.ListLabels(ctx, acct.AccessToken, acct.RefreshToken, u.tokenSaver(accountEmail))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch labels from Gmail: %w", err)
	}

	local, err := u.labelRepo.ListByAccount(accountEmail)
	if err != nil {
		return nil, err
	}

	remoteByID := make(map[string]bool, len(gmailLabels))
	for _, gl := range gmailLabels {
		remoteByID[gl.Id] = true
	}
	localByID := make(map[string]bool, len(local))
	for _, l := range local {
		localByID[l.GmailLabelID] = true
	}

	// Add labels that exist in Gmail but not locally.
	var missing []labeldomain.Label
	for _, gl := range gmailLabels {
		if localByID[gl.Id] {
			continue
		}
		label := labeldomain.Label{
			AccountEmail: accountEmail,
			GmailLabelID: gl.Id,
			Name:         gl.Name,
		}
		if gl.Color != nil {
			label.TextColor = gl.Color.TextColor
			label.BackgroundColor = gl.Color.BackgroundColor
		}
		missing = append(missing, label)
	}
	if err := u.labelRepo.CreateBatch(missing); err != nil {
		return nil, err
	}

	// Drop local rows whose label no longer exists in Gmail.
	var stale []string
	for _, l := range local {
		if !remoteByID[l.GmailLabelID] {
			stale = append(stale, l.GmailLabelID)
		}
	}
	if err := u.labelRepo.DeleteByGmailIDs(accountEmail, stale); err != nil {
		return nil, err
	}

	return u.labelRepo.ListByAccount(accountEmail)
}

func (u *labelUsecase) Create(ctx context.Context, accountEmail string, req *labeldto.CreateLabelRequest) (*labeldomain.Label, error) {
	acct, err := u.accountRepo.FindByEmail(accountEmail)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("account %s not found", accountEmail)
	}

	created, err := u.gmailSvc.CreateLabel(ctx, acct.AccessToken, acct.RefreshToken,
		req.Name, req.TextColor, req.BackgroundColor, u.tokenSaver(accountEmail))
	if err != nil {
		return nil, fmt.Errorf("failed to create label in Gmail: %w", err)
	}

	label := &labeldomain.Label{
		AccountEmail:    accountEmail,
		GmailLabelID:    created.Id,
		Name:            created.Name,
		TextColor:       req.TextColor,
		BackgroundColor: req.BackgroundColor,
	}
	if err := u.labelRepo.Create(label); err != nil {
		return nil, err
	}
	return label, nil
}

func (u *labelUsecase) Delete(ctx context.Context, accountEmail, id string) error {
	acct, err := u.accountRepo.FindByEmail(accountEmail)
	if err != nil {
		return err
	}
	if acct == nil {
		return fmt.Errorf("account %s not found", accountEmail)
	}

	label, err := u.labelRepo.FindByID(accountEmail, id)
	if err != nil {
		return err
	}
	if label == nil {
		return ErrLabelNotFound
	}

	if err := u.gmailSvc.DeleteLabel(ctx, acct.AccessToken, acct.RefreshToken, label.GmailLabelID, u.tokenSaver(accountEmail)); err != nil {
		return fmt.Errorf("failed to delete label from Gmail: %w", err)
	}

	return u.labelRepo.Delete(accountEmail, id)
}

func (u *labelUsecase) tokenSaver(email string) gmail.TokenUpdateFunc {
	return func(t *oauth2.Token) error {
		return u.accountRepo.UpdateTokens(email, t.AccessToken, t.RefreshToken)
	}
}
