package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	accountrepo "github.com/ladoyle/simple-mail-bot/internal/account/repository"
	ruledomain "github.com/ladoyle/simple-mail-bot/internal/rule/domain"
	ruledto "github.com/ladoyle/simple-mail-bot/internal/rule/dto"
	"github.com/ladoyle/simple-mail-bot/internal/rule/repository"
	"github.com/ladoyle/simple-mail-bot/pkg/gmail"

	"golang.org/x/oauth2"
)

var ErrRuleNotFound = errors.New("rule not found")

// RuleUsecase manages mail filters. Gmail is the golden source: the filter
// is created there first, then mirrored locally. Rules are replaced whole,
// never partially updated.
type RuleUsecase interface {
	Create(ctx context.Context, accountEmail string, req *ruledto.CreateRuleRequest) (*ruledomain.Rule, error)
	List(accountEmail string) ([]ruledomain.Rule, error)
	Delete(ctx context.Context, accountEmail, id string) error
}

// ruleUsecase implements RuleUsecase interface
type ruleUsecase struct {
	ruleRepo    repository.RuleRepository
	accountRepo accountrepo.AccountRepository
	gmailSvc    *gmail.Service
}

// NewRuleUsecase creates a new instance of ruleUsecase
func NewRuleUsecase(ruleRepo repository.RuleRepository, accountRepo accountrepo.AccountRepository, gmailSvc *gmail.Service) RuleUsecase {
	return &ruleUsecase{
		ruleRepo:    ruleRepo,
		accountRepo: accountRepo,
		gmailSvc:    gmailSvc,
	}
}

func (u *ruleUsecase) Create(ctx context.Context, accountEmail string, req *ruledto.CreateRuleRequest) (*ruledomain.Rule, error) {
	acct, err := u.accountRepo.FindByEmail(accountEmail)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("account %s not found", accountEmail)
	}

	// A rule with the same name replaces the old one: delete and recreate,
	// there is no partial update.
	existing, err := u.ruleRepo.FindByName(accountEmail, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("[RuleService] Rule %q already exists for %s, replacing it", req.Name, accountEmail)
		if err := u.deleteRule(ctx, acct.AccessToken, acct.RefreshToken, accountEmail, existing); err != nil {
			return nil, err
		}
	}

	filter, err := u.gmailSvc.CreateFilter(ctx, acct.AccessToken, acct.RefreshToken,
		req.Criteria, req.AddLabelIDs, req.RemoveLabelIDs, req.Forward, u.tokenSaver(accountEmail))
	if err != nil {
		return nil, fmt.Errorf("failed to create filter in Gmail: %w", err)
	}

	criteriaJSON, err := json.Marshal(req.Criteria)
	if err != nil {
		return nil, err
	}

	rule := &ruledomain.Rule{
		AccountEmail:   accountEmail,
		GmailFilterID:  filter.Id,
		Name:           req.Name,
		Criteria:       string(criteriaJSON),
		AddLabelIDs:    ruledomain.EncodeLabelIDs(req.AddLabelIDs),
		RemoveLabelIDs: ruledomain.EncodeLabelIDs(req.RemoveLabelIDs),
		Forward:        req.Forward,
	}
	if err := u.ruleRepo.Create(rule); err != nil {
		return nil, err
	}

	log.Printf("[RuleService] Rule %q created for %s (filter %s)", req.Name, accountEmail, filter.Id)
	return rule, nil
}

func (u *ruleUsecase) List(accountEmail string) ([]ruledomain.Rule, error) {
	return u.ruleRepo.ListByAccount(accountEmail)
}

func (u *ruleUsecase) Delete(ctx context.Context, accountEmail, id string) error {
	acct, err := u.accountRepo.FindByEmail(accountEmail)
	if err != nil {
		return err
	}
	if acct == nil {
		return fmt.Errorf("account %s not found", accountEmail)
	}

	rule, err := u.ruleRepo.FindByID(accountEmail, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return ErrRuleNotFound
	}

	return u.deleteRule(ctx, acct.AccessToken, acct.RefreshToken, accountEmail, rule)
}

func (u *ruleUsecase) deleteRule(ctx context.Context, accessToken, refreshToken, accountEmail string, rule *ruledomain.Rule) error {
	if rule.GmailFilterID != "" {
		if err := u.gmailSvc.DeleteFilter(ctx, accessToken, refreshToken, rule.GmailFilterID, u.tokenSaver(accountEmail)); err != nil {
			return fmt.Errorf("failed to delete filter from Gmail: %w", err)
		}
	}
	return u.ruleRepo.Delete(accountEmail, rule.ID)
}

func (u *ruleUsecase) tokenSaver(email string) gmail.TokenUpdateFunc {
	return func(t *oauth2.Token) error {
		return u.accountRepo.UpdateTokens(email, t.AccessToken, t.RefreshToken)
	}
}
