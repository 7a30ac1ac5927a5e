package engine

import (
	"context"
	"errors"

	accountdomain "github.com/ladoyle/simple-mail-bot/internal/account/domain"
	accountrepo "github.com/ladoyle/simple-mail-bot/internal/account/repository"
	"github.com/ladoyle/simple-mail-bot/pkg/gmail"

	"golang.org/x/oauth2"
)

// ErrCursorExpired signals that the stored history cursor fell out of the
// provider's retention window. The run must re-baseline instead of retrying;
// the coverage gap is accepted.
var ErrCursorExpired = errors.New("history cursor expired")

// EventKind distinguishes label-added from label-removed events. Both kinds
// count toward rule activity.
type EventKind string

const (
	EventLabelAdded   EventKind = "labelAdded"
	EventLabelRemoved EventKind = "labelRemoved"
)

// LabelEvent is one label change on one message, as observed in the
// account's history feed.
type LabelEvent struct {
	MessageID string
	LabelIDs  []string
	Kind      EventKind
}

// HistorySource abstracts the remote event feed.
//
// Baseline establishes a cursor at the provider's current position without
// returning any events; history older than "now" is deliberately forfeited.
// Changes returns every label event strictly after the given cursor, paging
// until the feed is exhausted, plus the cursor to persist once the run
// commits. Changes returns ErrCursorExpired when the cursor can no longer be
// resolved.
type HistorySource interface {
	Baseline(ctx context.Context, acct *accountdomain.Account) (string, error)
	Changes(ctx context.Context, acct *accountdomain.Account, since string) ([]LabelEvent, string, error)
}

// GmailHistorySource implements HistorySource over the Gmail client.
// Refreshed OAuth tokens are persisted through the account repository so the
// next run does not redo the refresh.
type GmailHistorySource struct {
	gmail    *gmail.Service
	accounts accountrepo.AccountRepository
}

func NewGmailHistorySource(gmailService *gmail.Service, accounts accountrepo.AccountRepository) *GmailHistorySource {
	return &GmailHistorySource{
		gmail:    gmailService,
		accounts: accounts,
	}
}

func (s *GmailHistorySource) tokenSaver(email string) gmail.TokenUpdateFunc {
	return func(t *oauth2.Token) error {
		return s.accounts.UpdateTokens(email, t.AccessToken, t.RefreshToken)
	}
}

func (s *GmailHistorySource) Baseline(ctx context.Context, acct *accountdomain.Account) (string, error) {
	_, historyID, err := s.gmail.GetProfile(ctx, acct.AccessToken, acct.RefreshToken, s.tokenSaver(acct.Email))
	if err != nil {
		return "", err
	}
	return historyID, nil
}

func (s *GmailHistorySource) Changes(ctx context.Context, acct *accountdomain.Account, since string) ([]LabelEvent, string, error) {
	changes, cursor, err := s.gmail.ListLabelHistory(ctx, acct.AccessToken, acct.RefreshToken, since, s.tokenSaver(acct.Email))
	if err != nil {
		if errors.Is(err, gmail.ErrHistoryExpired) {
			return nil, "", ErrCursorExpired
		}
		return nil, "", err
	}

	events := make([]LabelEvent, 0, len(changes))
	for _, c := range changes {
		kind := EventLabelAdded
		if c.Removed {
			kind = EventLabelRemoved
		}
		events = append(events, LabelEvent{
			MessageID: c.MessageID,
			LabelIDs:  c.LabelIDs,
			Kind:      kind,
		})
	}
	return events, cursor, nil
}
