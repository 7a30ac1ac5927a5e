package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrHistoryExpired is returned when the start history id handed to
// ListLabelHistory has fallen out of Gmail's retention window. The caller
// must establish a fresh baseline; retrying the same cursor will never work.
var ErrHistoryExpired = errors.New("gmail: start history id expired")

// TokenUpdateFunc is a callback invoked when the OAuth access token is
// refreshed, so the caller can persist the new token.
type TokenUpdateFunc func(*oauth2.Token) error

type Service struct {
	clientID     string
	clientSecret string
	redirectURI  string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret, redirectURI string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
}

func (s *Service) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		RedirectURL:  s.redirectURI,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			gmail.GmailModifyScope,
			gmail.GmailSettingsBasicScope,
		},
	}
}

// GetAuthURL builds the consent URL for the OAuth login flow. Offline access
// is requested so a refresh token is issued.
func (s *Service) GetAuthURL(state string) string {
	return s.oauthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an authorization code for tokens.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// RevokeToken invalidates the given access token at Google.
func (s *Service) RevokeToken(ctx context.Context, accessToken string) error {
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://oauth2.googleapis.com/revoke", nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = form.Encode()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to revoke token: status %d", resp.StatusCode)
	}
	return nil
}

// GetGmailService creates a Gmail service with the user's tokens.
func (s *Service) GetGmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	tokenSource := s.oauthConfig().TokenSource(ctx, token)

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      tokenSource,
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// GetProfile returns the account's email address and its current history id,
// formatted as an opaque cursor string.
func (s *Service) GetProfile(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (string, string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return "", "", err
	}

	profile, err := srv.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("unable to retrieve profile: %v", err)
	}

	return profile.EmailAddress, strconv.FormatUint(profile.HistoryId, 10), nil
}

// LabelChange is one label-added or label-removed record from the history feed.
type LabelChange struct {
	MessageID string
	LabelIDs  []string
	Removed   bool
}

// ListLabelHistory returns all label changes recorded strictly after the
// given cursor, paging until the feed is exhausted, together with the cursor
// marking the end of the fetched window. Returns ErrHistoryExpired when the
// cursor is older than Gmail's history retention.
func (s *Service) ListLabelHistory(ctx context.Context, accessToken, refreshToken, startCursor string, onTokenRefresh TokenUpdateFunc) ([]LabelChange, string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, "", err
	}

	startHistoryID, err := strconv.ParseUint(startCursor, 10, 64)
	if err != nil {
		return nil, "", fmt.Errorf("invalid history cursor %q: %v", startCursor, err)
	}

	fetch := func(pageToken string) (*gmail.ListHistoryResponse, error) {
		call := srv.Users.History.List("me").
			StartHistoryId(startHistoryID).
			HistoryTypes("labelAdded", "labelRemoved").
			MaxResults(500).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		return call.Do()
	}

	return collectLabelHistory(fetch, startCursor)
}

// collectLabelHistory walks the history feed page by page until the next page
// token runs out, accumulating every label change. The cursor only advances
// to the last page's history id, so a partial fetch is never mistaken for a
// complete window.
func collectLabelHistory(fetch func(pageToken string) (*gmail.ListHistoryResponse, error), startCursor string) ([]LabelChange, string, error) {
	var (
		changes   []LabelChange
		newCursor = startCursor
		pageToken = ""
	)

	for {
		resp, err := fetch(pageToken)
		if err != nil {
			// Gmail returns 404 when the start history id is out of the
			// retention window.
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
				return nil, "", ErrHistoryExpired
			}
			return nil, "", fmt.Errorf("unable to retrieve history: %v", err)
		}

		for _, h := range resp.History {
			for _, added := range h.LabelsAdded {
				if added.Message == nil || added.Message.Id == "" {
					continue
				}
				changes = append(changes, LabelChange{
					MessageID: added.Message.Id,
					LabelIDs:  added.LabelIds,
				})
			}
			for _, removed := range h.LabelsRemoved {
				if removed.Message == nil || removed.Message.Id == "" {
					continue
				}
				changes = append(changes, LabelChange{
					MessageID: removed.Message.Id,
					LabelIDs:  removed.LabelIds,
					Removed:   true,
				})
			}
		}

		if resp.HistoryId != 0 {
			newCursor = strconv.FormatUint(resp.HistoryId, 10)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return changes, newCursor, nil
}

// ListLabels retrieves the account's user-created labels.
func (s *Service) ListLabels(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) ([]*gmail.Label, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve labels: %v", err)
	}

	labels := make([]*gmail.Label, 0, len(resp.Labels))
	for _, label := range resp.Labels {
		if label.Type == "user" {
			labels = append(labels, label)
		}
	}
	return labels, nil
}

// CreateLabel creates a new user label, optionally with colors.
func (s *Service) CreateLabel(ctx context.Context, accessToken, refreshToken, name, textColor, backgroundColor string, onTokenRefresh TokenUpdateFunc) (*gmail.Label, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	label := &gmail.Label{
		Name:                  name,
		MessageListVisibility: "show",
		LabelListVisibility:   "labelShow",
	}
	if textColor != "" || backgroundColor != "" {
		label.Color = &gmail.LabelColor{
			TextColor:       textColor,
			BackgroundColor: backgroundColor,
		}
	}

	created, err := srv.Users.Labels.Create("me", label).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create label: %v", err)
	}
	return created, nil
}

// DeleteLabel removes a label by its Gmail id.
func (s *Service) DeleteLabel(ctx context.Context, accessToken, refreshToken, gmailLabelID string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	if err := srv.Users.Labels.Delete("me", gmailLabelID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to delete label: %v", err)
	}
	return nil
}

// FilterCriteria is the match predicate of a mail filter. Empty fields are
// omitted from the Gmail filter.
type FilterCriteria struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Subject string `json:"subject,omitempty"`
	Query   string `json:"query,omitempty"`
}

// CreateFilter creates a Gmail filter applying/removing labels and optionally
// forwarding matched mail.
func (s *Service) CreateFilter(ctx context.Context, accessToken, refreshToken string, criteria FilterCriteria, addLabelIDs, removeLabelIDs []string, forward string, onTokenRefresh TokenUpdateFunc) (*gmail.Filter, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	filter := &gmail.Filter{
		Criteria: &gmail.FilterCriteria{
			From:    criteria.From,
			To:      criteria.To,
			Subject: criteria.Subject,
			Query:   criteria.Query,
		},
		Action: &gmail.FilterAction{
			AddLabelIds:    addLabelIDs,
			RemoveLabelIds: removeLabelIDs,
			Forward:        forward,
		},
	}

	created, err := srv.Users.Settings.Filters.Create("me", filter).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create filter: %v", err)
	}
	return created, nil
}

// DeleteFilter removes a filter by its Gmail id.
func (s *Service) DeleteFilter(ctx context.Context, accessToken, refreshToken, gmailFilterID string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	if err := srv.Users.Settings.Filters.Delete("me", gmailFilterID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to delete filter: %v", err)
	}
	return nil
}

// GetUnreadCount returns the number of messages carrying the UNREAD label.
func (s *Service) GetUnreadCount(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (int64, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return 0, err
	}

	label, err := srv.Users.Labels.Get("me", "UNREAD").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to retrieve unread count: %v", err)
	}
	return label.MessagesTotal, nil
}

// GetTotalCount returns the total number of messages in the mailbox.
func (s *Service) GetTotalCount(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (int64, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return 0, err
	}

	profile, err := srv.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to retrieve profile: %v", err)
	}
	return profile.MessagesTotal, nil
}
