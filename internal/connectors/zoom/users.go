package zoom

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

type zoomUser struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	RoleID    string `json:"role_id"`
	CreatedAt string `json:"created_at"`
}

type userPage struct {
	NextPageToken string     `json:"next_page_token"`
	Users         []zoomUser `json:"users"`
}

// ListUsers pages through every active account user.
func (c *Client) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	query := url.Values{"page_size": {defaultPageSize}, "status": {"active"}}
	for {
		var page userPage
		if err := c.get(ctx, "/users", query, &page); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for _, u := range page.Users {
			out = append(out, domain.UserProfile{
				ID:        u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Email:     u.Email,
				Status:    u.Status,
				RoleID:    u.RoleID,
				CreatedAt: u.CreatedAt,
			})
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		query.Set("next_page_token", page.NextPageToken)
	}
}

// UsersFetcher projects the user bucket into documents. The account listing
// happened up front; the fetcher only filters and normalizes.
type UsersFetcher struct{}

// NewUsersFetcher creates the users fetcher.
func NewUsersFetcher() *UsersFetcher { return &UsersFetcher{} }

func (f *UsersFetcher) ObjectType() domain.ObjectType { return domain.ObjectUsers }

// Fetch emits one document per user in the bucket created within the
// window.
func (f *UsersFetcher) Fetch(ctx context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	var docs []domain.Document
	for _, u := range scope.Users {
		if !withinWindow(u.CreatedAt, scope.Window) {
			continue
		}
		doc := domain.Document{Type: domain.ObjectUsers}
		scope.Schema.Apply(&doc, map[string]any{
			"id":         u.ID,
			"first_name": strings.TrimSpace(u.FirstName + " " + u.LastName),
			"created_at": u.CreatedAt,
		})
		doc.URL = "https://zoom.us/user/" + u.ID
		doc.Body = fmt.Sprintf("Name: %s %s\nEmail: %s\nStatus: %s",
			u.FirstName, u.LastName, u.Email, u.Status)
		tagPermissions(&doc, u.ID, scope)
		docs = append(docs, doc)
	}
	return docs, nil
}

// withinWindow reports whether the RFC 3339 timestamp falls inside the
// window. A zero window (types fetched in full) and an unparseable
// timestamp both pass.
func withinWindow(ts string, window domain.TimeRange) bool {
	if window.Start.IsZero() && window.End.IsZero() {
		return true
	}
	t, err := domain.ParseTimestamp(ts)
	if err != nil {
		return true
	}
	return window.Contains(t)
}

// baseCapabilities is the capability tag every tagged document carries on
// top of the owner's mapped identities. An unmapped owner still gets the
// base tag so the document stays visible to the capability holders.
var baseCapabilities = map[domain.ObjectType]string{
	domain.ObjectUsers:        "User:Read",
	domain.ObjectRoles:        "Role:Read",
	domain.ObjectGroups:       "Group:Read",
	domain.ObjectMeetings:     "User:Read",
	domain.ObjectPastMeetings: "User:Read",
	domain.ObjectRecordings:   "Recording:Read",
	domain.ObjectChannels:     "ChatChannel:Read",
	domain.ObjectChats:        "ChatMessage:Read",
	domain.ObjectFiles:        "ChatMessage:Read",
}

// tagPermissions stamps the base capability tag for the document's type plus
// the index identities mapped to the owning source user.
func tagPermissions(doc *domain.Document, ownerID string, scope *driven.FetchScope) {
	if !scope.PermissionsEnabled {
		return
	}
	perms := []string{baseCapabilities[doc.Type]}
	perms = append(perms, scope.SourceIdentities[ownerID]...)
	doc.AllowPermissions = perms
}
