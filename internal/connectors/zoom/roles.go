package zoom

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

// chatReadPrivilege is the role privilege that grants access to the chat
// history endpoints. Only members of a role carrying it have message
// streams worth querying.
const chatReadPrivilege = "ChatMessage:Read"

type zoomRole struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	TotalMembers int    `json:"total_members"`
}

type rolePage struct {
	Roles []zoomRole `json:"roles"`
}

type roleDetail struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Privileges  []string `json:"privileges"`
}

type roleMemberPage struct {
	NextPageToken string `json:"next_page_token"`
	Members       []struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"members"`
}

// ListRoles returns every account role.
func (c *Client) ListRoles(ctx context.Context) ([]zoomRole, error) {
	var page rolePage
	if err := c.get(ctx, "/roles", nil, &page); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return page.Roles, nil
}

// RoleDetail returns one role including its privilege list.
func (c *Client) RoleDetail(ctx context.Context, roleID string) (roleDetail, error) {
	var detail roleDetail
	if err := c.get(ctx, "/roles/"+url.PathEscape(roleID), nil, &detail); err != nil {
		return detail, fmt.Errorf("get role %s: %w", roleID, err)
	}
	return detail, nil
}

// RoleMemberIDs pages through the member list of one role.
func (c *Client) RoleMemberIDs(ctx context.Context, roleID string) ([]string, error) {
	var out []string
	query := url.Values{"page_size": {defaultPageSize}}
	for {
		var page roleMemberPage
		if err := c.get(ctx, "/roles/"+url.PathEscape(roleID)+"/members", query, &page); err != nil {
			return nil, fmt.Errorf("list members of role %s: %w", roleID, err)
		}
		for _, m := range page.Members {
			out = append(out, m.ID)
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		query.Set("next_page_token", page.NextPageToken)
	}
}

// AccountDirectory implements driven.Directory over the client.
type AccountDirectory struct {
	client *Client
}

// NewAccountDirectory creates the directory adapter.
func NewAccountDirectory(client *Client) *AccountDirectory {
	return &AccountDirectory{client: client}
}

// ListUsers returns the active account users.
func (d *AccountDirectory) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	return d.client.ListUsers(ctx)
}

// ChatAccessUserIDs resolves the users whose role grants the chat read
// privilege. Chat and file fetchers only query these users' streams.
func (d *AccountDirectory) ChatAccessUserIDs(ctx context.Context) ([]string, error) {
	roles, err := d.client.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, role := range roles {
		detail, err := d.client.RoleDetail(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		if !hasPrivilege(detail.Privileges, chatReadPrivilege) {
			continue
		}
		members, err := d.client.RoleMemberIDs(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range members {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

func hasPrivilege(privileges []string, want string) bool {
	for _, p := range privileges {
		if p == want {
			return true
		}
	}
	return false
}

// RolesFetcher fetches the account roles as documents.
type RolesFetcher struct {
	client *Client
}

// NewRolesFetcher creates the roles fetcher.
func NewRolesFetcher(client *Client) *RolesFetcher { return &RolesFetcher{client: client} }

func (f *RolesFetcher) ObjectType() domain.ObjectType { return domain.ObjectRoles }

// Fetch emits one document per role. Roles are account-level and carry no
// natural timestamp, so every run fetches them in full.
func (f *RolesFetcher) Fetch(ctx context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	roles, err := f.client.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	var docs []domain.Document
	for _, role := range roles {
		doc := domain.Document{Type: domain.ObjectRoles}
		scope.Schema.Apply(&doc, map[string]any{
			"id":          role.ID,
			"name":        role.Name,
			"description": role.Description,
		})
		doc.URL = "https://zoom.us/role#/detail/" + role.ID
		doc.Body = fmt.Sprintf("Role: %s\n%s\nMembers: %d",
			role.Name, role.Description, role.TotalMembers)
		if scope.PermissionsEnabled {
			perms := append([]string{baseCapabilities[domain.ObjectRoles]}, f.memberIdentities(ctx, role.ID, scope)...)
			doc.AllowPermissions = perms
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// memberIdentities maps the role's members to their index identities. A
// member listing failure degrades to an untagged document rather than
// failing the role pass.
func (f *RolesFetcher) memberIdentities(ctx context.Context, roleID string, scope *driven.FetchScope) []string {
	members, err := f.client.RoleMemberIDs(ctx, roleID)
	if err != nil {
		return nil
	}
	var out []string
	for _, id := range members {
		out = append(out, scope.SourceIdentities[id]...)
	}
	return dedupeStrings(out)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
