package zoom

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

type zoomGroup struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TotalMembers int    `json:"total_members"`
}

type groupPage struct {
	Groups []zoomGroup `json:"groups"`
}

// ListGroups returns every account group.
func (c *Client) ListGroups(ctx context.Context) ([]zoomGroup, error) {
	var page groupPage
	if err := c.get(ctx, "/groups", nil, &page); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return page.Groups, nil
}

// GroupsFetcher fetches the account groups as documents. Like roles, groups
// carry no timestamp and are fetched in full every run.
type GroupsFetcher struct {
	client *Client
}

// NewGroupsFetcher creates the groups fetcher.
func NewGroupsFetcher(client *Client) *GroupsFetcher { return &GroupsFetcher{client: client} }

func (f *GroupsFetcher) ObjectType() domain.ObjectType { return domain.ObjectGroups }

func (f *GroupsFetcher) Fetch(ctx context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	groups, err := f.client.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	var docs []domain.Document
	for _, g := range groups {
		doc := domain.Document{Type: domain.ObjectGroups}
		scope.Schema.Apply(&doc, map[string]any{
			"id":   g.ID,
			"name": g.Name,
		})
		doc.URL = "https://zoom.us/account/group#/detail/" + g.ID
		doc.Body = fmt.Sprintf("Group: %s\nMembers: %d", g.Name, g.TotalMembers)
		tagPermissions(&doc, "", scope)
		docs = append(docs, doc)
	}
	return docs, nil
}
