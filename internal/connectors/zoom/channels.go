package zoom

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

type zoomChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
}

type channelPage struct {
	NextPageToken string        `json:"next_page_token"`
	Channels      []zoomChannel `json:"channels"`
}

// ListChannels pages through one user's chat channels.
func (c *Client) ListChannels(ctx context.Context, userID string) ([]zoomChannel, error) {
	var out []zoomChannel
	query := url.Values{"page_size": {chatPageSize}}
	for {
		var page channelPage
		if err := c.get(ctx, "/chat/users/"+url.PathEscape(userID)+"/channels", query, &page); err != nil {
			return nil, fmt.Errorf("list channels of %s: %w", userID, err)
		}
		out = append(out, page.Channels...)
		if page.NextPageToken == "" {
			return out, nil
		}
		query.Set("next_page_token", page.NextPageToken)
	}
}

// ChannelsFetcher fetches the chat channels of the bucket's users. Channels
// carry no timestamp, so every run sees the full set; a channel may appear
// through several members and is deduped downstream by id.
type ChannelsFetcher struct {
	client *Client
}

// NewChannelsFetcher creates the channels fetcher.
func NewChannelsFetcher(client *Client) *ChannelsFetcher { return &ChannelsFetcher{client: client} }

func (f *ChannelsFetcher) ObjectType() domain.ObjectType { return domain.ObjectChannels }

func (f *ChannelsFetcher) Fetch(ctx context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	seen := make(map[string]struct{})
	var docs []domain.Document
	for _, u := range scope.Users {
		channels, err := f.client.ListChannels(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		for _, ch := range channels {
			if _, ok := seen[ch.ID]; ok {
				continue
			}
			seen[ch.ID] = struct{}{}
			doc := domain.Document{Type: domain.ObjectChannels, ParentID: u.ID}
			scope.Schema.Apply(&doc, map[string]any{
				"id":   ch.ID,
				"name": ch.Name,
			})
			doc.Body = "Channel: " + ch.Name
			tagPermissions(&doc, u.ID, scope)
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
