package zoom

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

type chatFile struct {
	FileID      string `json:"file_id"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	DownloadURL string `json:"download_url"`
}

type chatMessage struct {
	ID       string     `json:"id"`
	Message  string     `json:"message"`
	Sender   string     `json:"sender"`
	DateTime string     `json:"date_time"`
	Files    []chatFile `json:"files"`
}

type chatPage struct {
	NextPageToken string        `json:"next_page_token"`
	Messages      []chatMessage `json:"messages"`
}

// ListChatMessages pages through one user's message history within the
// window. File attachments come embedded in their messages.
func (c *Client) ListChatMessages(ctx context.Context, userID string, window domain.TimeRange) ([]chatMessage, error) {
	var out []chatMessage
	query := url.Values{
		"page_size": {chatPageSize},
		"from":      {domain.FormatTimestamp(window.Start)},
		"to":        {domain.FormatTimestamp(window.End)},
	}
	for {
		var page chatPage
		if err := c.get(ctx, "/chat/users/"+url.PathEscape(userID)+"/messages", query, &page); err != nil {
			return nil, fmt.Errorf("list messages of %s: %w", userID, err)
		}
		out = append(out, page.Messages...)
		if page.NextPageToken == "" {
			return out, nil
		}
		query.Set("next_page_token", page.NextPageToken)
	}
}

// chatWindow clamps the window to the six months of history the chat
// endpoints retain. The second return is false when the whole window lies
// past the boundary and the pass can be skipped.
func chatWindow(window domain.TimeRange, t domain.ObjectType) (domain.TimeRange, bool) {
	floor := time.Now().UTC().AddDate(0, -6, 0)
	if window.End.Before(floor) {
		logger.Warn("%s window ends before the six month retention boundary, nothing to fetch", t)
		return window, false
	}
	clamped, adjusted := window.ClampStart(floor)
	if adjusted {
		logger.Warn("%s window start raised to %s, older history is not retained upstream",
			t, domain.FormatTimestamp(floor))
	}
	return clamped, true
}

// ChatsFetcher fetches chat messages for the users whose role grants chat
// read access. A message shows up in both ends' streams; the first stream
// that yields it wins.
type ChatsFetcher struct {
	client *Client
}

// NewChatsFetcher creates the chats fetcher.
func NewChatsFetcher(client *Client) *ChatsFetcher { return &ChatsFetcher{client: client} }

func (f *ChatsFetcher) ObjectType() domain.ObjectType { return domain.ObjectChats }

func (f *ChatsFetcher) Fetch(ctx context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	window, ok := chatWindow(scope.Window, domain.ObjectChats)
	if !ok {
		return nil, nil
	}
	seen := make(map[string]struct{})
	var docs []domain.Document
	for _, u := range scope.Users {
		if !chatCapable(u.ID, scope.ChatUserIDs) {
			continue
		}
		messages, err := f.client.ListChatMessages(ctx, u.ID, window)
		if err != nil {
			return nil, err
		}
		for _, msg := range messages {
			if _, ok := seen[msg.ID]; ok {
				continue
			}
			seen[msg.ID] = struct{}{}
			doc := domain.Document{Type: domain.ObjectChats, ParentID: u.ID}
			scope.Schema.Apply(&doc, map[string]any{
				"id":        msg.ID,
				"message":   msg.Message,
				"date_time": msg.DateTime,
			})
			doc.Body = fmt.Sprintf("Sender: %s\n%s", msg.Sender, msg.Message)
			tagPermissions(&doc, u.ID, scope)
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func chatCapable(userID string, chatUserIDs []string) bool {
	for _, id := range chatUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
