package zoom

import (
	"context"
	"fmt"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

// FilesFetcher fetches the file attachments of the chat history, one
// document per file. It shares the messages endpoint and its six month
// retention with the chats fetcher.
type FilesFetcher struct {
	client *Client
}

// NewFilesFetcher creates the chat files fetcher.
func NewFilesFetcher(client *Client) *FilesFetcher { return &FilesFetcher{client: client} }

func (f *FilesFetcher) ObjectType() domain.ObjectType { return domain.ObjectFiles }

func (f *FilesFetcher) Fetch(ctx context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	window, ok := chatWindow(scope.Window, domain.ObjectFiles)
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
			for _, file := range msg.Files {
				if file.FileID == "" {
					continue
				}
				if _, ok := seen[file.FileID]; ok {
					continue
				}
				seen[file.FileID] = struct{}{}
				doc := domain.Document{Type: domain.ObjectFiles, ParentID: u.ID}
				scope.Schema.Apply(&doc, map[string]any{
					"file_id":      file.FileID,
					"file_name":    file.FileName,
					"file_size":    file.FileSize,
					"download_url": file.DownloadURL,
					"date_time":    msg.DateTime,
				})
				doc.Body = fmt.Sprintf("File: %s\nShared by: %s", file.FileName, msg.Sender)
				tagPermissions(&doc, u.ID, scope)
				docs = append(docs, doc)
			}
		}
	}
	return docs, nil
}
