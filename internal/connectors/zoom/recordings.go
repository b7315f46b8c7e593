package zoom

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

type recordingFile struct {
	ID             string `json:"id"`
	FileType       string `json:"file_type"`
	FileSize       int64  `json:"file_size"`
	Status         string `json:"status"`
	RecordingStart string `json:"recording_start"`
	PlayURL        string `json:"play_url"`
}

type recordingMeeting struct {
	UUID           string          `json:"uuid"`
	HostID         string          `json:"host_id"`
	Topic          string          `json:"topic"`
	TotalSize      int64           `json:"total_size"`
	RecordingFiles []recordingFile `json:"recording_files"`
}

type recordingPage struct {
	NextPageToken string             `json:"next_page_token"`
	Meetings      []recordingMeeting `json:"meetings"`
}

// ListRecordings pages through one user's cloud recordings within the
// given month-or-shorter span. The endpoint rejects spans over a month, so
// callers iterate sub-windows.
func (c *Client) ListRecordings(ctx context.Context, userID string, from, to time.Time) ([]recordingMeeting, error) {
	var out []recordingMeeting
	query := url.Values{
		"page_size": {defaultPageSize},
		"from":      {from.UTC().Format("2006-01-02")},
		"to":        {to.UTC().Format("2006-01-02")},
	}
	for {
		var page recordingPage
		if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/recordings", query, &page); err != nil {
			return nil, fmt.Errorf("list recordings of %s: %w", userID, err)
		}
		out = append(out, page.Meetings...)
		if page.NextPageToken == "" {
			return out, nil
		}
		query.Set("next_page_token", page.NextPageToken)
	}
}

// RecordingsFetcher fetches the cloud recordings of the bucket's users as
// one document per completed recording file.
type RecordingsFetcher struct {
	client *Client
}

// NewRecordingsFetcher creates the recordings fetcher.
func NewRecordingsFetcher(client *Client) *RecordingsFetcher {
	return &RecordingsFetcher{client: client}
}

func (f *RecordingsFetcher) ObjectType() domain.ObjectType { return domain.ObjectRecordings }

func (f *RecordingsFetcher) Fetch(ctx context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	var docs []domain.Document
	for _, u := range scope.Users {
		for _, span := range monthlySpans(scope.Window) {
			meetings, err := f.client.ListRecordings(ctx, u.ID, span.Start, span.End)
			if err != nil {
				return nil, err
			}
			for _, m := range meetings {
				docs = append(docs, f.recordingDocs(m, scope)...)
			}
		}
	}
	return docs, nil
}

// recordingDocs projects one recorded meeting into documents, one per
// completed file. Timeline files have no playback page so their url field
// is omitted.
func (f *RecordingsFetcher) recordingDocs(m recordingMeeting, scope *driven.FetchScope) []domain.Document {
	deepLink := "https://zoom.us/recording/detail?meeting_id=" + url.QueryEscape(m.UUID)
	var docs []domain.Document
	for _, file := range m.RecordingFiles {
		if file.Status != "completed" {
			continue
		}
		if !withinWindow(file.RecordingStart, scope.Window) {
			continue
		}
		source := map[string]any{
			"id":              file.ID,
			"topic":           m.Topic,
			"recording_start": file.RecordingStart,
			"total_size":      m.TotalSize,
			"play_url":        file.PlayURL,
		}
		if file.FileType == "TIMELINE" {
			delete(source, "play_url")
		}
		doc := domain.Document{Type: domain.ObjectRecordings, ParentID: m.HostID}
		scope.Schema.Apply(&doc, source)
		if doc.URL == "" && file.FileType != "TIMELINE" {
			doc.URL = deepLink
		}
		doc.Body = fmt.Sprintf("Recording of: %s\nFile Type: %s\nFile Size: %d byte(s)",
			m.Topic, file.FileType, file.FileSize)
		tagPermissions(&doc, m.HostID, scope)
		docs = append(docs, doc)
	}
	return docs
}

// monthlySpans slices the window into sub-ranges of at most one month, the
// widest span the recordings endpoint accepts.
func monthlySpans(window domain.TimeRange) []domain.TimeRange {
	if window.Start.IsZero() && window.End.IsZero() {
		return nil
	}
	var spans []domain.TimeRange
	for start := window.Start; start.Before(window.End); {
		end := start.AddDate(0, 1, 0)
		if end.After(window.End) {
			end = window.End
		}
		spans = append(spans, domain.TimeRange{Start: start, End: end})
		start = end
	}
	return spans
}
