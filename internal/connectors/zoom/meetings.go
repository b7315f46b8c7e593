package zoom

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

// meetingTypeNames maps the numeric meeting type to its API meaning.
var meetingTypeNames = map[int]string{
	1: "Instant Meeting",
	2: "Scheduled Meeting",
	3: "Recurring Meeting (no fixed time)",
	8: "Recurring Meeting (fixed time)",
}

type zoomMeeting struct {
	ID        int64  `json:"id"`
	UUID      string `json:"uuid"`
	HostID    string `json:"host_id"`
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
	CreatedAt string `json:"created_at"`
}

type meetingPage struct {
	NextPageToken string        `json:"next_page_token"`
	Meetings      []zoomMeeting `json:"meetings"`
}

// ListMeetings pages through the scheduled meetings of one user.
func (c *Client) ListMeetings(ctx context.Context, userID string) ([]zoomMeeting, error) {
	var out []zoomMeeting
	query := url.Values{"page_size": {defaultPageSize}, "type": {"scheduled"}}
	for {
		var page meetingPage
		if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/meetings", query, &page); err != nil {
			return nil, fmt.Errorf("list meetings of %s: %w", userID, err)
		}
		out = append(out, page.Meetings...)
		if page.NextPageToken == "" {
			return out, nil
		}
		query.Set("next_page_token", page.NextPageToken)
	}
}

// MeetingsFetcher fetches the meetings hosted by the bucket's users. It
// also collects every meeting it saw into the scope for the past-meetings
// pass, which can only query instances by meeting id.
type MeetingsFetcher struct {
	client *Client
}

// NewMeetingsFetcher creates the meetings fetcher.
func NewMeetingsFetcher(client *Client) *MeetingsFetcher { return &MeetingsFetcher{client: client} }

func (f *MeetingsFetcher) ObjectType() domain.ObjectType { return domain.ObjectMeetings }

func (f *MeetingsFetcher) Fetch(ctx context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	var docs []domain.Document
	for _, u := range scope.Users {
		meetings, err := f.client.ListMeetings(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range meetings {
			if !withinWindow(m.CreatedAt, scope.Window) {
				continue
			}
			id := strconv.FormatInt(m.ID, 10)
			scope.MeetingCandidates = append(scope.MeetingCandidates, domain.MeetingCandidate{
				ID:        id,
				UUID:      m.UUID,
				HostID:    m.HostID,
				Topic:     m.Topic,
				Type:      m.Type,
				CreatedAt: m.CreatedAt,
			})

			doc := domain.Document{Type: domain.ObjectMeetings, ParentID: m.HostID}
			scope.Schema.Apply(&doc, map[string]any{
				"id":         id,
				"topic":      m.Topic,
				"created_at": m.CreatedAt,
			})
			doc.URL = "https://zoom.us/meeting/" + id
			doc.Body = fmt.Sprintf("Meeting Type: %s\nStart Time: %s\nDuration: %d minute(s)",
				meetingTypeName(m.Type), m.StartTime, m.Duration)
			tagPermissions(&doc, m.HostID, scope)
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// meetingTypeName renders the numeric meeting type, falling back to the raw
// number for types added upstream later.
func meetingTypeName(t int) string {
	if name, ok := meetingTypeNames[t]; ok {
		return name
	}
	return strconv.Itoa(t)
}
