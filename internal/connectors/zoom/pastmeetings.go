package zoom

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

type meetingInstance struct {
	UUID      string `json:"uuid"`
	StartTime string `json:"start_time"`
}

type instancePage struct {
	Meetings []meetingInstance `json:"meetings"`
}

type participantPage struct {
	NextPageToken string `json:"next_page_token"`
	Participants  []struct {
		Name  string `json:"name"`
		Email string `json:"user_email"`
	} `json:"participants"`
}

// ListMeetingInstances returns the past occurrences of one meeting. A
// meeting that never took place answers 404 or a 400-class rejection,
// either of which maps to no instances.
func (c *Client) ListMeetingInstances(ctx context.Context, meetingID string) ([]meetingInstance, error) {
	var page instancePage
	err := c.get(ctx, "/past_meetings/"+url.PathEscape(meetingID)+"/instances", nil, &page)
	if IsGone(err, domain.ObjectPastMeetings) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list instances of meeting %s: %w", meetingID, err)
	}
	return page.Meetings, nil
}

// ListParticipants pages through the participant report of one past meeting
// instance.
func (c *Client) ListParticipants(ctx context.Context, instanceUUID string) ([]string, error) {
	var out []string
	path := "/past_meetings/" + escapeMeetingUUID(instanceUUID) + "/participants"
	query := url.Values{"page_size": {defaultPageSize}}
	for {
		var page participantPage
		if err := c.get(ctx, path, query, &page); err != nil {
			return nil, fmt.Errorf("list participants of %s: %w", instanceUUID, err)
		}
		for _, p := range page.Participants {
			out = append(out, p.Name)
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		query.Set("next_page_token", page.NextPageToken)
	}
}

// escapeMeetingUUID path-escapes a meeting UUID. UUIDs starting with a
// slash or containing a double slash must be double-encoded or the API
// routes the request wrong.
func escapeMeetingUUID(uuid string) string {
	if strings.HasPrefix(uuid, "/") || strings.Contains(uuid, "//") {
		return url.PathEscape(url.PathEscape(uuid))
	}
	return url.PathEscape(uuid)
}

// PastMeetingsFetcher fetches the held occurrences of the meetings the
// meetings pass collected. Instances are only addressable through their
// parent meeting, never listable account-wide.
type PastMeetingsFetcher struct {
	client *Client
}

// NewPastMeetingsFetcher creates the past-meetings fetcher.
func NewPastMeetingsFetcher(client *Client) *PastMeetingsFetcher {
	return &PastMeetingsFetcher{client: client}
}

func (f *PastMeetingsFetcher) ObjectType() domain.ObjectType { return domain.ObjectPastMeetings }

func (f *PastMeetingsFetcher) Fetch(ctx context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	var docs []domain.Document
	for _, candidate := range scope.MeetingCandidates {
		instances, err := f.client.ListMeetingInstances(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		for _, inst := range instances {
			if !withinWindow(inst.StartTime, scope.Window) {
				continue
			}
			doc := domain.Document{Type: domain.ObjectPastMeetings, ParentID: candidate.ID}
			scope.Schema.Apply(&doc, map[string]any{
				"uuid":       inst.UUID,
				"start_time": inst.StartTime,
				"topic":      candidate.Topic,
			})
			doc.URL = "https://zoom.us/meeting/" + candidate.ID
			doc.Body = f.participantBody(ctx, inst.UUID, candidate.HostID)
			tagPermissions(&doc, candidate.HostID, scope)
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// participantBody renders the participant report, falling back to the host
// when the report is empty or unavailable for the plan tier.
func (f *PastMeetingsFetcher) participantBody(ctx context.Context, instanceUUID, hostID string) string {
	participants, err := f.client.ListParticipants(ctx, instanceUUID)
	if err != nil {
		logger.Debug("participant report unavailable for %s, using the host: %v", instanceUUID, err)
	}
	if len(participants) == 0 {
		return "Meeting Host: " + hostID
	}
	return "Meeting Participants: " + strings.Join(participants, ", ")
}
