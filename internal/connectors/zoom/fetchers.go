package zoom

import (
	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

// Fetchers returns the full fetcher set keyed by object type, ready for the
// orchestrator. Disabled types are simply never invoked.
func Fetchers(client *Client) map[domain.ObjectType]driven.ObjectFetcher {
	set := []driven.ObjectFetcher{
		NewUsersFetcher(),
		NewRolesFetcher(client),
		NewGroupsFetcher(client),
		NewMeetingsFetcher(client),
		NewPastMeetingsFetcher(client),
		NewRecordingsFetcher(client),
		NewChannelsFetcher(client),
		NewChatsFetcher(client),
		NewFilesFetcher(client),
	}
	out := make(map[domain.ObjectType]driven.ObjectFetcher, len(set))
	for _, f := range set {
		out[f.ObjectType()] = f
	}
	return out
}
