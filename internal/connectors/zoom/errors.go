package zoom

import (
	"errors"
	"fmt"
	"net"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

// goneStatus lists, per probeable object type, the status codes the API
// returns for an object that no longer exists. Roles are the odd one out:
// an unknown role id answers with 300 instead of 404.
var goneStatus = map[domain.ObjectType][]int{
	domain.ObjectUsers:        {400, 404},
	domain.ObjectGroups:       {400, 404},
	domain.ObjectMeetings:     {400, 404},
	domain.ObjectPastMeetings: {400, 404},
	domain.ObjectRoles:        {300, 400},
}

// APIError represents a Zoom API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zoom: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// CredentialError marks an authentication failure that configuration must
// fix. Key names the offending configuration key.
type CredentialError struct {
	Key string
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("zoom: credential rejected, check %s: %v", e.Key, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// IsGone reports whether err is the API telling us the object of type t is
// definitively absent, per the type's status code table.
func IsGone(err error, t domain.ObjectType) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range goneStatus[t] {
		if apiErr.StatusCode == code {
			return true
		}
	}
	return false
}

// IsNotFound checks if the error is a plain 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an expired or invalid token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}

// IsRateLimited checks if the error indicates request throttling.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}

// retryable classifies errors worth another attempt: throttling, server
// errors and transport failures. Everything else is terminal.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
