package publishers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Event describes a successful write against a remote resource.
type Event struct {
	ID         string    `json:"id"`
	Verb       string    `json:"verb"`
	Resource   string    `json:"resource"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Record     any       `json:"record,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent constructs an Event stamped with the current time and a
// time-ordered id sinks can deduplicate on.
func NewEvent(verb, resource, url string, status int, record any) Event {
	evt := Event{
		Verb:       verb,
		Resource:   resource,
		URL:        url,
		StatusCode: status,
		Record:     record,
		OccurredAt: time.Now().UTC(),
	}
	if id, err := uuid.NewV7(); err == nil {
		evt.ID = id.String()
	}
	return evt
}

// attributes returns the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_id": e.ID,
		"resource": e.Resource,
		"verb":     e.Verb,
	}
}

// body renders evt as the JSON message payload.
func (e Event) body() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(raw), nil
}

// stringAttributes converts the non-empty routing attributes with mk.
func stringAttributes[T any](evt Event, mk func(string) T) map[string]T {
	out := make(map[string]T, 3)
	for k, v := range evt.attributes() {
		if v != "" {
			out[k] = mk(v)
		}
	}
	return out
}
