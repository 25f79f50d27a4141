package publishers

import (
	"testing"

	"github.com/gofrs/uuid/v5"
)

func TestNewEventAssignsTimeOrderedID(t *testing.T) {
	first := NewEvent("POST", "widgets", "https://api.test/widgets", 201, nil)
	second := NewEvent("POST", "widgets", "https://api.test/widgets", 201, nil)

	id, err := uuid.FromString(first.ID)
	if err != nil {
		t.Fatalf("event id %q is not a uuid: %v", first.ID, err)
	}
	if id.Version() != uuid.V7 {
		t.Fatalf("expected v7 uuid, got version %d", id.Version())
	}
	if first.ID == second.ID {
		t.Fatalf("event ids should be unique")
	}
	if first.attributes()["event_id"] != first.ID {
		t.Fatalf("event_id attribute missing")
	}
	if first.OccurredAt.IsZero() || first.OccurredAt.Location().String() != "UTC" {
		t.Fatalf("OccurredAt = %v", first.OccurredAt)
	}
}
