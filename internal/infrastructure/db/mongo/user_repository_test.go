package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/formsdesk/forms-api/internal/core/domain"
)

func TestUserDocumentRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	in := &domain.User{
		ID:           12,
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		Roles:        []string{domain.RoleAdmin, domain.RoleUser},
		CreatedAt:    created,
		UpdatedAt:    created,
	}

	raw, err := bson.Marshal(fromDomain(in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields["_id"] != int64(12) || fields["username"] != "alice" || fields["password_hash"] != "$2a$10$hash" {
		t.Fatalf("unexpected document: %v", fields)
	}

	var doc mongoUser
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := toDomain(doc)
	if out.ID != 12 || out.Username != "alice" || !out.CreatedAt.Equal(created) || len(out.Roles) != 2 {
		t.Fatalf("unexpected user: %+v", out)
	}
}

func TestUnixToTime_Zero(t *testing.T) {
	if !unixToTime(0).IsZero() {
		t.Fatalf("expected zero time")
	}
}
