package data

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/linguachat/linguachat/internal/db"
)

func TestUsersCreateAndLookup(t *testing.T) {
	// require MONGODB_URI set externally for integration tests
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "linguachat_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	defer func() { _ = c.Close(context.Background()) }()

	// ensure clean collection and unique index
	_ = c.UsersCollection().Drop(ctx)
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	users := NewUsersStore(c.UsersCollection())

	created, err := users.CreateUser(ctx, "Ann.Smith@Example.COM", "hashed", "Ann", "ES", "555-0101")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.Email != "ann.smith@example.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}
	if created.Lang != "es" {
		t.Fatalf("expected normalized lang, got %q", created.Lang)
	}

	// duplicate email must be rejected
	if _, err := users.CreateUser(ctx, "ann.smith@example.com", "hashed", "Ann", "es", ""); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	// lookups by mixed-case email and by hex id
	byEmail, err := users.GetUserByEmail(ctx, "ANN.SMITH@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	byID, err := users.GetUserByID(ctx, byEmail.ID.Hex())
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Name != "Ann" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	if _, err := users.GetUserByID(ctx, "not-a-hex-id"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for malformed id, got %v", err)
	}

	all, err := users.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 user, got %d", len(all))
	}
}
