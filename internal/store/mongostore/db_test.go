package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"Chatwebserver/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIndexModelsKeepEmailUnique(t *testing.T) {
	models := indexModels()

	var found bool
	for _, m := range models[usersCollection] {
		if m.Options == nil || m.Options.Name == nil || *m.Options.Name != "users_email_uq" {
			continue
		}
		found = true
		if m.Options.Unique == nil || !*m.Options.Unique {
			t.Fatalf("users_email_uq is not unique")
		}
	}
	if !found {
		t.Fatalf("users_email_uq missing from %v", models[usersCollection])
	}

	sessions := models[sessionsCollection]
	if len(sessions) != 1 || sessions[0].Options == nil || sessions[0].Options.ExpireAfterSeconds == nil {
		t.Fatalf("sessions need a ttl index: %+v", sessions)
	}
}

// Runs against a real server when APP_TEST_MONGO_URI is set.
func TestConnectRejectsDuplicateEmail(t *testing.T) {
	uri := os.Getenv("APP_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("APP_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := Connect(ctx, uri, "chat_test_"+primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	users := NewUsersStore(db)
	if _, err := users.CreateUser(ctx, "a@x.com", "Ann", "hash"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	if _, err := users.CreateUser(ctx, "a@x.com", "Ann Again", "hash"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("second CreateUser err = %v, want ErrEmailTaken", err)
	}
}
