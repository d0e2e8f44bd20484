package main

import (
	"context"
	"errors"
	"time"

	"Chatwebserver/internal/config"
	"Chatwebserver/internal/service"
	"Chatwebserver/internal/store/mongostore"
	"Chatwebserver/internal/store/postgres"
)

type userStore interface {
	service.UsersStore
	service.ProfileStore
	service.UserDirectoryStore
}

// backend is the set of stores for whichever database is configured.
type backend struct {
	name          string
	users         userStore
	sessions      service.SessionsStore
	friendships   service.FriendshipsStore
	messages      service.MessagesStore
	notifications service.NotificationsStore
	ping          func(context.Context) error
	close         func()
	// purgeSessions is nil when the store expires sessions itself.
	purgeSessions purgeFunc
}

var errNoStore = errors.New("no store configured: set APP_DB_DSN or APP_MONGO_URI")

// openBackend connects to the configured database. Mongo indexes are
// ensured on every start; the Postgres schema is applied only with migrate.
func openBackend(ctx context.Context, cfg config.Config, migrate bool) (*backend, error) {
	switch {
	case cfg.DBDSN != "":
		return openPostgres(ctx, cfg, migrate)
	case cfg.MongoURI != "":
		return openMongo(ctx, cfg)
	default:
		return nil, errNoStore
	}
}

func openPostgres(ctx context.Context, cfg config.Config, migrate bool) (*backend, error) {
	pool, err := postgres.Open(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	sessions := postgres.NewSessionsStore(pool)
	return &backend{
		name:          "postgres",
		users:         postgres.NewUsersStore(pool),
		sessions:      sessions,
		friendships:   postgres.NewFriendshipsStore(pool),
		messages:      postgres.NewMessagesStore(pool),
		notifications: postgres.NewNotificationsStore(pool),
		ping:          pool.Ping,
		close:         pool.Close,
		purgeSessions: sessions.PurgeExpired,
	}, nil
}

func openMongo(ctx context.Context, cfg config.Config) (*backend, error) {
	client, db, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}

	return &backend{
		name:          "mongo",
		users:         mongostore.NewUsersStore(db),
		sessions:      mongostore.NewSessionsStore(db),
		friendships:   mongostore.NewFriendshipsStore(client, db),
		messages:      mongostore.NewMessagesStore(db),
		notifications: mongostore.NewNotificationsStore(db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		},
	}, nil
}
