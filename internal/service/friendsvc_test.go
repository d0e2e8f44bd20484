package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"Chatwebserver/internal/domain"
	"Chatwebserver/internal/relay"
)

type stubFriendshipsStore struct {
	t *testing.T

	createRequestFunc func(context.Context, domain.FriendRequest) (domain.Notification, error)
	respondFunc       func(context.Context, string, string, domain.FriendRequestStatus) error
	listFriendsFunc   func(context.Context, string) ([]domain.User, error)
	listIncomingFunc  func(context.Context, string) ([]domain.User, error)
}

func (s *stubFriendshipsStore) CreateRequest(ctx context.Context, req domain.FriendRequest) (domain.Notification, error) {
	if s.createRequestFunc != nil {
		return s.createRequestFunc(ctx, req)
	}
	s.t.Fatalf("CreateRequest called unexpectedly")
	return domain.Notification{}, errors.New("unexpected call")
}

func (s *stubFriendshipsStore) Respond(ctx context.Context, recipientID, senderID string, status domain.FriendRequestStatus) error {
	if s.respondFunc != nil {
		return s.respondFunc(ctx, recipientID, senderID, status)
	}
	s.t.Fatalf("Respond called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubFriendshipsStore) ListFriends(ctx context.Context, userID string) ([]domain.User, error) {
	if s.listFriendsFunc != nil {
		return s.listFriendsFunc(ctx, userID)
	}
	s.t.Fatalf("ListFriends called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubFriendshipsStore) ListIncoming(ctx context.Context, userID string) ([]domain.User, error) {
	if s.listIncomingFunc != nil {
		return s.listIncomingFunc(ctx, userID)
	}
	s.t.Fatalf("ListIncoming called unexpectedly")
	return nil, errors.New("unexpected call")
}

type emitted struct {
	userID  string
	event   string
	payload any
}

type recordingRelay struct {
	online map[string]bool
	events []emitted
}

func (r *recordingRelay) Emit(userID, event string, payload any) bool {
	if !r.online[userID] {
		return false
	}
	r.events = append(r.events, emitted{userID: userID, event: event, payload: payload})
	return true
}

func knownUsers(t *testing.T, ids ...string) *stubUsersStore {
	return &stubUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			for _, known := range ids {
				if id == known {
					return domain.User{ID: id}, nil
				}
			}
			return domain.User{}, domain.ErrNotFound
		},
	}
}

func TestFriendsService_SendRequestBuildsNotificationAndRelays(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	var got domain.FriendRequest
	store := &stubFriendshipsStore{
		t: t,
		createRequestFunc: func(_ context.Context, req domain.FriendRequest) (domain.Notification, error) {
			got = req
			n := req.Notification
			n.ID = "n1"
			return n, nil
		},
	}
	rl := &recordingRelay{online: map[string]bool{"b": true}}
	svc := &FriendsService{Users: knownUsers(t, "b"), Friendships: store, Relay: rl, Now: func() time.Time { return now }}

	sender := domain.User{ID: "a", FullName: "Ann", ProfilePic: "/media/a.png"}
	n, err := svc.SendRequest(context.Background(), sender, "b")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if got.SenderID != "a" || got.RecipientID != "b" {
		t.Fatalf("request = %+v", got)
	}
	if n.Type != domain.NotificationFriendRequest || n.Read {
		t.Fatalf("notification = %+v", n)
	}
	if n.Message != "Ann has sent you a friend request." {
		t.Fatalf("message = %q", n.Message)
	}
	if n.RecipientID != "b" || n.Sender.ID != "a" || n.Sender.FullName != "Ann" || !n.CreatedAt.Equal(now) {
		t.Fatalf("notification = %+v", n)
	}

	if len(rl.events) != 1 {
		t.Fatalf("expected 1 relayed event, got %d", len(rl.events))
	}
	ev := rl.events[0]
	if ev.userID != "b" || ev.event != relay.EventNewNotification {
		t.Fatalf("event = %+v", ev)
	}
	if pn, ok := ev.payload.(domain.Notification); !ok || pn.ID != "n1" {
		t.Fatalf("payload = %#v", ev.payload)
	}
}

func TestFriendsService_SendRequestOfflineRecipientStillSucceeds(t *testing.T) {
	store := &stubFriendshipsStore{
		t: t,
		createRequestFunc: func(_ context.Context, req domain.FriendRequest) (domain.Notification, error) {
			return req.Notification, nil
		},
	}
	rl := &recordingRelay{}
	svc := &FriendsService{Users: knownUsers(t, "b"), Friendships: store, Relay: rl}

	if _, err := svc.SendRequest(context.Background(), domain.User{ID: "a", FullName: "Ann"}, "b"); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if len(rl.events) != 0 {
		t.Fatalf("expected no events, got %+v", rl.events)
	}
}

func TestFriendsService_SendRequestErrors(t *testing.T) {
	svc := &FriendsService{Users: knownUsers(t, "b"), Friendships: &stubFriendshipsStore{t: t}, Relay: &recordingRelay{}}
	me := domain.User{ID: "a", FullName: "Ann"}

	if _, err := svc.SendRequest(context.Background(), me, "a"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("self: expected ErrValidation, got %v", err)
	}
	if _, err := svc.SendRequest(context.Background(), me, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank: expected ErrValidation, got %v", err)
	}
	if _, err := svc.SendRequest(context.Background(), me, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown: expected ErrNotFound, got %v", err)
	}

	svc.Friendships = &stubFriendshipsStore{
		t: t,
		createRequestFunc: func(context.Context, domain.FriendRequest) (domain.Notification, error) {
			return domain.Notification{}, domain.ErrFriendRequestExists
		},
	}
	if _, err := svc.SendRequest(context.Background(), me, "b"); !errors.Is(err, domain.ErrFriendRequestExists) {
		t.Fatalf("duplicate: expected ErrFriendRequestExists, got %v", err)
	}
}

func TestFriendsService_Respond(t *testing.T) {
	var calls []domain.FriendRequestStatus
	store := &stubFriendshipsStore{
		t: t,
		respondFunc: func(_ context.Context, recipientID, senderID string, status domain.FriendRequestStatus) error {
			if recipientID != "b" || senderID != "a" {
				return domain.ErrNotFound
			}
			calls = append(calls, status)
			return nil
		},
	}
	svc := &FriendsService{Friendships: store}

	if err := svc.Respond(context.Background(), "b", "a", domain.FriendRequestAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := svc.Respond(context.Background(), "b", "a", domain.FriendRequestDeclined); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if len(calls) != 2 || calls[0] != domain.FriendRequestAccepted || calls[1] != domain.FriendRequestDeclined {
		t.Fatalf("calls = %v", calls)
	}

	if err := svc.Respond(context.Background(), "b", "a", "maybe"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bad status: expected ErrValidation, got %v", err)
	}
	if err := svc.Respond(context.Background(), "b", "", domain.FriendRequestAccepted); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing sender: expected ErrValidation, got %v", err)
	}
	if err := svc.Respond(context.Background(), "b", "c", domain.FriendRequestAccepted); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("no pending request: expected ErrNotFound, got %v", err)
	}
}
