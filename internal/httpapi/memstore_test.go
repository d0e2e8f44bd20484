package httpapi

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"Chatwebserver/internal/domain"
)

// memStore is an in-memory implementation of every store the services need.
type memStore struct {
	mu sync.Mutex

	seq           int
	users         map[string]*memUser
	sessions      map[string]domain.Session
	messages      []domain.Message
	notifications []domain.Notification
}

type memUser struct {
	user domain.User
	hash string
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*memUser),
		sessions: make(map[string]domain.Session),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

func cloneUser(u domain.User) domain.User {
	u.Friends = append([]string{}, u.Friends...)
	u.FriendRequestsSent = append([]string{}, u.FriendRequestsSent...)
	u.FriendRequestsReceived = append([]string{}, u.FriendRequestsReceived...)
	return u
}

func has(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func without(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (m *memStore) CreateUser(_ context.Context, email, fullName, passwordHash string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.user.Email == email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	u := domain.User{
		ID:                     m.nextID("u"),
		Email:                  email,
		FullName:               fullName,
		Friends:                []string{},
		FriendRequestsSent:     []string{},
		FriendRequestsReceived: []string{},
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	m.users[u.ID] = &memUser{user: u, hash: passwordHash}
	return cloneUser(u), nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return cloneUser(u.user), nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (domain.UserWithPassword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.user.Email == email {
			return domain.UserWithPassword{User: cloneUser(u.user), PasswordHash: u.hash}, nil
		}
	}
	return domain.UserWithPassword{}, domain.ErrNotFound
}

func (m *memStore) UpdateProfile(_ context.Context, userID string, update domain.ProfileUpdate) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	if update.FullName != nil {
		u.user.FullName = *update.FullName
	}
	if update.ProfilePic != nil {
		u.user.ProfilePic = *update.ProfilePic
	}
	return cloneUser(u.user), nil
}

func (m *memStore) CreateSession(_ context.Context, userID string, expiresAt time.Time, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID("s")
	m.sessions[id] = domain.Session{ID: id, UserID: userID, CreatedAt: time.Now(), ExpiresAt: expiresAt}
	return id, nil
}

func (m *memStore) GetSession(_ context.Context, sessionID string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok || s.RevokedAt != nil {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memStore) RevokeSession(_ context.Context, sessionID string, when time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.RevokedAt = &when
		m.sessions[sessionID] = s
	}
	return nil
}

func (m *memStore) SearchUsers(_ context.Context, q string, limit int, excludeUserID string) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q = strings.ToLower(q)
	var out []domain.User
	for _, u := range m.users {
		if u.user.ID == excludeUserID {
			continue
		}
		if strings.Contains(strings.ToLower(u.user.FullName), q) || strings.Contains(strings.ToLower(u.user.Email), q) {
			out = append(out, cloneUser(u.user))
		}
	}
	sortUsers(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListUsersExcept(_ context.Context, userID string) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.User
	for _, u := range m.users {
		if u.user.ID != userID {
			out = append(out, cloneUser(u.user))
		}
	}
	sortUsers(out)
	return out, nil
}

func sortUsers(us []domain.User) {
	sort.Slice(us, func(i, j int) bool { return us[i].ID < us[j].ID })
}

func (m *memStore) CreateRequest(_ context.Context, req domain.FriendRequest) (domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recipient, ok := m.users[req.RecipientID]
	if !ok {
		return domain.Notification{}, domain.ErrNotFound
	}
	sender := m.users[req.SenderID]
	r := &recipient.user
	if has(r.Friends, req.SenderID) || has(r.FriendRequestsReceived, req.SenderID) || has(r.FriendRequestsSent, req.SenderID) {
		return domain.Notification{}, domain.ErrFriendRequestExists
	}

	r.FriendRequestsReceived = append(r.FriendRequestsReceived, req.SenderID)
	sender.user.FriendRequestsSent = append(sender.user.FriendRequestsSent, req.RecipientID)

	n := req.Notification
	n.ID = m.nextID("n")
	m.notifications = append(m.notifications, n)
	return n, nil
}

func (m *memStore) Respond(_ context.Context, recipientID, senderID string, status domain.FriendRequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recipient, ok := m.users[recipientID]
	if !ok || !has(recipient.user.FriendRequestsReceived, senderID) {
		return domain.ErrNotFound
	}
	sender := m.users[senderID]

	recipient.user.FriendRequestsReceived = without(recipient.user.FriendRequestsReceived, senderID)
	sender.user.FriendRequestsSent = without(sender.user.FriendRequestsSent, recipientID)
	if status == domain.FriendRequestAccepted {
		recipient.user.Friends = append(recipient.user.Friends, senderID)
		sender.user.Friends = append(sender.user.Friends, recipientID)
	}

	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.RecipientID == recipientID && n.Sender.ID == senderID && n.Type == domain.NotificationFriendRequest {
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return nil
}

func (m *memStore) related(userID string, pick func(domain.User) []string) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return []domain.User{}, nil
	}
	out := []domain.User{}
	for _, id := range pick(u.user) {
		if other, ok := m.users[id]; ok {
			out = append(out, cloneUser(other.user))
		}
	}
	return out, nil
}

func (m *memStore) ListFriends(_ context.Context, userID string) ([]domain.User, error) {
	return m.related(userID, func(u domain.User) []string { return u.Friends })
}

func (m *memStore) ListIncoming(_ context.Context, userID string) ([]domain.User, error) {
	return m.related(userID, func(u domain.User) []string { return u.FriendRequestsReceived })
}

func (m *memStore) CreateMessage(_ context.Context, msg domain.NewMessage) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := domain.Message{
		ID:          m.nextID("m"),
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Text:        msg.Text,
		Image:       msg.Image,
		CreatedAt:   msg.CreatedAt,
	}
	m.messages = append(m.messages, out)
	return out, nil
}

func (m *memStore) ListConversation(_ context.Context, a, b string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Message
	for _, msg := range m.messages {
		if (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) ListNotifications(_ context.Context, userID string) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Notification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].RecipientID == userID {
			out = append(out, m.notifications[i])
		}
	}
	return out, nil
}

func (m *memStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for i := range m.notifications {
		if m.notifications[i].RecipientID == userID && !m.notifications[i].Read {
			m.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}
