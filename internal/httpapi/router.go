package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"Chatwebserver/internal/auth"
	"Chatwebserver/internal/relay"
	"Chatwebserver/internal/service"

	"github.com/gorilla/websocket"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth          *service.AuthService
	Profile       *service.ProfileService
	Users         *service.UsersService
	Friends       *service.FriendsService
	Messages      *service.MessagesService
	Notifications *service.NotificationService
	Hub           *relay.Hub
	Media         http.Handler

	Tokens       auth.TokenCodec
	CookieSecure bool
	SessionTTL   time.Duration
	CORSOrigins  []string
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:           logger,
		isProd:           opts.IsProd,
		dbPing:           opts.DBPing,
		authSvc:          opts.Auth,
		profileSvc:       opts.Profile,
		usersSvc:         opts.Users,
		friendsSvc:       opts.Friends,
		messagesSvc:      opts.Messages,
		notificationsSvc: opts.Notifications,
		hub:              opts.Hub,
		tokens:           opts.Tokens,
		cookieSecure:     opts.CookieSecure,
		sessionTTL:       opts.SessionTTL,
		loginLimiter:     newLoginLimiter(),
	}
	api.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.CORSOrigins),
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /healthz", api.handleHealthz)
	if opts.Media != nil {
		publicMux.Handle("GET /media/", opts.Media)
	}

	if api.authSvc == nil {
		apiMux.HandleFunc("/api/", handleNotImplemented)
	} else {
		apiMux.HandleFunc("POST /api/auth/register", api.handleAuthRegister)
		apiMux.HandleFunc("POST /api/auth/login", api.handleAuthLogin)
		apiMux.HandleFunc("POST /api/auth/logout", api.handleAuthLogout)
		apiMux.HandleFunc("GET /api/auth/me", api.requireAuth(api.handleAuthMe))
		if api.profileSvc != nil {
			apiMux.HandleFunc("PUT /api/auth/update-profile", api.requireAuth(api.handleAuthUpdateProfile))
		}

		if api.usersSvc != nil {
			apiMux.HandleFunc("GET /api/users/find", api.requireAuth(api.handleUsersFind))
			apiMux.HandleFunc("GET /api/messages/users", api.requireAuth(api.handleMessagesUsers))
		}

		if api.friendsSvc != nil {
			apiMux.HandleFunc("GET /api/users/friends", api.requireAuth(api.handleFriendsList))
			apiMux.HandleFunc("GET /api/users/requests", api.requireAuth(api.handleFriendsRequests))
			apiMux.HandleFunc("POST /api/users/send-request/{recipientId}", api.requireAuth(api.handleFriendsSendRequest))
			apiMux.HandleFunc("POST /api/users/respond-request", api.requireAuth(api.handleFriendsRespond))
		}

		if api.messagesSvc != nil {
			apiMux.HandleFunc("GET /api/messages/{userId}", api.requireAuth(api.handleMessagesConversation))
			apiMux.HandleFunc("POST /api/messages/send/{userId}", api.requireAuth(api.handleMessagesSend))
		}

		if api.notificationsSvc != nil {
			apiMux.HandleFunc("GET /api/notifications", api.requireAuth(api.handleNotificationsList))
			apiMux.HandleFunc("POST /api/notifications/mark-read", api.requireAuth(api.handleNotificationsMarkRead))
		}

		if api.hub != nil {
			apiMux.HandleFunc("GET /api/ws", api.handleWebSocket)
		}
	}

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ServeMux.Handler does not populate path values; dispatch through
		// ServeHTTP once the route is known to exist.
		if _, pattern := apiMux.Handler(r); pattern == "" {
			handleAPINotFound(w, r)
			return
		}
		apiMux.ServeHTTP(w, r)
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = CORS(opts.CORSOrigins)(h)
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not implemented")
}

func handleAPINotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not found")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc          *service.AuthService
	profileSvc       *service.ProfileService
	usersSvc         *service.UsersService
	friendsSvc       *service.FriendsService
	messagesSvc      *service.MessagesService
	notificationsSvc *service.NotificationService
	hub              *relay.Hub
	upgrader         websocket.Upgrader

	tokens       auth.TokenCodec
	cookieSecure bool
	sessionTTL   time.Duration

	loginLimiter *loginLimiter
}

func (a *api) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
