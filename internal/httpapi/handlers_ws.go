package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"Chatwebserver/internal/relay"
)

// handleWebSocket upgrades an authenticated request and attaches it to the
// relay until the connection closes.
func (a *api) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	u, _, err := a.authenticate(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		a.log().Debug("websocket upgrade failed", "user_id", u.ID, "err", err)
		return
	}

	a.hub.Serve(relay.NewClient(u.ID, conn))
}

// originChecker accepts same-host requests, requests without an Origin
// header, and the configured browser origins.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if set[origin] || set["*"] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}
