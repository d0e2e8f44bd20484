package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func drain(t *testing.T, c *Client) []frame {
	t.Helper()
	var out []frame
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return out
			}
			var f frame
			if err := json.Unmarshal(raw, &f); err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

func lastOnline(t *testing.T, frames []frame) []string {
	t.Helper()
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Event != EventOnlineUsers {
			continue
		}
		var ids []string
		if err := json.Unmarshal(frames[i].Data, &ids); err != nil {
			t.Fatalf("decode online users: %v", err)
		}
		return ids
	}
	t.Fatalf("no %s frame", EventOnlineUsers)
	return nil
}

func TestHubRegisterBroadcastsSnapshot(t *testing.T) {
	h := NewHub(nil)
	a := NewClient("user-a", nil)
	b := NewClient("user-b", nil)

	h.Register(a)
	if got := lastOnline(t, drain(t, a)); !reflect.DeepEqual(got, []string{"user-a"}) {
		t.Fatalf("unexpected snapshot for a: %v", got)
	}

	h.Register(b)
	want := []string{"user-a", "user-b"}
	if got := lastOnline(t, drain(t, a)); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected snapshot for a: %v", got)
	}
	if got := lastOnline(t, drain(t, b)); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected snapshot for b: %v", got)
	}

	h.Unregister(b.ID)
	if got := lastOnline(t, drain(t, a)); !reflect.DeepEqual(got, []string{"user-a"}) {
		t.Fatalf("expected user-b gone, got %v", got)
	}
	if _, ok := h.Lookup("user-b"); ok {
		t.Fatalf("expected user-b lookup to miss")
	}
	if _, ok := <-b.send; ok {
		t.Fatalf("expected unregistered client queue to be closed")
	}
}

func TestHubEmitOfflineIsDropped(t *testing.T) {
	h := NewHub(nil)
	if h.Emit("nobody", EventNewMessage, map[string]string{"text": "hi"}) {
		t.Fatalf("expected emit to offline user to report not delivered")
	}
}

func TestHubEmitDeliversToRecipientOnly(t *testing.T) {
	h := NewHub(nil)
	a := NewClient("user-a", nil)
	b := NewClient("user-b", nil)
	h.Register(a)
	h.Register(b)
	drain(t, a)
	drain(t, b)

	if !h.Emit("user-b", EventNewMessage, map[string]string{"text": "hi"}) {
		t.Fatalf("expected delivery")
	}
	if got := drain(t, a); len(got) != 0 {
		t.Fatalf("sender should not receive the event: %+v", got)
	}
	got := drain(t, b)
	if len(got) != 1 || got[0].Event != EventNewMessage || !strings.Contains(string(got[0].Data), `"hi"`) {
		t.Fatalf("unexpected frames: %+v", got)
	}
}

func TestHubLastConnectWins(t *testing.T) {
	h := NewHub(nil)
	first := NewClient("user-a", nil)
	second := NewClient("user-a", nil)

	h.Register(first)
	h.Register(second)
	if connID, ok := h.Lookup("user-a"); !ok || connID != second.ID {
		t.Fatalf("expected newest connection to be mapped, got %q", connID)
	}

	drain(t, first)
	drain(t, second)
	h.Emit("user-a", EventNewNotification, "x")
	if got := drain(t, first); len(got) != 0 {
		t.Fatalf("replaced connection should not receive events: %+v", got)
	}
	if got := drain(t, second); len(got) != 1 {
		t.Fatalf("expected one event on newest connection, got %d", len(got))
	}

	// The stale connection going away must not unmap the newer one.
	h.Unregister(first.ID)
	if connID, ok := h.Lookup("user-a"); !ok || connID != second.ID {
		t.Fatalf("expected mapping to survive stale disconnect")
	}
	if got := h.OnlineUsers(); !reflect.DeepEqual(got, []string{"user-a"}) {
		t.Fatalf("unexpected online users: %v", got)
	}
}

func TestHubUnregisterUnknownIsNoop(t *testing.T) {
	h := NewHub(nil)
	h.Unregister("missing")
	if got := h.OnlineUsers(); len(got) != 0 {
		t.Fatalf("unexpected online users: %v", got)
	}
}

func TestHubEmitFullQueueDrops(t *testing.T) {
	h := NewHub(nil)
	c := NewClient("user-a", nil)
	h.Register(c)
	for i := 0; i < sendBuffer; i++ {
		h.Emit("user-a", EventNewMessage, i)
	}
	if h.Emit("user-a", EventNewMessage, "overflow") {
		t.Fatalf("expected full queue to drop the event")
	}
}

func TestHubServeOverWebsocket(t *testing.T) {
	h := NewHub(nil)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Serve(NewClient(r.URL.Query().Get("user"), conn))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=user-a"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read presence: %v", err)
	}
	if f.Event != EventOnlineUsers || string(f.Data) != `["user-a"]` {
		t.Fatalf("unexpected first frame: %s %s", f.Event, f.Data)
	}

	if !h.Emit("user-a", EventNewMessage, map[string]string{"text": "hi"}) {
		t.Fatalf("expected delivery to live socket")
	}
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if f.Event != EventNewMessage || string(f.Data) != `{"text":"hi"}` {
		t.Fatalf("unexpected event: %s %s", f.Event, f.Data)
	}

	_ = conn.Close()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := h.Lookup("user-a"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected user-a to be unregistered after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
