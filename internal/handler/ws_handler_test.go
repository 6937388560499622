package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/session"
	ws "github.com/codetrio/codetrio-web/internal/websocket"
)

func newWSServer(t *testing.T, state session.State, broker *session.MemoryBroker) *httptest.Server {
	t.Helper()
	h := NewWSHandler(broker, zerolog.Nop(), nil)
	r := gin.New()
	r.Use(withState(state, "sid"))
	r.GET("/ws/session", h.SessionStream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session"
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ws.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestSessionStreamDeliversReplacement(t *testing.T) {
	broker := session.NewMemoryBroker()
	state := session.State{Session: &session.Session{ID: "sid", User: model.User{ID: "u1"}, Role: model.RoleStudent}}
	srv := newWSServer(t, state, broker)

	conn, _, err := dial(t, srv)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if msg := readMessage(t, conn); msg.Type != ws.TypeReady {
		t.Fatalf("first message = %q, want ready", msg.Type)
	}

	if err := conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != ws.TypePong {
		t.Fatalf("ping answered with %q", msg.Type)
	}

	if err := broker.Publish(context.Background(), "sid", session.Event{Type: session.EventReplaced, At: time.Now()}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != ws.TypeReplaced || msg.At == nil {
		t.Fatalf("message = %+v", msg)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal close after replacement, got %v", err)
	}
}

func TestSessionStreamRejectsAnonymous(t *testing.T) {
	srv := newWSServer(t, session.State{}, session.NewMemoryBroker())
	_, resp, err := dial(t, srv)
	if err == nil {
		t.Fatal("anonymous dial succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("response = %v", resp)
	}
}
