package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/middleware"
	"github.com/codetrio/codetrio-web/internal/response"
	"github.com/codetrio/codetrio-web/internal/session"
	ws "github.com/codetrio/codetrio-web/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins only admits same-host pages.
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(allowedOrigins) == 0 {
				return strings.HasSuffix(origin, "://"+r.Host)
			}
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// SessionEvents delivers the lifecycle events of one session.
type SessionEvents interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan session.Event, func(), error)
}

// WSHandler streams session lifecycle events to open pages.
type WSHandler struct {
	events   SessionEvents
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(events SessionEvents, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		events:   events,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/session
// Tells the page when its session was replaced by a new sign-in or ended,
// so it can reload with fresh state.
func (h *WSHandler) SessionStream(c *gin.Context) {
	state := middleware.GetSessionState(c)
	if !state.Authenticated() {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID := state.Session.ID

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, unsubscribe, err := h.events.Subscribe(ctx, sessionID)
	if err != nil {
		h.log.Error().Err(err).Msg("subscribe session events")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSessionLoading)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("user_id", state.User().ID).Logger()
	wsLog.Debug().Msg("page connected")

	// The reader goroutine owns reads; every write happens below.
	pings := make(chan struct{}, 1)
	go func() {
		defer cancel()
		ws.KeepAlive(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	if err := ws.WriteTyped(conn, ws.Message{Type: ws.TypeReady}); err != nil {
		return
	}

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.Message{Type: ws.TypePong}); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			at := ev.At
			msg := ws.Message{Type: ws.MessageType(ev.Type), At: &at}
			if err := ws.WriteTyped(conn, msg); err != nil {
				return
			}
			if msg.Terminal() {
				wsLog.Debug().Str("event", string(ev.Type)).Msg("session closed for page")
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(ev.Type)),
					time.Now().Add(ws.WriteWait))
				return
			}
		}
	}
}
