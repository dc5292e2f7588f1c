package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hearthd/hearthd/ws"
)

// CloseCodeUnauthorized is the application close code sent when the
// upgrade carried a missing or invalid token. Browsers cannot set
// headers on websocket upgrades, so the token rides in the query string
// and the rejection rides in a close frame after the handshake.
const CloseCodeUnauthorized = 4001

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-host deployment; the token check below is the access boundary.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket handles GET /ws. The handshake always completes; an
// unauthorized peer is then told why with close code 4001 rather than a
// bare TCP reset, so browser clients can distinguish "bad token" from
// "server down".
func (a *API) WebSocket(w http.ResponseWriter, r *http.Request) {
	if a.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "push channel not available")
		return
	}

	token := r.URL.Query().Get("token")
	claims := a.tokens.Verify(token)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	if claims == nil {
		a.audit.logFailure(AuditWSRejected, r, "missing or invalid token")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseCodeUnauthorized, "Unauthorized"))
		_ = conn.Close()
		return
	}

	a.audit.log(AuditWSConnected, r, slog.String("username", claims.Username))
	ws.NewClient(a.hub, conn, claims.Username).Start()
}
