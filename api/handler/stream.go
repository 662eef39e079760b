package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/use-agent/bannerscout/models"
	"github.com/use-agent/bannerscout/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeWait = 10 * time.Second

// StreamScrape returns a handler for GET /api/scrape/:id/stream. It
// upgrades to a websocket, pushes each progress entry as it appears and
// finishes with a done event holding the full session. Sessions are
// re-read every interval.
func StreamScrape(sr SessionReader, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := sr.Get(id); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "session not found", err))
				return
			}
			respondError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Debug("websocket upgrade failed", "session_id", id, "error", err)
			return
		}
		defer conn.Close()

		// The client never sends anything; reading only notices it leaving.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		sent := 0
		for {
			snap, err := sr.Get(id)
			if err != nil {
				// Evicted while streaming.
				closeStream(conn, websocket.CloseGoingAway, "session expired")
				return
			}

			for ; sent < len(snap.Progress); sent++ {
				entry := snap.Progress[sent]
				if err := writeEvent(conn, models.StreamEvent{Type: models.StreamEventProgress, Progress: &entry}); err != nil {
					return
				}
			}

			if snap.Status.Terminal() {
				resp := snap.Response()
				if err := writeEvent(conn, models.StreamEvent{Type: models.StreamEventDone, Session: &resp}); err != nil {
					return
				}
				closeStream(conn, websocket.CloseNormalClosure, string(snap.Status))
				return
			}

			select {
			case <-gone:
				return
			case <-c.Request.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev models.StreamEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func closeStream(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
