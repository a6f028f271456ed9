package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/timetrack/internal/feed"
	"github.com/monocle-dev/timetrack/internal/utils"
)

// Activity receives an event for every contract and timelog change.
var Activity = feed.NewHub()

const (
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowedOrigins, origin)
	},
}

// ActivityFeed upgrades to a websocket that streams change events for the
// rows the caller can see. Clients only need to answer pings.
func ActivityFeed(c *gin.Context) {
	user, err := utils.GetCurrentUser(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn("failed to set initial read deadline", slog.Any("error", err))
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	Activity.Subscribe(user.ID, user.IsStaff, conn)
	defer func() {
		Activity.Unsubscribe(conn)
		slog.Debug("activity feed closed", slog.Uint64("user_id", uint64(user.ID)))
	}()

	err = Activity.Send(conn, gin.H{
		"type":    "connected",
		"message": "Activity feed established",
		"user_id": user.ID,
	})
	if err != nil {
		slog.Warn("failed to send welcome message", slog.Any("error", err))
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := Activity.Ping(conn); err != nil {
					slog.Debug("activity ping failed", slog.Any("error", err))
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("activity feed read error", slog.Any("error", err))
			}
			return
		}
	}
}
