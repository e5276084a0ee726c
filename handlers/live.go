package handlers

import (
	"net/http"
	"sync"

	"bakery-menu-api/live"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type liveEvent struct {
	Type     string         `json:"type"`
	Snapshot *live.Snapshot `json:"snapshot,omitempty"`
	Cart     gin.H          `json:"cart,omitempty"`
}

// LiveFeed streams the projected menu and the caller's cart over a
// WebSocket: a full snapshot on connect and after every menu change,
// plus a cart event after every cart write in this session. All
// listeners are torn down when the socket closes.
func LiveFeed(c *gin.Context) {
	store := sessionCart(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(ev liveEvent) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(ev); err != nil {
			zap.L().Debug("live: write failed", zap.Error(err))
		}
	}

	unsubFeed := Feed.Subscribe(func(snap live.Snapshot) {
		send(liveEvent{Type: "menu", Snapshot: &snap})
	})
	defer unsubFeed()

	unsubCart := store.Subscribe(func() {
		send(liveEvent{Type: "cartUpdated", Cart: gin.H{
			"items": store.Items(),
			"count": store.Count(),
		}})
	})
	defer unsubCart()

	// Block until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
