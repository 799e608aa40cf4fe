package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The feed only carries ids and operation names.
		return true
	},
}

// CatalogHandler upgrades the request and subscribes it to catalog events.
func CatalogHandler(hub *CatalogHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newCatalogClient(hub, conn)
		hub.register <- client

		go client.writePump()
		client.readPump()
	}
}
