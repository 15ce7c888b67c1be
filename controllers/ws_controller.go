package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Simhateja17/whatsapp/ws"
)

// WSController exposes the hub's websocket endpoint.
func WSController(hub *ws.Hub) gin.HandlerFunc {
	return ws.Serve(hub)
}
