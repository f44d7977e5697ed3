package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the conversation API on api
func RegisterRoutes(api *gin.RouterGroup, sessions *SessionHandler, listings *ListingHandler, socket *SocketHandler) {
	// Session endpoints
	api.POST("/sessions", sessions.Create)
	api.GET("/sessions/:id", sessions.Get)
	api.DELETE("/sessions/:id", sessions.Reset)
	api.POST("/sessions/:id/messages", sessions.Submit)
	api.POST("/sessions/:id/messages/stream", sessions.SubmitStream) // Streaming turn
	api.GET("/sessions/:id/ws", socket.Serve)
	api.POST("/sessions/:id/trip", sessions.AddToTrip)

	// Navigation
	api.GET("/listings/:id", listings.Get)
}
