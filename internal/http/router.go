// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"samanainn/internal/http/handlers"
	"samanainn/internal/http/middleware"
)

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger), middleware.Logging(deps.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api/chat")
	if deps.RatePerMinute > 0 {
		api.Use(middleware.RateLimit(deps.RatePerMinute, deps.RateBurst, deps.Logger))
	}

	chatHandler := handlers.NewChatHandler(deps.Chat, deps.Booking, deps.RequestTimeout, deps.Logger)
	api.POST("/message", chatHandler.Message)
	api.GET("/banner", chatHandler.Banner)
	api.POST("/booking-url", chatHandler.BookingURL)
	api.GET("/conversations", chatHandler.ListConversations)
	api.GET("/conversations/:id/messages", chatHandler.Messages)
	api.POST("/conversations/:id/close", chatHandler.Close)

	return r
}
