// README: API gateway; builds the gin engine and delegates to the chat services.
package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"samanainn/internal/responders"
	"samanainn/internal/service"
)

type ServerDeps struct {
	Chat           *service.ChatService
	Booking        *responders.Booking
	RequestTimeout time.Duration
	RatePerMinute  int
	RateBurst      int
	Logger         *zap.Logger
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Booking == nil {
		deps.Booking = responders.NewBooking("", deps.Logger)
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	return NewRouter(s.deps)
}
