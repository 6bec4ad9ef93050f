// README: Chat endpoints: turns, banners, booking links and conversation history.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/modules/conversation"
	"samanainn/internal/responders"
	"samanainn/internal/service"
)

type ChatHandler struct {
	chat          *service.ChatService
	conversations *conversation.Service
	booking       *responders.Booking
	timeout       time.Duration
	logger        *zap.Logger
}

// NewChatHandler bounds every turn by timeout; zero means no extra bound.
func NewChatHandler(chatSvc *service.ChatService, booking *responders.Booking, timeout time.Duration, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		chat:          chatSvc,
		conversations: chatSvc.Conversations(),
		booking:       booking,
		timeout:       timeout,
		logger:        logger.Named("chat_handler"),
	}
}

type messageReq struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	SessionID      string `json:"sessionId"`
	Context        *struct {
		ProcessingStage chat.Stage `json:"processingStage"`
	} `json:"context"`
}

// wireResponse adds the persisted context to the validated response.
type wireResponse struct {
	chat.Response
	Context chat.Context `json:"context"`
}

type messageResp struct {
	Success        bool         `json:"success"`
	Response       wireResponse `json:"response"`
	ConversationID string       `json:"conversationId"`
	Timestamp      time.Time    `json:"timestamp"`
}

// Message handles POST /api/chat/message.
func (h *ChatHandler) Message(c *gin.Context) {
	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, "message is required")
		return
	}

	cmd := service.MessageCommand{
		Message:        req.Message,
		ConversationID: strings.TrimSpace(req.ConversationID),
		SessionID:      strings.TrimSpace(req.SessionID),
	}
	if req.Context != nil && req.Context.ProcessingStage != "" {
		stage := req.Context.ProcessingStage
		cmd.Stage = &stage
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.chat.HandleMessage(ctx, cmd)
	if err != nil {
		h.logger.Error("chat turn failed", zap.String("conversationId", cmd.ConversationID), zap.Error(err))
		writeConversationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, messageResp{
		Success:        true,
		Response:       wireResponse{Response: res.Response, Context: res.Context},
		ConversationID: res.ConversationID,
		Timestamp:      time.Now().UTC(),
	})
}

// Banner handles GET /api/chat/banner?type=.
func (h *ChatHandler) Banner(c *gin.Context) {
	banner := service.BannerFor(chat.BannerType(c.Query("type")))
	writeJSON(c, http.StatusOK, gin.H{"success": true, "banner": banner, "timestamp": time.Now().UTC()})
}

type bookingURLReq struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
}

// BookingURL handles POST /api/chat/booking-url.
func (h *ChatHandler) BookingURL(c *gin.Context) {
	var req bookingURLReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Type) == "" {
		writeError(c, http.StatusBadRequest, "type is required")
		return
	}
	u := h.booking.URL(chat.BookingParams{
		Type:     req.Type,
		ID:       req.ID,
		Slug:     req.Slug,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Adults:   req.Adults,
		Children: req.Children,
	})
	writeJSON(c, http.StatusOK, gin.H{"success": true, "url": u, "type": req.Type, "timestamp": time.Now().UTC()})
}

// ListConversations handles GET /api/chat/conversations?sessionId=&limit=.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	list, err := h.conversations.ListBySession(c.Request.Context(), c.Query("sessionId"), queryInt(c, "limit", conversation.DefaultListLimit))
	if err != nil {
		writeConversationError(c, err)
		return
	}
	if list == nil {
		list = []conversation.Conversation{}
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "conversations": list, "count": len(list)})
}

// Messages handles GET /api/chat/conversations/:id/messages?limit=.
func (h *ChatHandler) Messages(c *gin.Context) {
	id := c.Param("id")
	conv, err := h.conversations.Get(c.Request.Context(), id)
	if err != nil {
		writeConversationError(c, err)
		return
	}
	msgs, err := h.conversations.History(c.Request.Context(), id, queryInt(c, "limit", conversation.DefaultHistoryLimit))
	if err != nil {
		writeConversationError(c, err)
		return
	}
	if msgs == nil {
		msgs = []conversation.Message{}
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "conversation": conv, "messages": msgs, "count": len(msgs)})
}

// Close handles POST /api/chat/conversations/:id/close.
func (h *ChatHandler) Close(c *gin.Context) {
	if err := h.conversations.Close(c.Request.Context(), c.Param("id")); err != nil {
		writeConversationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "message": "Conversación cerrada correctamente"})
}
