package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omarionnn/mom-app/internal/cache"
	"github.com/omarionnn/mom-app/internal/models"
	"github.com/omarionnn/mom-app/internal/observability"
	"github.com/omarionnn/mom-app/internal/repositories"
	"github.com/omarionnn/mom-app/internal/telemetry"
	"github.com/omarionnn/mom-app/internal/ws"
)

// ConversationHandler serves conversation summaries, the unread badge,
// direct messages, and read receipts.
type ConversationHandler struct {
	matchRepo   repositories.MatchRepository
	messageRepo repositories.MessageRepository
	profileRepo repositories.ProfileRepository
	unreadCache cache.UnreadCache
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewConversationHandler constructs a ConversationHandler.
func NewConversationHandler(matchRepo repositories.MatchRepository, messageRepo repositories.MessageRepository, profileRepo repositories.ProfileRepository, unreadCache cache.UnreadCache, hub *ws.Hub, audit *telemetry.AuditEmitter) *ConversationHandler {
	return &ConversationHandler{
		matchRepo:   matchRepo,
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		unreadCache: unreadCache,
		hub:         hub,
		audit:       audit,
	}
}

// ListConversations returns one summary per match: the counterpart, the
// latest message, and the unread count. Matches with no messages are
// included so a fresh match still shows up. Ordered by last-message time
// descending; matches without messages sort last, ties broken by match id.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := c.GetInt("userID")

	matches, err := h.matchRepo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}

	summaries := make([]models.ConversationSummary, 0, len(matches))
	otherIDs := make([]int, 0, len(matches))
	for _, match := range matches {
		otherID, ok := match.OtherUser(userID)
		if !ok {
			continue
		}
		otherIDs = append(otherIDs, otherID)

		last, err := h.messageRepo.LatestBetween(c.Request.Context(), userID, otherID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			return
		}
		unread, err := h.messageRepo.UnreadCount(c.Request.Context(), otherID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread"})
			return
		}

		summaries = append(summaries, models.ConversationSummary{
			MatchID:     match.ID,
			OtherUserID: otherID,
			LastMessage: last,
			UnreadCount: unread,
			MatchedAt:   match.CreatedAt,
		})
	}

	names, err := h.profileRepo.DisplayNames(c.Request.Context(), otherIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}
	for i := range summaries {
		summaries[i].OtherDisplayName = names[summaries[i].OtherUserID]
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		ti, tj := lastMessageTime(summaries[i]), lastMessageTime(summaries[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return summaries[i].MatchID > summaries[j].MatchID
	})

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// lastMessageTime treats a missing last message as the zero time so
// empty conversations sort after all dated ones, deterministically.
func lastMessageTime(s models.ConversationSummary) time.Time {
	if s.LastMessage == nil {
		return time.Time{}
	}
	return s.LastMessage.CreatedAt
}

// GetUnreadCount returns the total unread badge for the caller. The count
// equals the sum of per-conversation unread counts; Redis fronts the
// aggregate query and is invalidated on every send and thread read.
func (h *ConversationHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetInt("userID")

	if h.unreadCache != nil {
		if count, ok, err := h.unreadCache.Get(c.Request.Context(), userID); err == nil && ok {
			c.JSON(http.StatusOK, gin.H{"unread_count": count})
			return
		}
	}

	count, err := h.messageRepo.TotalUnread(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread"})
		return
	}
	if h.unreadCache != nil {
		_ = h.unreadCache.Set(c.Request.Context(), userID, count)
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// SendMessage stores a direct message. Sending requires an existing match
// between the two users; content must be 1 to 2000 characters.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		RecipientID int    `json:"recipient_id" binding:"required"`
		Content     string `json:"content" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RecipientID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message yourself"})
		return
	}

	match, err := h.matchRepo.GetByUsers(c.Request.Context(), userID, req.RecipientID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			h.emitAudit(c, "ERROR", "not allowed")
			c.JSON(http.StatusForbidden, gin.H{"error": "users are not matched"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify match"})
		return
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), userID, req.RecipientID, req.Content)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	if h.unreadCache != nil {
		_ = h.unreadCache.Invalidate(c.Request.Context(), req.RecipientID)
	}
	observability.IncMessageSent("direct")
	h.hub.BroadcastConversationMessage(match.ID, msg)
	h.hub.NotifyUser(req.RecipientID, models.UserEvent{Type: "unread_changed", MatchID: match.ID, FromUserID: userID})
	h.emitAudit(c, "INFO", "Message sent")

	c.JSON(http.StatusCreated, msg)
}

// GetThreadMessages returns the full thread with another matched user,
// oldest first.
func (h *ConversationHandler) GetThreadMessages(c *gin.Context) {
	userID := c.GetInt("userID")
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if _, err := h.matchRepo.GetByUsers(c.Request.Context(), userID, otherID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "users are not matched"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify match"})
		return
	}

	msgs, err := h.messageRepo.ListBetween(c.Request.Context(), userID, otherID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkThreadRead stamps every unread message from the other user to the
// caller. Re-invoking after everything is read is a no-op; read
// timestamps are never reverted.
func (h *ConversationHandler) MarkThreadRead(c *gin.Context) {
	userID := c.GetInt("userID")
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	updated, err := h.messageRepo.MarkThreadRead(c.Request.Context(), otherID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark read"})
		return
	}

	if updated > 0 {
		if h.unreadCache != nil {
			_ = h.unreadCache.Invalidate(c.Request.Context(), userID)
		}
		if match, err := h.matchRepo.GetByUsers(c.Request.Context(), userID, otherID); err == nil {
			h.hub.BroadcastThreadRead(match.ID, userID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"marked_read": updated})
}

func (h *ConversationHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
