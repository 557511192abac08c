package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/omarionnn/mom-app/internal/models"
	"github.com/omarionnn/mom-app/internal/observability"
	"github.com/omarionnn/mom-app/internal/repositories"
	"github.com/omarionnn/mom-app/internal/telemetry"
	"github.com/omarionnn/mom-app/internal/ws"
)

// GroupHandler manages group discovery, membership, and group messages.
type GroupHandler struct {
	groupRepo   repositories.GroupRepository
	messageRepo repositories.GroupMessageRepository
	profileRepo repositories.ProfileRepository
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groupRepo repositories.GroupRepository, messageRepo repositories.GroupMessageRepository, profileRepo repositories.ProfileRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{
		groupRepo:   groupRepo,
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		hub:         hub,
		audit:       audit,
	}
}

// ListGroups returns all groups annotated with membership and member
// count. An optional city filter keeps groups with no city restriction.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID := c.GetInt("userID")

	var city *string
	if raw := c.Query("city"); raw != "" {
		city = &raw
	}

	groups, err := h.groupRepo.ListWithMembership(c.Request.Context(), userID, city)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// JoinGroup inserts a membership row. Joining twice is an idempotent
// no-op, not an error.
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	userID := c.GetInt("userID")

	if _, err := h.groupRepo.GetGroup(c.Request.Context(), groupID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGroupNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "group not found"})
		return
	}

	joined, err := h.groupRepo.Join(c.Request.Context(), groupID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join group"})
		return
	}

	if joined {
		h.publishDomainEvent(c, "groups.member_joined", gin.H{
			"group_id": groupID,
			"user_id":  userID,
		})
		h.emitAudit(c, "INFO", "Joined group")
	}
	c.JSON(http.StatusOK, gin.H{"joined": joined})
}

// LeaveGroup removes the membership row; leaving a group the caller never
// joined is not an error.
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	userID := c.GetInt("userID")

	if err := h.groupRepo.Leave(c.Request.Context(), groupID, userID); err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave group"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetGroupMessages returns non-deleted messages oldest first, each with
// the sender's display name. Membership is required.
func (h *GroupHandler) GetGroupMessages(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !member {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return
	}

	msgs, err := h.messageRepo.ListForGroup(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := make([]int, 0, len(msgs))
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	names, err := h.profileRepo.DisplayNames(c.Request.Context(), senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
		return
	}

	type messageResponse struct {
		models.GroupMessage
		SenderDisplayName string `json:"sender_display_name,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{GroupMessage: m, SenderDisplayName: names[m.SenderID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// PostGroupMessage persists and broadcasts a group message. Membership is
// required; content bounds match direct messages.
func (h *GroupHandler) PostGroupMessage(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !member {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), groupID, userID, req.Content)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	names, err := h.profileRepo.DisplayNames(c.Request.Context(), []int{userID})
	if err != nil {
		names = map[int]string{}
	}

	observability.IncMessageSent("group")
	h.hub.BroadcastGroupMessage(groupID, msg)
	h.publishDomainEvent(c, "groups.message_posted", gin.H{
		"group_id":   groupID,
		"message_id": msg.ID,
		"sender_id":  userID,
	})
	h.emitAudit(c, "INFO", "Group message sent")

	c.JSON(http.StatusCreated, gin.H{
		"message":             msg,
		"sender_display_name": names[userID],
	})
}

// DeleteGroupMessage soft-deletes a message when invoked by its sender.
// The row is retained with the deleter recorded; read paths skip it.
func (h *GroupHandler) DeleteGroupMessage(c *gin.Context) {
	groupID, messageID, ok := parseGroupIDs(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !member {
		h.emitAudit(c, "ERROR", "not allowed to delete")
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return
	}

	msg, err := h.messageRepo.Get(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.GroupID != groupID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to group"})
		return
	}
	if msg.SenderID != userID {
		h.emitAudit(c, "ERROR", "not allowed to delete")
		c.JSON(http.StatusForbidden, gin.H{"error": "only sender may delete"})
		return
	}

	if err := h.messageRepo.SoftDelete(c.Request.Context(), messageID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete"})
		return
	}

	h.hub.BroadcastGroupDeletion(groupID, messageID)
	h.emitAudit(c, "INFO", "Group message deleted")
	c.Status(http.StatusNoContent)
}

func (h *GroupHandler) publishDomainEvent(c *gin.Context, routingKey string, payload gin.H) {
	headers := observability.BuildHeaders(requestIDFromContext(c), "")
	_ = observability.PublishEvent(c.Request.Context(), routingKey,
		observability.NewEventEnvelope("domain_events", routingKey, payload), headers)
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func parseGroupIDs(c *gin.Context) (int, int, bool) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return 0, 0, false
	}
	msgID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return 0, 0, false
	}
	return groupID, msgID, true
}
