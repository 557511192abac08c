package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/omarionnn/mom-app/internal/cache"
	"github.com/omarionnn/mom-app/internal/models"
	"github.com/omarionnn/mom-app/internal/observability"
	"github.com/omarionnn/mom-app/internal/repositories"
	"github.com/omarionnn/mom-app/internal/telemetry"
	"github.com/omarionnn/mom-app/internal/ws"
)

// DefaultCandidateLimit caps candidate pages when the client sends none.
const DefaultCandidateLimit = 20

// MatchHandler serves candidate discovery, swipe recording, and unmatch.
type MatchHandler struct {
	profileRepo repositories.ProfileRepository
	swipeRepo   repositories.SwipeRepository
	matchRepo   repositories.MatchRepository
	unreadCache cache.UnreadCache
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewMatchHandler constructs a MatchHandler.
func NewMatchHandler(profileRepo repositories.ProfileRepository, swipeRepo repositories.SwipeRepository, matchRepo repositories.MatchRepository, unreadCache cache.UnreadCache, hub *ws.Hub, audit *telemetry.AuditEmitter) *MatchHandler {
	return &MatchHandler{
		profileRepo: profileRepo,
		swipeRepo:   swipeRepo,
		matchRepo:   matchRepo,
		unreadCache: unreadCache,
		hub:         hub,
		audit:       audit,
	}
}

// GetCandidates returns profiles the caller has not swiped on yet.
// Same-city profiles come first; when the caller's city yields nothing
// the search widens to every city so sparse markets are not dead ends.
func (h *MatchHandler) GetCandidates(c *gin.Context) {
	userID := c.GetInt("userID")

	limit := DefaultCandidateLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	me, err := h.profileRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if err == repositories.ErrProfileNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "failed to load own profile"})
		return
	}

	profiles, err := h.profileRepo.FindCandidates(c.Request.Context(), userID, me.City, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load candidates"})
		return
	}
	if len(profiles) == 0 && me.City != nil {
		profiles, err = h.profileRepo.FindCandidates(c.Request.Context(), userID, nil, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load candidates"})
			return
		}
	}

	candidates := make([]models.CandidateProfile, 0, len(profiles))
	for _, p := range profiles {
		candidates = append(candidates, models.CandidateProfile{
			Profile:         p,
			SharedInterests: models.SharedInterests(me.Interests, p.Interests),
		})
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// RecordSwipe persists a one-way decision and, for right-swipes, checks
// for a reciprocal right-swipe and materializes the match. A duplicate
// swipe for the same pair is an idempotent no-op and never re-triggers
// match detection.
func (h *MatchHandler) RecordSwipe(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		TargetUserID int              `json:"target_user_id" binding:"required"`
		Direction    models.Direction `json:"direction" binding:"required,direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TargetUserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot swipe on yourself"})
		return
	}

	swipe := &models.Swipe{
		SwiperID:  userID,
		SwipedID:  req.TargetUserID,
		Direction: req.Direction,
	}
	inserted, err := h.swipeRepo.Create(c.Request.Context(), swipe)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record swipe"})
		return
	}
	if !inserted {
		c.JSON(http.StatusOK, gin.H{"match": nil, "duplicate": true})
		return
	}

	observability.IncSwipeRecorded(string(req.Direction))
	h.publishDomainEvent(c, "matching.swipe_recorded", gin.H{
		"swiper_id": userID,
		"swiped_id": req.TargetUserID,
		"direction": req.Direction,
	})

	if req.Direction == models.DirectionLeft {
		c.JSON(http.StatusOK, gin.H{"match": nil})
		return
	}

	reciprocal, err := h.swipeRepo.HasRightSwipe(c.Request.Context(), req.TargetUserID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check reciprocal swipe"})
		return
	}
	if !reciprocal {
		c.JSON(http.StatusOK, gin.H{"match": nil})
		return
	}

	match, created, err := h.matchRepo.CreateOrGet(c.Request.Context(), userID, req.TargetUserID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create match"})
		return
	}
	if created {
		observability.IncMatchCreated()
		h.publishDomainEvent(c, "matching.match_created", gin.H{
			"match_id": match.ID,
			"user1_id": match.User1ID,
			"user2_id": match.User2ID,
		})
		h.hub.NotifyUser(match.User1ID, models.UserEvent{Type: "match_created", MatchID: match.ID, FromUserID: match.User2ID})
		h.hub.NotifyUser(match.User2ID, models.UserEvent{Type: "match_created", MatchID: match.ID, FromUserID: match.User1ID})
		h.emitAudit(c, "INFO", "Match created")
	}

	c.JSON(http.StatusOK, gin.H{"match": match})
}

// Unmatch hard-deletes the match with another user together with the
// message history between the two.
func (h *MatchHandler) Unmatch(c *gin.Context) {
	userID := c.GetInt("userID")
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if _, err := h.matchRepo.GetByUsers(c.Request.Context(), userID, otherID); err != nil {
		status := http.StatusInternalServerError
		if err == repositories.ErrMatchNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "match not found"})
		return
	}

	if err := h.matchRepo.DeleteWithMessages(c.Request.Context(), userID, otherID); err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unmatch"})
		return
	}

	// Deleting the thread removes unread messages on both sides; drop
	// any cached badge totals so they are recomputed.
	if h.unreadCache != nil {
		_ = h.unreadCache.Invalidate(c.Request.Context(), userID)
		_ = h.unreadCache.Invalidate(c.Request.Context(), otherID)
	}

	h.emitAudit(c, "INFO", "Unmatched")
	c.Status(http.StatusNoContent)
}

func (h *MatchHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func (h *MatchHandler) publishDomainEvent(c *gin.Context, routingKey string, payload gin.H) {
	headers := observability.BuildHeaders(requestIDFromContext(c), "")
	_ = observability.PublishEvent(c.Request.Context(), routingKey,
		observability.NewEventEnvelope("domain_events", routingKey, payload), headers)
}
