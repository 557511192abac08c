package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omarionnn/mom-app/internal/models"
	"github.com/omarionnn/mom-app/internal/repositories"
	"github.com/omarionnn/mom-app/internal/telemetry"
)

// ProfileHandler exposes the caller's own profile.
type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
	audit       *telemetry.AuditEmitter
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profileRepo repositories.ProfileRepository, audit *telemetry.AuditEmitter) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo, audit: audit}
}

type profileRequest struct {
	DisplayName        string   `json:"display_name" binding:"required,max=100"`
	Bio                *string  `json:"bio" binding:"omitempty,max=500"`
	City               *string  `json:"city" binding:"omitempty,max=100"`
	State              *string  `json:"state" binding:"omitempty,max=100"`
	Latitude           *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude          *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Visibility         string   `json:"visibility" binding:"required,visibility"`
	KidAges            []int    `json:"kid_ages" binding:"dive,gte=0,lte=18"`
	Interests          []string `json:"interests" binding:"dive,required,max=50"`
	OnboardingComplete bool     `json:"onboarding_complete"`
}

// GetProfile returns the caller's profile, 404 when onboarding never
// completed.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt("userID")

	profile, err := h.profileRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpsertProfile creates or wholesale-replaces the caller's profile,
// including kids and interests.
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID := c.GetInt("userID")

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := models.Profile{
		UserID:             userID,
		DisplayName:        req.DisplayName,
		Bio:                req.Bio,
		City:               req.City,
		State:              req.State,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Visibility:         models.Visibility(req.Visibility),
		KidAges:            req.KidAges,
		Interests:          req.Interests,
		OnboardingComplete: req.OnboardingComplete,
	}

	if err := h.profileRepo.Upsert(c.Request.Context(), &profile); err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}

	h.emitAudit(c, "INFO", "Profile saved")
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *ProfileHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
