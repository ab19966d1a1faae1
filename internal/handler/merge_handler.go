package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/victorydiv/fojournapp-sub002/internal/merge"
	"github.com/victorydiv/fojournapp-sub002/internal/middleware"
	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"github.com/victorydiv/fojournapp-sub002/internal/profile"
	"github.com/victorydiv/fojournapp-sub002/internal/settings"
	"github.com/victorydiv/fojournapp-sub002/pkg/config"
	"github.com/victorydiv/fojournapp-sub002/pkg/database"
	"github.com/victorydiv/fojournapp-sub002/pkg/logger"
	"github.com/victorydiv/fojournapp-sub002/prometheus"
	"go.uber.org/zap"
)

var (
	validate = validator.New()

	invitations *merge.InvitationManager
	unmerger    *merge.UnmergeCoordinator
	appBaseURL  string
)

// InitMergeHandler wires the merge workflow with its settings provider and
// the public application base URL
func InitMergeHandler(cfg *config.Config, provider *settings.Provider) {
	invitations = merge.NewInvitationManager(provider)
	unmerger = merge.NewUnmergeCoordinator(provider)
	appBaseURL = cfg.App.BaseURL
}

// publicMergeURL builds the canonical public URL for a merge slug
func publicMergeURL(slug string) string {
	return appBaseURL + "/u/" + slug
}

// MergeStatus returns the caller's merge state, open invitations, and
// whether a new invitation may currently be sent
func MergeStatus(c echo.Context) error {
	log := logger.FromContext(c)
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	db := database.GetDB()

	sent, received, err := merge.PendingInvitationsFor(db, userID)
	if err != nil {
		log.Error("Failed to load pending invitations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load merge status"})
	}

	response := echo.Map{
		"is_merged":            false,
		"merge":                nil,
		"sent_invitations":     sent,
		"received_invitations": received,
		"can_send_invitation":  len(sent) == 0 && len(received) == 0,
	}

	m, err := merge.CurrentMerge(db, userID)
	switch {
	case err == nil:
		response["is_merged"] = true
		response["can_send_invitation"] = false
		response["merge"] = echo.Map{
			"slug":       m.Slug,
			"public_url": publicMergeURL(m.Slug),
			"merged_at":  m.MergedAt,
			"partner_id": m.PartnerID(userID),
			"settings":   m.Settings,
		}
	case errors.Is(err, merge.ErrNotMerged):
		// Not merged is the common case
	default:
		log.Error("Failed to load current merge", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load merge status"})
	}

	return c.JSON(http.StatusOK, response)
}

// SendInvitation creates a merge invitation to another account
func SendInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		InvitedUser string `json:"invited_user" validate:"required"`
		Message     string `json:"message" validate:"max=500"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse invitation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	invitation, err := invitations.Send(database.GetDB(), userID, req.InvitedUser, req.Message)
	if err != nil {
		return mergeErrorResponse(c, err)
	}

	prometheus.InvitationsSentCounter.Inc()
	log.Info("Merge invitation sent",
		zap.Uint("inviter_id", invitation.InviterID),
		zap.Uint("invited_id", invitation.InvitedID),
		zap.Uint("invitation_id", invitation.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"invitation_id": invitation.ID,
		"message":       invitation.Message,
		"expires_at":    invitation.ExpiresAt,
	})
}

// AcceptInvitation accepts a pending invitation and executes the merge
func AcceptInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	invitationID, err := invitationIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}

	m, err := invitations.Accept(database.GetDB(), invitationID, userID)
	if err != nil {
		return mergeErrorResponse(c, err)
	}

	prometheus.InvitationsAcceptedCounter.Inc()
	prometheus.MergesCreatedCounter.Inc()
	prometheus.ActiveMergesGauge.Inc()
	log.Info("Merge created",
		zap.Uint("merge_id", m.ID),
		zap.String("slug", m.Slug),
		zap.Uint("user1_id", m.User1ID),
		zap.Uint("user2_id", m.User2ID))

	return c.JSON(http.StatusOK, echo.Map{
		"merge_slug": m.Slug,
		"public_url": publicMergeURL(m.Slug),
	})
}

// DeclineInvitation declines a pending invitation
func DeclineInvitation(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	invitationID, err := invitationIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}

	if err := invitations.Decline(database.GetDB(), invitationID, userID); err != nil {
		return mergeErrorResponse(c, err)
	}

	prometheus.InvitationsDeclinedCounter.Inc()
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// CancelInvitation withdraws an invitation the caller sent
func CancelInvitation(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	invitationID, err := invitationIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}

	if err := invitations.Cancel(database.GetDB(), invitationID, userID); err != nil {
		return mergeErrorResponse(c, err)
	}

	prometheus.InvitationsCancelledCounter.Inc()
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Unmerge dissolves the caller's active merge
func Unmerge(c echo.Context) error {
	log := logger.FromContext(c)
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Reason string `json:"reason" validate:"max=500"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	duration, err := unmerger.Execute(database.GetDB(), userID, req.Reason)
	if err != nil {
		return mergeErrorResponse(c, err)
	}

	prometheus.MergesDissolvedCounter.Inc()
	prometheus.ActiveMergesGauge.Dec()
	log.Info("Merge dissolved",
		zap.Uint("initiator_id", userID),
		zap.Int("duration_days", duration))

	return c.JSON(http.StatusOK, echo.Map{"merge_duration": duration})
}

// MergeHistory returns the caller's merge/unmerge ledger
func MergeHistory(c echo.Context) error {
	log := logger.FromContext(c)
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("merge_history")(time.Now())
	entries, err := merge.HistoryForAccount(database.GetDB(), userID)
	if err != nil {
		log.Error("Failed to load merge history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load merge history"})
	}

	return c.JSON(http.StatusOK, echo.Map{"history": entries})
}

// GetDisplaySettings returns the caller's merge display settings
func GetDisplaySettings(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	display, err := profile.GetDisplaySettings(database.GetDB(), userID)
	if err != nil {
		return mergeErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, display)
}

// UpdateDisplaySettings replaces the caller's merge display settings
func UpdateDisplaySettings(c echo.Context) error {
	log := logger.FromContext(c)
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req model.ProfileDisplaySettings
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	display, err := profile.UpdateDisplaySettings(database.GetDB(), userID, req)
	if err != nil {
		return mergeErrorResponse(c, err)
	}

	log.Info("Merge display settings updated", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, display)
}

func invitationIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("invitationId"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid invitation id")
	}
	return uint(id), nil
}

// mergeErrorResponse maps the merge error kinds onto structured client
// errors. Unrecognized errors surface as 500 without leaking details.
func mergeErrorResponse(c echo.Context, err error) error {
	kind := merge.ErrorKind(err)
	prometheus.RecordMergeError(kind)

	var cooling *merge.CoolingPeriodError
	switch {
	case errors.As(err, &cooling):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          "cooling_period",
			"message":        err.Error(),
			"remaining_days": cooling.RemainingDays,
		})
	case errors.Is(err, merge.ErrNotFound),
		errors.Is(err, merge.ErrNotFoundOrProcessed):
		return c.JSON(http.StatusNotFound, echo.Map{"error": kind, "message": err.Error()})
	case errors.Is(err, merge.ErrExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": kind, "message": err.Error()})
	case errors.Is(err, merge.ErrAlreadyMerged),
		errors.Is(err, merge.ErrHasActiveInvitation),
		errors.Is(err, merge.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": kind, "message": err.Error()})
	case errors.Is(err, merge.ErrSelfInvitation),
		errors.Is(err, merge.ErrNotMerged),
		errors.Is(err, merge.ErrInvalidSetting):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": kind, "message": err.Error()})
	default:
		logger.FromContext(c).Error("Merge operation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
