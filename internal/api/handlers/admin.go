package handlers

import (
	"net/http"

	"skab-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	badgeService service.BadgeService
}

func NewAdminHandler(badgeService service.BadgeService) *AdminHandler {
	return &AdminHandler{badgeService: badgeService}
}

type assignBadgesRequest struct {
	Badges []string `json:"badges" binding:"required"`
}

// AssignBadges godoc
// @Summary Replace a user's assignable badges
// @Description Admin only. The Admin badge itself cannot be granted or revoked here.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Target user ID"
// @Param request body assignBadgesRequest true "Badges to assign"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} ErrorResponse "Unknown badge"
// @Failure 403 {object} ErrorResponse "Caller is not an admin"
// @Router /admin/users/{id}/badges [put]
// @Security BearerAuth
func (h *AdminHandler) AssignBadges(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	targetID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req assignBadgesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "badges array is required")
		return
	}

	user, err := h.badgeService.AssignBadges(c.Request.Context(), userID, targetID, req.Badges)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
