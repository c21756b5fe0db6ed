package handlers

import (
	"net/http"
	"strconv"

	"skab-service/internal/api/middleware"
	"skab-service/internal/database"
	"skab-service/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	identityService service.IdentityService
	minioClient     *database.MinIOClient
}

func NewUserHandler(identityService service.IdentityService, minioClient *database.MinIOClient) *UserHandler {
	return &UserHandler{identityService: identityService, minioClient: minioClient}
}

func principal(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "Unauthorized"})
	}
	return userID, ok
}

// GetMe godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /users/me [get]
// @Security BearerAuth
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	profile, err := h.identityService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetUser godoc
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /users/{id} [get]
// @Security BearerAuth
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid user ID")
		return
	}
	profile, err := h.identityService.GetProfile(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileRequest true "Partial profile update"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} ErrorResponse "Invalid input data"
// @Router /users/me [put]
// @Security BearerAuth
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid input data")
		return
	}
	profile, err := h.identityService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UploadAvatar godoc
// @Summary Upload a new avatar image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} ErrorResponse "Missing or invalid file"
// @Router /users/me/avatar [post]
// @Security BearerAuth
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		respondBadRequest(c, "avatar file is required")
		return
	}

	url, err := h.minioClient.UploadAvatar(c.Request.Context(), userID, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: http.StatusInternalServerError, Message: "Failed to upload avatar"})
		return
	}

	profile, err := h.identityService.UpdateProfile(c.Request.Context(), userID, &service.UpdateProfileRequest{Avatar: &url})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// DeleteMe godoc
// @Summary Delete the authenticated user's account
// @Description Requires a fresh password proof. Messages and notifications are retained.
// @Tags users
// @Accept json
// @Success 204 "Account deleted"
// @Failure 403 {object} ErrorResponse "Reauthentication failed"
// @Router /users/me [delete]
// @Security BearerAuth
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "password is required")
		return
	}
	if err := h.identityService.DeleteProfile(c.Request.Context(), userID, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchUsers godoc
// @Summary Search users by display name
// @Description Excludes the caller and anyone the caller has blocked.
// @Tags users
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} models.UserResponse
// @Failure 400 {object} ErrorResponse "Empty query"
// @Router /users/search [get]
// @Security BearerAuth
func (h *UserHandler) SearchUsers(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	results, err := h.identityService.SearchUsers(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
