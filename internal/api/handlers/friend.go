package handlers

import (
	"net/http"
	"strconv"

	"skab-service/internal/service"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	relationshipService service.RelationshipService
}

func NewFriendHandler(relationshipService service.RelationshipService) *FriendHandler {
	return &FriendHandler{relationshipService: relationshipService}
}

func pathUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid user ID")
		return 0, false
	}
	return uint(id), true
}

// SendRequest godoc
// @Summary Send a friend request
// @Description A pending counter-request from the target is accepted instead of duplicated.
// @Tags friends
// @Produce json
// @Param id path int true "Target user ID"
// @Success 200 {object} gin.H "Outcome: pending or accepted"
// @Failure 403 {object} ErrorResponse "Blocked in either direction"
// @Failure 409 {object} ErrorResponse "Already friends or already requested"
// @Router /friends/requests/{id} [post]
// @Security BearerAuth
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	targetID, ok := pathUserID(c)
	if !ok {
		return
	}

	outcome, err := h.relationshipService.SendRequest(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": string(outcome)})
}

// AcceptRequest godoc
// @Summary Accept a pending friend request
// @Tags friends
// @Param id path int true "Requesting user ID"
// @Success 204 "Request accepted"
// @Failure 409 {object} ErrorResponse "No pending request"
// @Router /friends/requests/{id}/accept [post]
// @Security BearerAuth
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	fromID, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.relationshipService.AcceptRequest(c.Request.Context(), userID, fromID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeclineRequest godoc
// @Summary Decline a pending friend request
// @Tags friends
// @Param id path int true "Requesting user ID"
// @Success 204 "Request declined"
// @Failure 409 {object} ErrorResponse "No pending request"
// @Router /friends/requests/{id}/decline [post]
// @Security BearerAuth
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	fromID, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.relationshipService.DeclineRequest(c.Request.Context(), userID, fromID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelRequest godoc
// @Summary Cancel an outgoing friend request
// @Tags friends
// @Param id path int true "Target user ID"
// @Success 204 "Request cancelled"
// @Failure 409 {object} ErrorResponse "No pending request"
// @Router /friends/requests/{id} [delete]
// @Security BearerAuth
func (h *FriendHandler) CancelRequest(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	toID, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.relationshipService.CancelRequest(c.Request.Context(), userID, toID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveFriend godoc
// @Summary Remove a friend
// @Description Removes both edges of the friendship.
// @Tags friends
// @Param id path int true "Friend user ID"
// @Success 204 "Friend removed"
// @Failure 409 {object} ErrorResponse "Not friends"
// @Router /friends/{id} [delete]
// @Security BearerAuth
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	friendID, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.relationshipService.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFriends godoc
// @Summary List the caller's friends
// @Tags friends
// @Produce json
// @Success 200 {array} models.Friendship
// @Router /friends [get]
// @Security BearerAuth
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	friends, err := h.relationshipService.Friends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

// ListIncomingRequests godoc
// @Summary List pending friend requests addressed to the caller
// @Tags friends
// @Produce json
// @Success 200 {array} models.FriendRequest
// @Router /friends/requests/incoming [get]
// @Security BearerAuth
func (h *FriendHandler) ListIncomingRequests(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	reqs, err := h.relationshipService.IncomingRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// ListOutgoingRequests godoc
// @Summary List pending friend requests sent by the caller
// @Tags friends
// @Produce json
// @Success 200 {array} models.FriendRequest
// @Router /friends/requests/outgoing [get]
// @Security BearerAuth
func (h *FriendHandler) ListOutgoingRequests(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	reqs, err := h.relationshipService.OutgoingRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// BlockUser godoc
// @Summary Block a user
// @Description Removes any friendship and pending requests between the pair.
// @Tags blocks
// @Param id path int true "Target user ID"
// @Success 204 "User blocked"
// @Failure 409 {object} ErrorResponse "Already blocked"
// @Router /blocks/{id} [post]
// @Security BearerAuth
func (h *FriendHandler) BlockUser(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	targetID, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.relationshipService.BlockUser(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnblockUser godoc
// @Summary Unblock a user
// @Description Does not restore a previously removed friendship.
// @Tags blocks
// @Param id path int true "Target user ID"
// @Success 204 "User unblocked"
// @Failure 409 {object} ErrorResponse "Not blocked"
// @Router /blocks/{id} [delete]
// @Security BearerAuth
func (h *FriendHandler) UnblockUser(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	targetID, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.relationshipService.UnblockUser(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBlocks godoc
// @Summary List users blocked by the caller
// @Tags blocks
// @Produce json
// @Success 200 {array} models.Block
// @Router /blocks [get]
// @Security BearerAuth
func (h *FriendHandler) ListBlocks(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	blocks, err := h.relationshipService.BlockedUsers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}
