package handlers

import (
	"net/http"

	"skab-service/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// respondError maps a service error onto the wire. Transport errors hide
// their cause from the client; everything else carries its message through.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "An unexpected error occurred."
	}
	c.JSON(status, ErrorResponse{Code: status, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: http.StatusBadRequest, Message: message})
}
