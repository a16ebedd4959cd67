package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success reports a processed signal.
func Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, statusResponse{Status: "success", Message: message})
}

// Ignored reports a signal the gating filter dropped on purpose.
func Ignored(c *gin.Context, message string) {
	c.JSON(http.StatusOK, statusResponse{Status: "ignored", Message: message})
}

// Detail is the error shape: a status code plus a human-readable detail
// string.
func Detail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}
