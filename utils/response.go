package utils

import "github.com/gin-gonic/gin"

// RespondError writes the {error} shape every failure response uses.
// Validation messages are surfaced to the user verbatim, so keep them short.
func RespondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
