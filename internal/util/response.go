package util

import "github.com/gin-gonic/gin"

// Error writes the conventional error body {"error": msg}.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"error": msg})
}

// ErrorDetails writes {"error": msg, "details": details} for errors
// carrying field-level or structured detail.
func ErrorDetails(c *gin.Context, httpStatus int, msg string, details interface{}) {
	c.JSON(httpStatus, gin.H{"error": msg, "details": details})
}
