package handlers

import (
	"log"
	"net/http"

	"practice-service/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto its HTTP status. Wrapped causes
// stay in the server log; clients only see the taxonomy message.
func respondError(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		if e.Err != nil {
			log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, e)
		}
		c.JSON(e.Status, gin.H{
			"success": false,
			"code":    e.Code,
			"error":   e.Message,
		})
		return
	}
	log.Printf("%s %s: unexpected error: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "Internal server error",
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
