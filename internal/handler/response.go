// Package handler implements the HTTP JSON surface over the data-access
// services. Handlers only bind requests, call a service and shape the
// response; every business rule lives below this layer.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ok writes the unified success envelope.
func ok(c *gin.Context, data gin.H) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// fail writes the unified error envelope. The service layer already logged
// the cause; the message here is safe for clients.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
