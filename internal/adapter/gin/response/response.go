// Package response holds the JSON envelope every HTTP endpoint answers with.
package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// OK writes a successful envelope carrying data.
func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// List writes a successful envelope with data and its count.
func List(c *gin.Context, status int, data any, count int) {
	c.JSON(status, Envelope{Success: true, Data: data, Count: &count})
}

// Fail writes a failed envelope. detail is omitted when empty.
func Fail(c *gin.Context, status int, message, detail string) {
	c.JSON(status, Envelope{Success: false, Message: message, Error: detail})
}

// Abort is Fail followed by aborting the handler chain.
func Abort(c *gin.Context, status int, message, detail string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message, Error: detail})
}
