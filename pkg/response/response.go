package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint writes. Clients key off
// Success and read the payload from Data; Error carries field-level
// detail for validation failures.
type APIResponse struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data any, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, APIResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
	})
}

func Error(c *gin.Context, status int, message string, detail any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, APIResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     detail,
	})
}
