package response

import (
	"github.com/gin-gonic/gin"

	"resume-hub/pkg/apperror"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error     apperror.Kind `json:"error"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id,omitempty"`
}

// MessageBody acknowledges a mutation that returns no resource.
type MessageBody struct {
	Message string `json:"message"`
}

// IDBody carries the id of a created resource.
type IDBody struct {
	ID string `json:"id"`
}

// RequestIDKey is where the request id middleware stores the id on the gin context.
const RequestIDKey = "RequestID"

// JSON sends data as the whole response body.
func JSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

func Message(c *gin.Context, code int, message string) {
	c.JSON(code, MessageBody{Message: message})
}

// Error sends an error response
func Error(c *gin.Context, code int, kind apperror.Kind, message string) {
	c.JSON(code, ErrorBody{
		Error:     kind,
		Message:   message,
		RequestID: RequestID(c),
	})
}

func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
