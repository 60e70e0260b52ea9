package responses

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeonwoo-k/teamup/pkg/apperr"
	"github.com/yeonwoo-k/teamup/pkg/validator"
)

// Envelope is the JSON body every endpoint returns, success or failure.
type Envelope struct {
	Status  int         `json:"status"`          // HTTP status code, repeated in the body
	Message string      `json:"message"`         // Human-readable message
	Data    interface{} `json:"data"`            // Payload, null on errors
	Error   string      `json:"error,omitempty"` // Machine code, only on errors
}

// SendSuccess sends a standardized success response.
func SendSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	if message == "" {
		message = "Operation completed successfully"
	}
	c.JSON(statusCode, Envelope{
		Status:  statusCode,
		Message: message,
		Data:    data,
	})
}

// SendError sends a standardized error response with a machine code.
func SendError(c *gin.Context, statusCode int, message, code string) {
	c.AbortWithStatusJSON(statusCode, Envelope{
		Status:  statusCode,
		Message: message,
		Data:    nil,
		Error:   code,
	})
}

// HandleError maps an error to the envelope. Operational errors keep their
// status and message; anything else collapses to a generic 500.
func HandleError(c *gin.Context, err error) {
	if ae, ok := apperr.As(err); ok {
		SendError(c, ae.Status(), ae.Message, ae.Code)
		return
	}
	log.Printf("unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	SendError(c, http.StatusInternalServerError, "An unexpected error occurred on the server", "server_error")
}

// BadRequest sends a 400 validation error response.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request payload or parameters"
	}
	SendError(c, http.StatusBadRequest, message, "validation_error")
}

// BindError sends a 400 for a failed request binding, with the failure
// broken down per field in the data payload.
func BindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Status:  http.StatusBadRequest,
		Message: "Invalid request payload",
		Data:    validator.ParseError(err),
		Error:   "validation_error",
	})
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message, code string) {
	if message == "" {
		message = "Unauthorized access"
	}
	if code == "" {
		code = "unauthorized"
	}
	SendError(c, http.StatusUnauthorized, message, code)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, resourceName string) {
	SendError(c, http.StatusNotFound, resourceName+" not found", "not_found")
}
