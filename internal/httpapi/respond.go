package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FieldError is the structured error element returned by every failing
// endpoint. Field may be empty when the error is not tied to one input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the uniform error payload:
//
//	{ "statusCode": 401, "errors": [{ "field": "", "message": "..." }] }
//
// Keep this shape stable; clients switch on it.
type ErrorBody struct {
	StatusCode int          `json:"statusCode"`
	Errors     []FieldError `json:"errors"`
}

func NewErrorBody(status int, field, message string) ErrorBody {
	return ErrorBody{
		StatusCode: status,
		Errors:     []FieldError{{Field: field, Message: message}},
	}
}

// AbortWithError writes the uniform error payload and aborts the chain.
func AbortWithError(c *gin.Context, status int, field, message string) {
	c.AbortWithStatusJSON(status, NewErrorBody(status, field, message))
}

// AbortUnauthorized writes the generic unauthorized payload. The specific
// failure reason must not reach the client (account enumeration).
func AbortUnauthorized(c *gin.Context) {
	AbortWithError(c, http.StatusUnauthorized, "", "Token is missing in the request")
}

// AbortInternal hides internal failures behind a generic message.
func AbortInternal(c *gin.Context, field string) {
	AbortWithError(c, http.StatusInternalServerError, field, "Something went wrong")
}
