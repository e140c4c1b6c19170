package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAbortWithErrorShape(t *testing.T) {
	rec := perform(t, func(c *gin.Context) {
		AbortWithError(c, http.StatusBadRequest, "email", "A valid email is required")
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "email", body.Errors[0].Field)
	assert.Equal(t, "A valid email is required", body.Errors[0].Message)
}

func TestAbortUnauthorizedIsGeneric(t *testing.T) {
	rec := perform(t, func(c *gin.Context) {
		AbortUnauthorized(c)
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Empty(t, body.Errors[0].Field)
	assert.Equal(t, "Token is missing in the request", body.Errors[0].Message)
}

func TestAbortInternalHidesDetail(t *testing.T) {
	rec := perform(t, func(c *gin.Context) {
		AbortInternal(c, "")
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "Something went wrong", body.Errors[0].Message)
}

func TestAbortStopsTheChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	AbortWithError(c, http.StatusForbidden, "", "nope")
	assert.True(t, c.IsAborted())
}
