package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func run(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccess(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { Success(c, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CodeOK, body.Code)
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, body.Data)
}

func TestErrorsCarryStatusAsCode(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { Unprocessable(c, "insufficient balance") })
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, body.Code)
	assert.Equal(t, "insufficient balance", body.Message)
}

func TestInternalErrorHidesCause(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { InternalError(c, errors.New("disk full")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, w.Body.String(), "disk full")
}
