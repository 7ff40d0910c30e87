package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angofact/backend/internal/interfaces/http/dto"
	"github.com/angofact/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type openSeriesPayload struct {
	Code       string `json:"code" binding:"required"`
	FiscalYear int    `json:"fiscal_year" binding:"gte=2000"`
	Kind       string `json:"kind" binding:"omitempty,oneof=SALES PURCHASES"`
}

func newBindingRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	h := &BaseHandler{}
	router := gin.New()
	router.POST("/series", func(c *gin.Context) {
		var req openSeriesPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindingError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func postJSON(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/series", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestBindingError_FieldDetailsUseJSONNames(t *testing.T) {
	router := newBindingRouter(t)

	w := postJSON(t, router, `{"fiscal_year": 1985, "kind": "RASCUNHO"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	fields := make(map[string]string, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", fields["code"])
	assert.Equal(t, "Must be greater than or equal to 2000", fields["fiscal_year"])
	assert.Equal(t, "Must be one of: SALES PURCHASES", fields["kind"])
}

func TestBindingError_MalformedJSON(t *testing.T) {
	router := newBindingRouter(t)

	w := postJSON(t, router, `{"code": `)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}

func TestBindingError_ValidPayloadPasses(t *testing.T) {
	router := newBindingRouter(t)

	w := postJSON(t, router, `{"code": "A", "fiscal_year": 2026, "kind": "SALES"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
}
