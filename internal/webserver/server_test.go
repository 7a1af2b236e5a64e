package webserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/auth"
)

type staticTokens map[string]*auth.Claims

func (s staticTokens) ParseToken(raw string) (*auth.Claims, error) {
	if claims, ok := s[raw]; ok {
		return claims, nil
	}
	return nil, errors.New("unknown token")
}

func newTestServer(t *testing.T) (*AdminServer, string) {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.Web.Secret = "test"
	cfg.Web.MaxUploadSize = "1K"
	uploadDir := t.TempDir()

	tokens := staticTokens{"good": {AdminID: 7, Username: "alice"}}
	s, err := NewAdminServer(cfg, tokens, uploadDir)
	require.NoError(t, err)
	return s, uploadDir
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	s, _ := newTestServer(t)
	s.AuthGET("/secret", func(c echo.Context) error {
		claims := GetClaims(c)
		return c.JSON(http.StatusOK, map[string]interface{}{"username": claims.Username})
	})

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic good",
		"unknown token":  "Bearer bad",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secret", nil)
			if header != "" {
				req.Header.Set(echo.HeaderAuthorization, header)
			}
			rec := httptest.NewRecorder()
			s.Echo().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "UNAUTHORIZED", decode(t, rec)["code"])
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode(t, rec)["username"])
}

func TestPublicRoute(t *testing.T) {
	s, _ := newTestServer(t)
	s.GET("/open", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestLivenessAndNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["code"])
}

func TestServesUploads(t *testing.T) {
	s, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.png"), []byte("png-bytes"), 0o644))

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/abc.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestBodyLimit(t *testing.T) {
	s, _ := newTestServer(t)
	s.POST("/echo", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 4096)))
	req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequestValidator(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	s, _ := newTestServer(t)
	v, ok := s.Echo().Validator.(*requestValidator)
	require.True(t, ok)

	assert.Error(t, v.Validate(&payload{}))
	assert.NoError(t, v.Validate(&payload{Name: "x"}))
}
