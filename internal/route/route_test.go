package route

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terminal-terrace/sse-share/config"
	"terminal-terrace/sse-share/internal/testutils"
	"terminal-terrace/sse-share/pkg/authsdk"
	"terminal-terrace/sse-share/pkg/response"
)

func testConfig() *config.AppConfig {
	conf := &config.AppConfig{}
	conf.Server.Mode = "test"
	conf.Server.FrontendURL = "http://localhost:5173"
	conf.JWT.Secret = "route-test-secret"
	conf.JWT.ExpireTime = 1
	conf.Content.PageSize = 10
	conf.Content.MaxPictureSize = 1 << 20
	return conf
}

func serve(r http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSetupRouter_Basics(t *testing.T) {
	db := testutils.SetupTestDB(t)
	r := SetupRouter(Deps{DB: db, Conf: testConfig(), Logger: zerolog.Nop()})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, HomePath, w.Header().Get("Location"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.Success, resp.Code)

	for _, path := range []string{"/articles", "/learnings", "/accounts/login", "/accounts/register"} {
		w = serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/articles/create", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/accounts/login?next="))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/learnings/favorites", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetupRouter_CORS(t *testing.T) {
	db := testutils.SetupTestDB(t)
	r := SetupRouter(Deps{DB: db, Conf: testConfig(), Logger: zerolog.Nop()})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/articles", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	// 预检请求命中的路径只注册了 POST/DELETE
	req = httptest.NewRequest(http.MethodOptions, "/api/v1/articles/1/favorite", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w = serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 页面路由不做跨域检查
	req = httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRouter_HealthzDatabaseDown(t *testing.T) {
	db := testutils.SetupTestDB(t)
	r := SetupRouter(Deps{DB: db, Conf: testConfig(), Logger: zerolog.Nop()})

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSetupRouter_RegisterShareAndFavorite(t *testing.T) {
	db := testutils.SetupTestDB(t)
	r := SetupRouter(Deps{DB: db, Conf: testConfig(), Logger: zerolog.Nop()})

	w := serve(r, postForm("/accounts/register", url.Values{
		"username":         {"walker"},
		"email":            {"walker@example.com"},
		"password":         {"Passw0rd"},
		"password_confirm": {"Passw0rd"},
	}))
	require.Equal(t, http.StatusFound, w.Code)
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == authsdk.AccessTokenCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	w = serve(r, postForm("/articles/create", url.Values{
		"title": {"Routing in Gin"},
		"text":  {"Groups and middleware."},
		"tags":  {"go, gin"},
	}), session)
	require.Equal(t, http.StatusFound, w.Code)
	detail := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(detail, "/articles/"))

	w = serve(r, postForm(detail+"/favorite", url.Values{}), session)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/articles/favorites", nil), session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Routing in Gin")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/articles?search=ROUTING", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Routing in Gin")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/learnings?search=routing", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Routing in Gin")
}
