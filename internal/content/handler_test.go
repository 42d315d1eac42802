package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"terminal-terrace/sse-share/internal/middleware"
	"terminal-terrace/sse-share/internal/model/item"
	"terminal-terrace/sse-share/internal/model/user"
	"terminal-terrace/sse-share/internal/testutils"
	"terminal-terrace/sse-share/internal/view"
	"terminal-terrace/sse-share/pkg/authsdk"
	"terminal-terrace/sse-share/pkg/response"
)

const handlerSecret = "content-handler-secret"

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutils.SetupTestDB(t)
	r := gin.New()
	r.SetHTMLTemplate(view.MustTemplates())
	r.Use(middleware.Authenticate(handlerSecret, nil))

	api := r.Group("/api/v1")
	for _, kind := range item.Kinds() {
		SetupRoutes(&r.RouterGroup, api, db, kind, Options{})
	}
	return r, db
}

func cookieFor(t *testing.T, u *user.User) *http.Cookie {
	t.Helper()
	token, _, err := authsdk.Issuer{Secret: handlerSecret, TTL: time.Hour}.Issue(u.ID, u.Username, u.Role)
	require.NoError(t, err)
	return &http.Cookie{Name: authsdk.AccessTokenCookie, Value: token}
}

func do(r *gin.Engine, method, target string, body url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_ListAndDetail(t *testing.T) {
	r, db := setupRouter(t)
	owner := testutils.CreateTestUser(db)
	a := testutils.CreateTestItem(db, item.Article, owner.ID, testutils.WithTitle("Readable <title>"))
	testutils.CreateTestComment(db, item.Article, a.ID, owner.ID, "first!")

	w := do(r, http.MethodGet, "/articles", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Readable &lt;title&gt;")
	assert.Contains(t, w.Body.String(), owner.Username)

	w = do(r, http.MethodGet, "/articles?search=nomatch", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Readable")

	w = do(r, http.MethodGet, fmt.Sprintf("/articles/%d", a.ID), nil, cookieFor(t, owner))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "first!")
	assert.Contains(t, w.Body.String(), fmt.Sprintf("/articles/%d/update", a.ID))

	w = do(r, http.MethodGet, "/articles/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/articles/abc", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_LoginRequired(t *testing.T) {
	r, db := setupRouter(t)
	owner := testutils.CreateTestUser(db)
	a := testutils.CreateTestItem(db, item.Article, owner.ID)

	w := do(r, http.MethodPost, fmt.Sprintf("/articles/%d/favorite", a.ID), url.Values{}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), middleware.LoginPath+"?next="))

	w = do(r, http.MethodGet, "/learnings/create", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestHandler_FavoriteToggle(t *testing.T) {
	r, db := setupRouter(t)
	owner := testutils.CreateTestUser(db)
	viewer := testutils.CreateTestUser(db)
	a := testutils.CreateTestItem(db, item.Article, owner.ID)
	cookie := cookieFor(t, viewer)

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodPost, fmt.Sprintf("/articles/%d/favorite", a.ID), url.Values{}, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	}
	assert.Equal(t, int64(1), testutils.CountRows(db, item.Article.FavTable(), "user_id = ?", viewer.ID))

	w := do(r, http.MethodGet, "/articles/favorites", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), a.Title)

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodPost, fmt.Sprintf("/articles/%d/unfavorite", a.ID), url.Values{}, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int64(0), testutils.CountRows(db, item.Article.FavTable(), "user_id = ?", viewer.ID))

	w = do(r, http.MethodPost, "/articles/9999/favorite", url.Values{}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Comment(t *testing.T) {
	r, db := setupRouter(t)
	owner := testutils.CreateTestUser(db)
	commenter := testutils.CreateTestUser(db)
	l := testutils.CreateTestItem(db, item.Learning, owner.ID)
	cookie := cookieFor(t, commenter)
	target := fmt.Sprintf("/learnings/%d/comment", l.ID)

	w := do(r, http.MethodPost, target, url.Values{"text": {"ab"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrCommentTooShort.Error())
	assert.Equal(t, int64(0), testutils.CountRows(db, item.Learning.CommentTable(), "item_id = ?", l.ID))

	w = do(r, http.MethodPost, target, url.Values{"text": {"great write-up"}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/learnings/%d", l.ID), w.Header().Get("Location"))

	var comment item.Comment
	require.NoError(t, db.Table(item.Learning.CommentTable()).Where("item_id = ?", l.ID).Take(&comment).Error)

	// 他人不能删除评论
	w = do(r, http.MethodPost, fmt.Sprintf("/learningcomment/%d/delete", comment.ID), url.Values{}, cookieFor(t, owner))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, fmt.Sprintf("/learningcomment/%d/delete", comment.ID), nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "great write-up")

	w = do(r, http.MethodPost, fmt.Sprintf("/learningcomment/%d/delete", comment.ID), url.Values{}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/learnings/%d", l.ID), w.Header().Get("Location"))
}

func TestHandler_CreateUpdateDelete(t *testing.T) {
	r, db := setupRouter(t)
	owner := testutils.CreateTestUser(db)
	stranger := testutils.CreateTestUser(db)
	cookie := cookieFor(t, owner)

	w := do(r, http.MethodGet, "/articles/create", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="gist_link"`)

	// 校验失败时回显表单
	w = do(r, http.MethodPost, "/articles/create", url.Values{"title": {"x"}, "text": {"keep me"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title must be at least 2 characters")
	assert.Contains(t, w.Body.String(), "keep me")

	w = do(r, http.MethodPost, "/articles/create", url.Values{
		"title": {"Hello"}, "text": {"World"}, "tags": {"Go, Web"},
	}, cookie)
	require.Equal(t, http.StatusFound, w.Code)

	var created item.Item
	require.NoError(t, db.Table(item.Article.ItemTable()).Where("title = ?", "Hello").Take(&created).Error)
	assert.Equal(t, fmt.Sprintf("/articles/%d", created.ID), w.Header().Get("Location"))
	assert.Equal(t, owner.ID, created.OwnerID)

	editURL := fmt.Sprintf("/articles/%d/update", created.ID)
	w = do(r, http.MethodGet, editURL, nil, cookieFor(t, stranger))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, editURL, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go, web")

	w = do(r, http.MethodPost, editURL, url.Values{"title": {"Hello again"}, "text": {"World"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)

	deleteURL := fmt.Sprintf("/articles/%d/delete", created.ID)
	w = do(r, http.MethodPost, deleteURL, url.Values{}, cookieFor(t, stranger))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, deleteURL, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello again")

	w = do(r, http.MethodPost, deleteURL, url.Values{}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/articles", w.Header().Get("Location"))
	assert.Equal(t, int64(0), testutils.CountRows(db, item.Article.ItemTable(), "id = ?", created.ID))
}

func TestHandler_LearningPicture(t *testing.T) {
	r, db := setupRouter(t)
	owner := testutils.CreateTestUser(db)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "With picture"))
	require.NoError(t, mw.WriteField("text", "body"))
	part, err := mw.CreateFormFile("picture", "p.png")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/learnings/create", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookieFor(t, owner))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)

	w = do(r, http.MethodGet, w.Header().Get("Location")+"/picture", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, w.Body.Bytes())

	w = do(r, http.MethodGet, "/learnings/9999/picture", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI(t *testing.T) {
	r, db := setupRouter(t)
	owner := testutils.CreateTestUser(db)
	a := testutils.CreateTestItem(db, item.Article, owner.ID, testutils.WithTitle("API article"))
	cookie := cookieFor(t, owner)

	decode := func(w *httptest.ResponseRecorder) response.Response {
		var body response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body
	}

	w := do(r, http.MethodGet, "/api/v1/articles?search=api", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(w)
	assert.Equal(t, response.Success, body.Code)
	assert.Contains(t, w.Body.String(), "API article")

	w = do(r, http.MethodGet, "/api/v1/articles/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.NotFound, decode(w).Code)

	w = do(r, http.MethodPost, fmt.Sprintf("/api/v1/articles/%d/favorite", a.ID), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, fmt.Sprintf("/api/v1/articles/%d/favorite", a.ID), nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/articles/favorites", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "API article")

	w = do(r, http.MethodDelete, fmt.Sprintf("/api/v1/articles/%d/favorite", a.ID), nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/articles/%d/comments", a.ID), strings.NewReader(`{"text":"no"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.InvalidParameter, decode(w).Code)

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/articles/%d/comments", a.ID), strings.NewReader(`{"text":"looks good"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, fmt.Sprintf("/api/v1/articles/%d", a.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "looks good")
}
