package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"forum/internal/config"
	"forum/internal/models"
	"forum/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "server-test-secret-at-least-32-chars"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		Env:                 "test",
		Port:                "0",
		JWTSecret:           testSecret,
		FeatureFlags:        "home_page_cache=off",
		HomeCacheTTLMinutes: 30,
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return &testEnv{srv: srv, app: srv.NewApp(), db: db}
}

func tokenFor(t *testing.T, userID uint) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    "forum-api",
		Audience:  jwt.ClaimStrings{"forum-client"},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// do sends a request; form values are sent form-encoded.
func (e *testEnv) do(t *testing.T, method, target, token string, form url.Values) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestProfileGate_Redirects(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateTree(t, env.db, "News", "World")
	user := testutil.CreateUser(t, env.db, "alice", false)
	token := tokenFor(t, user.ID)

	resp := env.do(t, http.MethodGet, "/news/world/create_topic/", "", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/login?next=%2Fnews%2Fworld%2Fcreate_topic%2F", resp.Header.Get(fiber.HeaderLocation))

	resp = env.do(t, http.MethodGet, resp.Header.Get(fiber.HeaderLocation), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var loginPage struct {
		Next string `json:"next"`
	}
	decode(t, resp, &loginPage)
	assert.Equal(t, "/news/world/create_topic/", loginPage.Next)

	resp = env.do(t, http.MethodGet, "/accounts/profile/", token, nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/profile/create_profile/", resp.Header.Get(fiber.HeaderLocation))

	resp = env.do(t, http.MethodGet, "/news/world/create_topic/", token, nil)
	assert.Equal(t, "/accounts/profile/create_profile/", resp.Header.Get(fiber.HeaderLocation))

	resp = env.do(t, http.MethodGet, "/accounts/profile/create_profile/", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/accounts/profile/create_profile/", token, url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Liddell"},
	})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/accounts/profile/", resp.Header.Get(fiber.HeaderLocation))

	// Same token, new state: the gate re-reads profile existence.
	resp = env.do(t, http.MethodGet, "/accounts/profile/create_profile/", token, nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	resp = env.do(t, http.MethodGet, "/accounts/profile/", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var view struct {
		Profile models.Profile `json:"profile"`
	}
	decode(t, resp, &view)
	assert.True(t, view.Profile.Filled)
	assert.Equal(t, models.DefaultBio, view.Profile.Bio)
}

func TestLogin_ReturnsToNext(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateTree(t, env.db, "News", "World")

	resp := env.do(t, http.MethodPost, "/accounts/signup", "", url.Values{
		"username": {"carol"},
		"email":    {"carol@example.com"},
		"password": {"Correct-Horse-42"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	credentials := url.Values{"username": {"carol"}, "password": {"Correct-Horse-42"}}
	resp = env.do(t, http.MethodPost, "/accounts/login?next=%2Fnews%2Fworld%2Fcreate_topic%2F", "", credentials)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/news/world/create_topic/", resp.Header.Get(fiber.HeaderLocation))

	var token string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == AccessTokenCookie {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token)

	// Logged in but without a profile, the gate now asks for one.
	resp = env.do(t, http.MethodGet, "/news/world/create_topic/", token, nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/profile/create_profile/", resp.Header.Get(fiber.HeaderLocation))

	for _, next := range []string{"//evil.example/", "https://evil.example/", "/\\evil.example", "relative"} {
		form := url.Values{"username": {"carol"}, "password": {"Correct-Horse-42"}, "next": {next}}
		resp = env.do(t, http.MethodPost, "/accounts/login", "", form)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, next)
	}
}

func TestCaseVariantPathsDoNotBypassGate(t *testing.T) {
	env := newTestEnv(t, nil)
	user := testutil.CreateUser(t, env.db, "alice", false)
	testutil.CreateProfile(t, env.db, user)
	token := tokenFor(t, user.ID)

	resp := env.do(t, http.MethodPost, "/Accounts/Profile/Create_Profile/", token, url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Again"},
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/accounts/profile/create_profile/", token, url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Again"},
	})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	var profiles int64
	require.NoError(t, env.db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)
}

func TestCreateTopic_MissingSubcategoryIsNotFoundBeforeGate(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateTree(t, env.db, "News", "World")

	resp := env.do(t, http.MethodGet, "/news/missing/create_topic/", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestScenario_TopicLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateTree(t, env.db, "News", "General")
	alice := testutil.CreateUser(t, env.db, "alice", false)
	bob := testutil.CreateUser(t, env.db, "bob", false)
	testutil.CreateProfile(t, env.db, alice)
	testutil.CreateProfile(t, env.db, bob)
	a, b := tokenFor(t, alice.ID), tokenFor(t, bob.ID)

	resp := env.do(t, http.MethodPost, "/news/general/create_topic/", a, url.Values{
		"title":   {"Hello"},
		"content": {"first post"},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	topicPath := resp.Header.Get(fiber.HeaderLocation)
	require.True(t, strings.HasPrefix(topicPath, "/news/general/"))

	resp = env.do(t, http.MethodPost, topicPath+"create_post/", b, url.Values{"content": {"reply"}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, topicPath, resp.Header.Get(fiber.HeaderLocation))

	resp = env.do(t, http.MethodGet, topicPath, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page struct {
		Topic models.Topic  `json:"topic"`
		Posts []models.Post `json:"posts"`
	}
	decode(t, resp, &page)
	require.Len(t, page.Posts, 1)
	postPath := topicPath + strconv.FormatUint(uint64(page.Posts[0].ID), 10) + "/"

	resp = env.do(t, http.MethodPost, postPath+"create_comment/", a, url.Values{"content": {"thanks"}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	resp = env.do(t, http.MethodPost, postPath+"like/", a, nil)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	resp = env.do(t, http.MethodPost, postPath+"like/", a, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var errBody models.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, models.CodeConstraintViolation, errBody.Code)

	// Bob cannot delete Alice's topic.
	resp = env.do(t, http.MethodGet, topicPath+"delete_topic/", b, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp = env.do(t, http.MethodPost, topicPath+"delete_topic/", b, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	decode(t, resp, &errBody)
	assert.Equal(t, "You do not have permission to access this object", errBody.Error)

	resp = env.do(t, http.MethodGet, topicPath+"delete_topic/", a, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodPost, topicPath+"delete_topic/", a, nil)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/news/general/", resp.Header.Get(fiber.HeaderLocation))

	resp = env.do(t, http.MethodGet, topicPath, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var remaining int64
	require.NoError(t, env.db.Model(&models.Comment{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestDeletePost_Permission(t *testing.T) {
	env := newTestEnv(t, nil)
	tree := testutil.CreateTree(t, env.db, "News", "General")
	alice := testutil.CreateUser(t, env.db, "alice", false)
	bob := testutil.CreateUser(t, env.db, "bob", false)
	root := testutil.CreateUser(t, env.db, "root", true)
	for _, u := range []*models.User{alice, bob, root} {
		testutil.CreateProfile(t, env.db, u)
	}
	topic := testutil.CreateTopic(t, env.db, tree.Subcategory, alice, "Hello")
	post := testutil.CreatePost(t, env.db, topic, alice, "mine")
	other := testutil.CreatePost(t, env.db, topic, alice, "also mine")

	base := "/news/general/" + strconv.FormatUint(uint64(topic.ID), 10) + "/"
	deletePath := func(p *models.Post) string {
		return base + strconv.FormatUint(uint64(p.ID), 10) + "/delete_post/"
	}

	resp := env.do(t, http.MethodPost, deletePath(post), tokenFor(t, bob.ID), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	var count int64
	require.NoError(t, env.db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "post remains present")

	resp = env.do(t, http.MethodPost, deletePath(post), tokenFor(t, alice.ID), nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, base, resp.Header.Get(fiber.HeaderLocation))

	resp = env.do(t, http.MethodPost, deletePath(other), tokenFor(t, root.ID), nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	resp = env.do(t, http.MethodPost, deletePath(post), tokenFor(t, alice.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminCategories(t *testing.T) {
	env := newTestEnv(t, nil)
	member := testutil.CreateUser(t, env.db, "member", false)
	root := testutil.CreateUser(t, env.db, "root", true)

	resp := env.do(t, http.MethodPost, "/admin/categories", "", url.Values{"name": {"News"}})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/admin/categories", tokenFor(t, member.ID), url.Values{"name": {"News"}})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/admin/categories", tokenFor(t, root.ID), url.Values{"name": {"World News"}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var category models.Category
	decode(t, resp, &category)
	assert.Equal(t, "world-news", category.Slug)

	resp = env.do(t, http.MethodPost, "/admin/categories", tokenFor(t, root.ID), url.Values{"name": {"World  News!"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/admin/categories/world-news/subcategories", tokenFor(t, root.ID), url.Values{"name": {"General"}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/world-news/", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/admin/categories/world-news", tokenFor(t, root.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/world-news/general/", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHomeAndListings(t *testing.T) {
	env := newTestEnv(t, nil)
	tree := testutil.CreateTree(t, env.db, "News", "General")
	alice := testutil.CreateUser(t, env.db, "alice", false)
	topic := testutil.CreateTopic(t, env.db, tree.Subcategory, alice, "Hello")
	testutil.CreatePost(t, env.db, topic, alice, "one")
	testutil.CreatePost(t, env.db, topic, alice, "two")

	resp := env.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var home struct {
		Categories []models.Category `json:"categories"`
	}
	decode(t, resp, &home)
	require.Len(t, home.Categories, 1)
	assert.Len(t, home.Categories[0].Subcategories, 1)

	resp = env.do(t, http.MethodGet, "/news/general/", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listing struct {
		Topics []models.Topic `json:"topics"`
	}
	decode(t, resp, &listing)
	require.Len(t, listing.Topics, 1)
	assert.Equal(t, 2, listing.Topics[0].PostsCount)

	resp = env.do(t, http.MethodGet, "/sport/", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/news/general/not-a-number/", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"])
	assert.Equal(t, "unavailable", body.Checks["redis"])
}
