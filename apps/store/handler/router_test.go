package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-grocery/apps/store/model"
	"go-grocery/apps/store/repository"
	"go-grocery/apps/store/service"
	"go-grocery/apps/store/storetest"
	"go-grocery/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	t       *testing.T
	db      *gorm.DB
	router  *gin.Engine
	tokens  *jwt.Manager
	user    *model.User
	token   string
	catalog *storetest.Catalog
}

func newTestServer(t *testing.T, prices ...float64) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := storetest.OpenDB(t)
	media := service.Media{BaseURL: "/media/"}
	catalogRepo := repository.NewCatalogRepository(db)
	tokens := jwt.NewManager("test-secret", "go-grocery", time.Hour)

	router := NewRouter(RouterConfig{
		ServiceName: "store-test",
		Catalog:     NewCatalogHandler(service.NewCatalogService(catalogRepo, media), 5),
		Cart:        NewCartHandler(service.NewCartService(db, repository.NewCartRepository(), catalogRepo, media, nil)),
		Tokens:      tokens,
		Users:       repository.NewUserRepository(db),
	})

	user := storetest.CreateUser(t, db, "user_1")
	token, err := tokens.GenerateToken(int64(user.ID), user.Username)
	require.NoError(t, err)

	return &testServer{
		t:       t,
		db:      db,
		router:  router,
		tokens:  tokens,
		user:    user,
		token:   token,
		catalog: storetest.CreateCatalog(t, db, prices...),
	}
}

func (s *testServer) do(method, target, auth, body string) *httptest.ResponseRecorder {
	s.t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) authed(method, target, body string) *httptest.ResponseRecorder {
	return s.do(method, target, "Bearer "+s.token, body)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func cartURL(id uint) string { return fmt.Sprintf("/products/%d/shopping_cart/", id) }

func TestCartFlow(t *testing.T) {
	s := newTestServer(t, 100)
	pid := s.catalog.Products[0].ID

	w := s.authed(http.MethodPost, cartURL(pid), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 1, body["product_quantity"])
	assert.EqualValues(t, 100, body["product_price"])
	product := body["product"].(map[string]interface{})
	assert.Equal(t, "product_1", product["slug"])
	assert.Equal(t, "Category 1", product["category"])

	w = s.authed(http.MethodPost, cartURL(pid), "")
	require.Equal(t, http.StatusCreated, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, 2, body["product_quantity"])
	assert.EqualValues(t, 200, body["product_price"])

	w = s.authed(http.MethodGet, "/shopping_cart/", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["products"], 1)
	assert.EqualValues(t, 2, body["total_quantity"])
	assert.EqualValues(t, 200, body["total_price"])

	w = s.authed(http.MethodDelete, "/shopping_cart/", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.authed(http.MethodGet, "/shopping_cart/", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, []interface{}{}, body["products"])
	assert.Contains(t, body, "total_quantity")
	assert.Nil(t, body["total_quantity"])
	assert.Nil(t, body["total_price"])
}

func TestAddToCartUnknownProduct(t *testing.T) {
	s := newTestServer(t, 100)

	w := s.authed(http.MethodPost, cartURL(9999), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 404, decode(t, w)["code"])

	w = s.authed(http.MethodPost, "/products/abc/shopping_cart/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetQuantityEndpoint(t *testing.T) {
	s := newTestServer(t, 100, 20)
	pid := s.catalog.Products[0].ID
	require.Equal(t, http.StatusCreated, s.authed(http.MethodPost, cartURL(pid), "").Code)

	w := s.authed(http.MethodPatch, cartURL(pid), `{"product_quantity": 4}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 4, body["product_quantity"])
	assert.EqualValues(t, 400, body["product_price"])

	for _, payload := range []string{
		`{"product_quantity": 0}`, `{}`, "", `{"product_quantity": null}`,
		`{"product_quantity": -1}`, `{"product_quantity": "many"}`, `{"product_quantity": ""}`,
		`{"product_quantity": 2.5}`, `{"product_quantity": true}`, `{"product_quantity": [3]}`,
		`{"product_quantity": 40000}`, `{"product_quantity": "1e30"}`,
	} {
		w = s.authed(http.MethodPatch, cartURL(pid), payload)
		require.Equal(t, http.StatusBadRequest, w.Code, "payload %q", payload)
		errs := decode(t, w)["errors"].(map[string]interface{})
		assert.Contains(t, errs, "product_quantity")
	}

	// nothing above changed the line
	w = s.authed(http.MethodGet, "/shopping_cart/", "")
	assert.EqualValues(t, 4, decode(t, w)["total_quantity"])

	w = s.authed(http.MethodPatch, cartURL(s.catalog.Products[1].ID), `{"product_quantity": 2}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.authed(http.MethodPatch, cartURL(9999), `{"product_quantity": 2}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetQuantityAcceptsIntegerForms(t *testing.T) {
	s := newTestServer(t, 10)
	pid := s.catalog.Products[0].ID
	require.Equal(t, http.StatusCreated, s.authed(http.MethodPost, cartURL(pid), "").Code)

	tests := []struct {
		payload string
		want    int
	}{
		{`{"product_quantity": "5"}`, 5},
		{`{"product_quantity": " 6 "}`, 6},
		{`{"product_quantity": 2.0}`, 2},
		{`{"product_quantity": "3.0"}`, 3},
		{`{"product_quantity": 32767}`, 32767},
	}
	for _, tt := range tests {
		w := s.authed(http.MethodPatch, cartURL(pid), tt.payload)
		require.Equal(t, http.StatusOK, w.Code, "payload %s: %s", tt.payload, w.Body.String())
		assert.EqualValues(t, tt.want, decode(t, w)["product_quantity"], tt.payload)
	}
}

func TestRemoveFromCartTwice(t *testing.T) {
	s := newTestServer(t, 100)
	pid := s.catalog.Products[0].ID
	require.Equal(t, http.StatusCreated, s.authed(http.MethodPost, cartURL(pid), "").Code)

	assert.Equal(t, http.StatusNoContent, s.authed(http.MethodDelete, cartURL(pid), "").Code)
	assert.Equal(t, http.StatusNotFound, s.authed(http.MethodDelete, cartURL(pid), "").Code)
}

func TestCartRequiresAuthentication(t *testing.T) {
	s := newTestServer(t, 100)
	pid := s.catalog.Products[0].ID

	routes := []struct{ method, target string }{
		{http.MethodPost, cartURL(pid)},
		{http.MethodPatch, cartURL(pid)},
		{http.MethodDelete, cartURL(pid)},
		{http.MethodGet, "/shopping_cart/"},
		{http.MethodDelete, "/shopping_cart/"},
	}
	for _, r := range routes {
		w := s.do(r.method, r.target, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.target)
	}

	var count int64
	require.NoError(t, s.db.Model(&model.CartItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthenticationHeaders(t *testing.T) {
	s := newTestServer(t, 100)

	other, err := s.tokens.GenerateToken(int64(s.user.ID), s.user.Username)
	require.NoError(t, err)
	foreign, err := jwt.NewManager("other-secret", "go-grocery", time.Hour).GenerateToken(int64(s.user.ID), s.user.Username)
	require.NoError(t, err)
	ghost, err := s.tokens.GenerateToken(int64(s.user.ID+100), "ghost")
	require.NoError(t, err)

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"bearer", "Bearer " + other, http.StatusOK},
		{"token scheme", "Token " + other, http.StatusOK},
		{"no scheme", other, http.StatusUnauthorized},
		{"basic", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/shopping_cart/", tt.auth, "")
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestInactiveUserRejected(t *testing.T) {
	s := newTestServer(t, 100)
	require.NoError(t, s.db.Model(s.user).Update("is_active", false).Error)

	w := s.authed(http.MethodGet, "/shopping_cart/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogIsPublic(t *testing.T) {
	s := newTestServer(t, 100)
	pid := s.catalog.Products[0].ID
	cid := s.catalog.Category.ID

	for _, target := range []string{"/categories/", fmt.Sprintf("/categories/%d/", cid), "/products/", fmt.Sprintf("/products/%d/", pid)} {
		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, target, "", "").Code, target)
		assert.Equal(t, http.StatusOK, s.authed(http.MethodGet, target, "").Code, target)
	}

	w := s.do(http.MethodGet, fmt.Sprintf("/categories/%d/", cid), "", "")
	body := decode(t, w)
	assert.Equal(t, "category_1", body["slug"])
	assert.Equal(t, "/media/categories/fruit.png", body["image"])
	subs := body["subcategories"].([]interface{})
	require.Len(t, subs, 1)
	assert.Equal(t, "subcategory_1", subs[0].(map[string]interface{})["slug"])

	w = s.do(http.MethodGet, fmt.Sprintf("/products/%d/", pid), "", "")
	body = decode(t, w)
	assert.Equal(t, "Subcategory 1", body["subcategory"])
	assert.Equal(t, []interface{}{map[string]interface{}{"image": "/media/products/product_1.jpg"}}, body["images"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/products/9999/", "", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/categories/x/", "", "").Code)
}

func TestProductPagination(t *testing.T) {
	s := newTestServer(t, 10, 20, 30, 40, 50, 60, 70)

	w := s.do(http.MethodGet, "/products/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 7, body["count"])
	assert.Len(t, body["results"], 5)
	assert.Equal(t, "http://example.com/products/?page=2", body["next"])
	assert.Nil(t, body["previous"])

	w = s.do(http.MethodGet, "/products/?page=2", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["results"], 2)
	assert.Nil(t, body["next"])
	assert.Equal(t, "http://example.com/products/", body["previous"])

	w = s.do(http.MethodGet, "/products/?page_size=3&page=2", "", "")
	body = decode(t, w)
	assert.Len(t, body["results"], 3)
	assert.Equal(t, "http://example.com/products/?page=3&page_size=3", body["next"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/products/?page=3", "", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/products/?page=abc", "", "").Code)

	// offsets that would overflow are still past the end
	for _, target := range []string{
		"/products/?page=1844674407370955163",
		"/products/?page=429496730",
		"/products/?page=9223372036854775807&page_size=100",
		"/categories/?page=1844674407370955163",
	} {
		w = s.do(http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusNotFound, w.Code, target)
	}

	w = s.do(http.MethodGet, "/products/?search=product%207", "", "")
	body = decode(t, w)
	assert.EqualValues(t, 1, body["count"])
}

func TestEmptyFirstPage(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/products/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []interface{}{}, body["results"])
}

func TestHealthzAndRequestID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = s.do(http.MethodGet, "/healthz", "", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
